package repositories

import (
	"context"
	"sync"
)

// MemoryUnitOfWork serializes work over the in-memory repositories and
// restores their previous contents when fn fails.
type MemoryUnitOfWork struct {
	products *MockProductRepository
	orders   *MockOrderRepository
	coupons  *MockCouponRepository
	mu       sync.Mutex
}

func NewMemoryUnitOfWork(products *MockProductRepository, orders *MockOrderRepository, coupons *MockCouponRepository) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{products: products, orders: orders, coupons: coupons}
}

type memoryTx struct{ u *MemoryUnitOfWork }

func (t memoryTx) Products() ProductRepository { return t.u.products }
func (t memoryTx) Orders() OrderRepository     { return t.u.orders }
func (t memoryTx) Coupons() CouponRepository   { return t.u.coupons }

func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	restore := []func(){u.products.snapshot(), u.orders.snapshot(), u.coupons.snapshot()}
	if err := fn(memoryTx{u: u}); err != nil {
		for _, r := range restore {
			r()
		}
		return err
	}
	return nil
}
