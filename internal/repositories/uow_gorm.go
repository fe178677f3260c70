package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMUnitOfWork runs work inside a database transaction.
type GORMUnitOfWork struct {
	db *gorm.DB
}

func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

type gormTx struct {
	tx *gorm.DB
}

func (t gormTx) Products() ProductRepository { return NewGORMProductRepository(t.tx) }
func (t gormTx) Orders() OrderRepository     { return NewGORMOrderRepository(t.tx) }
func (t gormTx) Coupons() CouponRepository   { return NewGORMCouponRepository(t.tx) }

// Do commits when fn returns nil and rolls back otherwise.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{tx: tx})
	})
}
