package repositories_test

import (
	"context"
	"errors"
	"testing"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUnitOfWork_RestoresOnError(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository()
	coupons := repositories.NewMockCouponRepository()
	uow := repositories.NewMemoryUnitOfWork(products, orders, coupons)

	p := seedProduct(t, products, "Bag", "apparel", "15.00", 3)
	c := &models.Coupon{Code: "SAVE", DiscountType: models.DiscountFixed, Value: price("1"), IsActive: true}
	require.NoError(t, coupons.Create(ctx, c))

	err := uow.Do(ctx, func(tx repositories.Tx) error {
		require.NoError(t, tx.Products().DecrementStock(ctx, p.ID, 2))
		require.NoError(t, tx.Coupons().Redeem(ctx, c.ID))
		require.NoError(t, tx.Orders().Create(ctx, newOrder("u1", p, 2, models.OrderStatusPending, models.PaymentStatusUnpaid)))
		return tx.Products().DecrementStock(ctx, p.ID, 5)
	})
	assert.True(t, errors.Is(err, repositories.ErrInsufficientStock))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	gotCoupon, err := coupons.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, gotCoupon.UsedCount)
	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMockOrderRepository_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	p := &models.Product{ID: "p1", Name: "Cup", Price: price("3")}
	o := newOrder("u1", p, 1, models.OrderStatusPending, models.PaymentStatusUnpaid)
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, errors.Is(repo.UpdateStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusProcessing), repositories.ErrStatusConflict))
	assert.True(t, errors.Is(repo.UpdatePaymentStatus(ctx, "missing", models.PaymentStatusUnpaid, models.PaymentStatusPaid), repositories.ErrNotFound))

	// callers cannot mutate stored items through a returned order
	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	again, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMockFavoriteRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockFavoriteRepository()

	require.NoError(t, repo.Add(ctx, &models.Favorite{UserID: "u1", ProductID: "p1"}))
	require.NoError(t, repo.Add(ctx, &models.Favorite{UserID: "u2", ProductID: "p1"}))
	require.NoError(t, repo.Add(ctx, &models.Favorite{UserID: "u1", ProductID: "p2"}))
	assert.True(t, errors.Is(repo.Add(ctx, &models.Favorite{UserID: "u1", ProductID: "p1"}), repositories.ErrDuplicate))

	top, err := repo.TopProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, models.ProductFavoriteCount{ProductID: "p1", Count: 2}, top[0])

	require.NoError(t, repo.Remove(ctx, "u1", "p1"))
	ok, err := repo.Exists(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(repo.Remove(ctx, "u1", "p1"), repositories.ErrNotFound))
}

func TestMockContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockContactRepository()

	first := &models.ContactMessage{Name: "Bob", Email: "bob@example.com", Subject: "Hello", Message: "Is this in stock?"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, &models.ContactMessage{Name: "Eve", Email: "eve@example.com", Subject: "Hi", Message: "Second message"}))

	require.NoError(t, repo.MarkRead(ctx, first.ID.Hex()))
	unread, total, err := repo.List(ctx, true, models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Eve", unread[0].Name)

	assert.True(t, errors.Is(repo.MarkRead(ctx, "not-an-id"), repositories.ErrNotFound))
	require.NoError(t, repo.Delete(ctx, first.ID.Hex()))
	n, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
