package repositories

import (
	"context"

	"tokoshop/internal/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page models.Page) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SetStock(ctx context.Context, id string, stock int) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	// DecrementStock subtracts qty only when at least qty units are left.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, int64, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	// UpdateStatus moves the order from one status to another and fails with
	// ErrStatusConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id, from, to string) error
	UpdatePaymentStatus(ctx context.Context, id, from, to string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	// Revenue sums the totals of paid, non-cancelled orders.
	Revenue(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) error
	// Redeem consumes one use, failing with ErrCouponExhausted at the limit.
	Redeem(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
}

// Tx exposes repositories bound to one transaction.
type Tx interface {
	Products() ProductRepository
	Orders() OrderRepository
	Coupons() CouponRepository
}

// UnitOfWork runs fn atomically; any error returned by fn rolls back every write.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// ReportRepository runs aggregate reporting queries.
type ReportRepository interface {
	Sales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRow, error)
}

// FavoriteRepository stores user-to-product bookmarks.
type FavoriteRepository interface {
	Add(ctx context.Context, fav *models.Favorite) error
	Remove(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductFavoriteCount, error)
}

// ContactRepository stores contact-form messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, unreadOnly bool, page models.Page) ([]models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
}

// ActivityRepository stores the order event feed.
type ActivityRepository interface {
	Record(ctx context.Context, activity *models.OrderActivity) error
	Recent(ctx context.Context, limit int) ([]models.OrderActivity, error)
}
