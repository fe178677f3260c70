package repositories

import (
	"context"
	"fmt"

	"tokoshop/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts the order together with its line items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("order with ID %s: %w", id, translate(err))
	}
	return &order, nil
}

// ListByUser returns one page of a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, int64, error) {
	return r.List(ctx, models.OrderFilter{UserID: userID, Page: page})
}

// List returns one filtered page of orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	page := f.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").Order("id").
		Limit(page.Size).Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus performs a compare-and-set on the order status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	return r.compareAndSet(ctx, id, "status", from, to)
}

// UpdatePaymentStatus performs a compare-and-set on the payment status.
func (r *GORMOrderRepository) UpdatePaymentStatus(ctx context.Context, id, from, to string) error {
	return r.compareAndSet(ctx, id, "payment_status", from, to)
}

func (r *GORMOrderRepository) compareAndSet(ctx context.Context, id, column, from, to string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND "+column+" = ?", id, from).
		Update(column, to)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("order %s: %w", id, ErrStatusConflict)
	}
	return nil
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return total, nil
}

// CountByStatus groups the order count by status.
func (r *GORMOrderRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var counts []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return counts, nil
}

// Revenue sums the totals of paid, non-cancelled orders.
func (r *GORMOrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_status = ? AND status <> ?", models.PaymentStatusPaid, models.OrderStatusCancelled).
		Select("SUM(total)").
		Row().Scan(&revenue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return revenue.Decimal, nil
}

// Recent returns the latest orders without their items.
func (r *GORMOrderRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return orders, nil
}
