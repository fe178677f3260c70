package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokoshop/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

func (r *MockOrderRepository) ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, int64, error) {
	return r.List(ctx, models.OrderFilter{UserID: userID, Page: page})
}

func (r *MockOrderRepository) sorted(keep func(models.Order) bool) []models.Order {
	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		if !orderList[i].CreatedAt.Equal(orderList[j].CreatedAt) {
			return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
		}
		return orderList[i].ID < orderList[j].ID
	})
	return orderList
}

// List returns one filtered page of orders.
func (r *MockOrderRepository) List(_ context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := r.sorted(func(o models.Order) bool {
		return (f.Status == "" || o.Status == f.Status) && (f.UserID == "" || o.UserID == f.UserID)
	})
	return paginate(orderList, f.Page), int64(len(orderList)), nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id, from, to string) error {
	return r.compareAndSet(id, func(o *models.Order) *string { return &o.Status }, from, to)
}

func (r *MockOrderRepository) UpdatePaymentStatus(_ context.Context, id, from, to string) error {
	return r.compareAndSet(id, func(o *models.Order) *string { return &o.PaymentStatus }, from, to)
}

func (r *MockOrderRepository) compareAndSet(id string, field func(*models.Order) *string, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	current := field(&order)
	if *current != from {
		return fmt.Errorf("order %s: %w", id, ErrStatusConflict)
	}
	*current = to
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

func (r *MockOrderRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *MockOrderRepository) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byStatus := make(map[string]int64)
	for _, o := range r.orders {
		byStatus[o.Status]++
	}
	counts := make([]models.StatusCount, 0, len(byStatus))
	for status, n := range byStatus {
		counts = append(counts, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func (r *MockOrderRepository) Revenue(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revenue := decimal.Zero
	for _, o := range r.orders {
		if o.PaymentStatus == models.PaymentStatusPaid && o.Status != models.OrderStatusCancelled {
			revenue = revenue.Add(o.Total)
		}
	}
	return revenue, nil
}

func (r *MockOrderRepository) Recent(_ context.Context, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := r.sorted(func(models.Order) bool { return true })
	if len(orderList) > limit {
		orderList = orderList[:limit]
	}
	return orderList, nil
}

func (r *MockOrderRepository) snapshot() func() {
	r.mu.RLock()
	saved := make(map[string]models.Order, len(r.orders))
	for k, v := range r.orders {
		saved[k] = cloneOrder(v)
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.orders = saved
		r.mu.Unlock()
	}
}
