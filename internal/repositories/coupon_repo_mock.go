package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokoshop/internal/models"

	"github.com/google/uuid"
)

// MockCouponRepository is an in-memory implementation of CouponRepository.
type MockCouponRepository struct {
	coupons map[string]models.Coupon
	mu      sync.RWMutex
}

func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{coupons: make(map[string]models.Coupon)}
}

func (r *MockCouponRepository) Create(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return fmt.Errorf("coupon %s: %w", coupon.Code, ErrDuplicate)
		}
	}
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	coupon.CreatedAt, coupon.UpdatedAt = now, now
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *MockCouponRepository) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coupons[id]
	if !ok {
		return nil, fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (r *MockCouponRepository) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("coupon %s: %w", code, ErrNotFound)
}

func (r *MockCouponRepository) List(_ context.Context) ([]models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupons := make([]models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].CreatedAt.After(coupons[j].CreatedAt) })
	return coupons, nil
}

func (r *MockCouponRepository) Update(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.coupons[coupon.ID]
	if !ok {
		return fmt.Errorf("coupon with ID %s: %w", coupon.ID, ErrNotFound)
	}
	for id, c := range r.coupons {
		if id != coupon.ID && c.Code == coupon.Code {
			return fmt.Errorf("coupon %s: %w", coupon.Code, ErrDuplicate)
		}
	}
	updated := *coupon
	updated.UsedCount = existing.UsedCount
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.coupons[coupon.ID] = updated
	return nil
}

func (r *MockCouponRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coupons[id]; !ok {
		return fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	delete(r.coupons, id)
	return nil
}

func (r *MockCouponRepository) Redeem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coupons[id]
	if !ok || (c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit) {
		return fmt.Errorf("coupon %s: %w", id, ErrCouponExhausted)
	}
	c.UsedCount++
	r.coupons[id] = c
	return nil
}

func (r *MockCouponRepository) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.coupons[id]; ok && c.UsedCount > 0 {
		c.UsedCount--
		r.coupons[id] = c
	}
	return nil
}

func (r *MockCouponRepository) snapshot() func() {
	r.mu.RLock()
	saved := make(map[string]models.Coupon, len(r.coupons))
	for k, v := range r.coupons {
		saved[k] = v
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.coupons = saved
		r.mu.Unlock()
	}
}
