package repositories

import (
	"context"
	"fmt"

	"tokoshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

// Create inserts a coupon; a taken code yields ErrDuplicate.
func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", translate(err))
	}
	return nil
}

func (r *GORMCouponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("coupon with ID %s: %w", id, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("coupon %s: %w", code, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// Update rewrites every editable column; UsedCount is left alone.
func (r *GORMCouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		Select("code", "description", "discount_type", "value", "min_order_amount",
			"max_discount", "usage_limit", "valid_from", "valid_until", "is_active").
		Updates(coupon)
	if res.Error != nil {
		return fmt.Errorf("failed to update coupon: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon with ID %s: %w", coupon.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMCouponRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Redeem increments used_count only while uses remain.
func (r *GORMCouponRepository) Redeem(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s: %w", id, ErrCouponExhausted)
	}
	return nil
}

// Release gives one use back.
func (r *GORMCouponRepository) Release(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND used_count > 0", id).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to release coupon: %w", err)
	}
	return nil
}
