package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckCoupon reports why c cannot be applied to subtotal at now, if it cannot.
func CheckCoupon(c *models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	switch {
	case !c.IsActive:
		return fmt.Errorf("coupon %s is inactive: %w", c.Code, ErrInvalidCoupon)
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return fmt.Errorf("coupon %s is not valid yet: %w", c.Code, ErrInvalidCoupon)
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return fmt.Errorf("coupon %s: %w", c.Code, ErrCouponExpired)
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return fmt.Errorf("coupon %s: %w", c.Code, ErrCouponExhausted)
	case subtotal.LessThan(c.MinOrderAmount):
		return fmt.Errorf("minimum is %s: %w", c.MinOrderAmount.StringFixed(2), ErrCouponMinimum)
	}
	return nil
}

// ComputeDiscount returns the discount c grants on subtotal, rounded half-up
// to cents and never more than subtotal.
func ComputeDiscount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount.IsPositive() && discount.GreaterThan(c.MaxDiscount) {
			discount = c.MaxDiscount
		}
	default:
		discount = c.Value
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// CouponQuote is the result of validating a code against a subtotal.
type CouponQuote struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Message  string          `json:"message,omitempty"`
}

// CouponService manages coupons and quotes discounts.
type CouponService struct {
	repo repositories.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// Quote checks code against subtotal without consuming a use. Rule
// violations come back as an invalid quote rather than an error.
func (s *CouponService) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*CouponQuote, error) {
	code = NormalizeCode(code)
	quote := &CouponQuote{Code: code, Discount: decimal.Zero, Total: subtotal}

	c, err := s.repo.GetByCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		quote.Message = ErrInvalidCoupon.Error()
		return quote, nil
	}
	if err != nil {
		return nil, err
	}
	if err := CheckCoupon(c, subtotal, s.now().UTC()); err != nil {
		quote.Message = err.Error()
		return quote, nil
	}

	quote.Valid = true
	quote.Discount = ComputeDiscount(c, subtotal)
	quote.Total = subtotal.Sub(quote.Discount)
	return quote, nil
}

func checkCouponRules(c *models.Coupon) error {
	c.Code = NormalizeCode(c.Code)
	switch {
	case c.Code == "":
		return fmt.Errorf("code is required: %w", ErrInvalidInput)
	case !c.Value.IsPositive():
		return fmt.Errorf("value must be positive: %w", ErrInvalidInput)
	case c.DiscountType == models.DiscountPercentage && c.Value.GreaterThan(hundred):
		return fmt.Errorf("percentage cannot exceed 100: %w", ErrInvalidInput)
	case c.DiscountType != models.DiscountPercentage && c.DiscountType != models.DiscountFixed:
		return fmt.Errorf("discount type must be percentage or fixed: %w", ErrInvalidInput)
	case c.ValidFrom != nil && c.ValidUntil != nil && !c.ValidUntil.After(*c.ValidFrom):
		return fmt.Errorf("valid_until must be after valid_from: %w", ErrInvalidInput)
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, c *models.Coupon) error {
	if err := checkCouponRules(c); err != nil {
		return err
	}
	c.ID = ""
	c.UsedCount = 0
	return s.repo.Create(ctx, c)
}

func (s *CouponService) Get(ctx context.Context, id string) (*models.Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *CouponService) Update(ctx context.Context, c *models.Coupon) (*models.Coupon, error) {
	if err := checkCouponRules(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
