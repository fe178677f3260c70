package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code. UsageLimit 0 means unlimited.
type Coupon struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code           string          `json:"code" gorm:"uniqueIndex;type:varchar(40);not null" validate:"required,min=3,max=40"`
	Description    string          `json:"description" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	DiscountType   string          `json:"discount_type" gorm:"type:varchar(20);not null" validate:"required,oneof=percentage fixed"`
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null" validate:"required,gt=0"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(12,2);not null;default:0" validate:"gte=0"`
	MaxDiscount    decimal.Decimal `json:"max_discount" gorm:"type:decimal(12,2);not null;default:0" validate:"gte=0"`
	UsageLimit     int             `json:"usage_limit" gorm:"not null;default:0" validate:"gte=0"`
	UsedCount      int             `json:"used_count" gorm:"not null;default:0"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	IsActive       bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
