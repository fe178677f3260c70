package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(100);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"` // price at the time of order
	Quantity    int             `json:"quantity" gorm:"not null"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
}

// Order represents a customer order.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Status             string          `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentStatus      string          `json:"payment_status" gorm:"type:varchar(20);not null"`
	PaymentMethod      string          `json:"payment_method" gorm:"type:varchar(30);not null"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount           decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	Total              decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CouponID           *string         `json:"-" gorm:"type:varchar(36);index"`
	CouponCode         string          `json:"coupon_code,omitempty" gorm:"type:varchar(40)"`
	ShippingName       string          `json:"shipping_name" gorm:"type:varchar(150);not null"`
	ShippingPhone      string          `json:"shipping_phone" gorm:"type:varchar(30);not null"`
	ShippingAddress    string          `json:"shipping_address" gorm:"type:varchar(500);not null"`
	ShippingCity       string          `json:"shipping_city" gorm:"type:varchar(100);not null"`
	ShippingPostalCode string          `json:"shipping_postal_code" gorm:"type:varchar(20)"`
	BillingAddress     string          `json:"billing_address" gorm:"type:varchar(500)"`
	Notes              string          `json:"notes,omitempty" gorm:"type:varchar(1000)"`
	Items              []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// IsTerminal reports whether no further status change is allowed.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// OrderFilter narrows an admin order listing.
type OrderFilter struct {
	Status string
	UserID string
	Page   Page
}

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
