package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null;index" validate:"required,min=3,max=100"`
	Description string          `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Category    string          `json:"category" gorm:"type:varchar(60);index" validate:"omitempty,max=60"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(500)" validate:"omitempty,url,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null" validate:"required,gt=0"`
	Stock       int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	IsActive    *bool           `json:"is_active,omitempty" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Active reports whether the product is listed. A nil flag means active.
func (p *Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category    string
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	ActiveOnly  bool
	Sort        string // newest, price_asc, price_desc, name
	Page        Page
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the row offset of the page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// PagedResult wraps one page of a listing.
type PagedResult[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
