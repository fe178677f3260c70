package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesFilter selects the window and grouping of a sales report.
type SalesFilter struct {
	From    time.Time
	To      time.Time
	Status  string
	GroupBy string // day or month
}

// SalesRow is one period of a sales report.
type SalesRow struct {
	Period    string          `json:"period"`
	Orders    int64           `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Discounts decimal.Decimal `json:"discounts"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Users          int64                  `json:"users"`
	Products       int64                  `json:"products"`
	Orders         int64                  `json:"orders"`
	Revenue        decimal.Decimal        `json:"revenue"`
	OrdersByStatus []StatusCount          `json:"orders_by_status"`
	LowStock       []Product              `json:"low_stock"`
	RecentOrders   []Order                `json:"recent_orders"`
	UnreadMessages int64                  `json:"unread_messages"`
	TopFavorites   []ProductFavoriteCount `json:"top_favorites"`
	RecentActivity []OrderActivity        `json:"recent_activity"`
}
