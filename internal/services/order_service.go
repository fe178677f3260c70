package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tokoshop/internal/cache"
	"tokoshop/internal/events"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/telemetry"

	"github.com/shopspring/decimal"
)

// MaxOrderLines bounds the number of distinct products in one order.
const MaxOrderLines = 50

const idemPending = "pending"

// PlaceOrderItem is one requested line.
type PlaceOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// PlaceOrderRequest is the checkout payload. Prices are always taken from the
// catalog.
type PlaceOrderRequest struct {
	Items              []PlaceOrderItem `json:"items" validate:"required,min=1,max=50,dive"`
	ShippingName       string           `json:"shipping_name" validate:"required,max=150"`
	ShippingPhone      string           `json:"shipping_phone" validate:"required,max=30"`
	ShippingAddress    string           `json:"shipping_address" validate:"required,max=500"`
	ShippingCity       string           `json:"shipping_city" validate:"required,max=100"`
	ShippingPostalCode string           `json:"shipping_postal_code" validate:"omitempty,max=20"`
	BillingAddress     string           `json:"billing_address" validate:"omitempty,max=500"`
	PaymentMethod      string           `json:"payment_method" validate:"required,oneof=bank_transfer cod e_wallet credit_card"`
	CouponCode         string           `json:"coupon_code" validate:"omitempty,max=40"`
	Notes              string           `json:"notes" validate:"omitempty,max=1000"`
}

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID string
	Admin  bool
}

var statusFlow = map[string]string{
	models.OrderStatusPending:    models.OrderStatusProcessing,
	models.OrderStatusProcessing: models.OrderStatusShipped,
	models.OrderStatusShipped:    models.OrderStatusDelivered,
}

var paymentFlow = map[string]string{
	models.PaymentStatusUnpaid: models.PaymentStatusPaid,
	models.PaymentStatusPaid:   models.PaymentStatusRefunded,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	}
	return false
}

type listingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// OrderService handles business logic related to orders.
type OrderService struct {
	uow       repositories.UnitOfWork
	orderRepo repositories.OrderRepository
	publisher events.Publisher

	idem    cache.Store
	idemTTL time.Duration
	catalog listingInvalidator
	now     func() time.Time
}

type OrderOption func(*OrderService)

// WithIdempotency remembers Idempotency-Key headers in store for ttl.
func WithIdempotency(store cache.Store, ttl time.Duration) OrderOption {
	return func(s *OrderService) {
		s.idem, s.idemTTL = store, ttl
	}
}

// WithCatalog lets stock changes drop cached product listings.
func WithCatalog(c listingInvalidator) OrderOption {
	return func(s *OrderService) {
		s.catalog = c
	}
}

// NewOrderService creates a new OrderService.
func NewOrderService(uow repositories.UnitOfWork, orderRepo repositories.OrderRepository, publisher events.Publisher, opts ...OrderOption) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &OrderService{
		uow:       uow,
		orderRepo: orderRepo,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder creates an order atomically. With a non-empty idemKey a repeated
// request returns the order created by the first one and replayed is true.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest, idemKey string) (order *models.Order, replayed bool, err error) {
	if idemKey != "" && s.idem != nil {
		key := "idem:" + userID + ":" + idemKey
		existing, reserved, resErr := s.reserve(ctx, key)
		if resErr != nil {
			return nil, false, resErr
		}
		if existing != nil {
			return existing, true, nil
		}
		if reserved {
			defer func() { s.settleKey(ctx, key, order, err) }()
		}
	}

	order, err = s.placeOrder(ctx, userID, req)
	if err != nil {
		telemetry.OrderPlacementFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, false, err
	}

	telemetry.OrdersPlaced.Inc()
	s.refreshCatalog(ctx)
	s.publish(ctx, events.OrderCreated, order)
	slog.InfoContext(ctx, "order placed", "order_id", order.ID, "user_id", userID, "total", order.Total.StringFixed(2))
	return order, false, nil
}

// reserve claims key. It returns the stored order when the key was already
// completed and reserved=false when the store is unreachable.
func (s *OrderService) reserve(ctx context.Context, key string) (*models.Order, bool, error) {
	ok, err := s.idem.Reserve(ctx, key, []byte(idemPending), s.idemTTL)
	if err != nil {
		slog.WarnContext(ctx, "idempotency store unavailable", "error", err)
		return nil, false, nil
	}
	if ok {
		return nil, true, nil
	}

	val, err := s.idem.Get(ctx, key)
	if err != nil || string(val) == idemPending {
		return nil, false, ErrDuplicateRequest
	}
	order, err := s.orderRepo.GetByID(ctx, string(val))
	if err != nil {
		return nil, false, err
	}
	return order, false, nil
}

func (s *OrderService) settleKey(ctx context.Context, key string, order *models.Order, err error) {
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		if delErr := s.idem.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to release idempotency key", "error", delErr)
		}
		return
	}
	if setErr := s.idem.Set(ctx, key, []byte(order.ID), s.idemTTL); setErr != nil {
		slog.WarnContext(ctx, "failed to store idempotency key", "error", setErr)
	}
}

type orderLine struct {
	productID string
	quantity  int
}

// mergeLines validates and merges duplicate product lines, keeping first-seen order.
func mergeLines(items []PlaceOrderItem) ([]orderLine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	index := make(map[string]int, len(items))
	lines := make([]orderLine, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if it.ProductID == "" {
			return nil, ErrInvalidProduct
		}
		if i, ok := index[it.ProductID]; ok {
			lines[i].quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(lines)
		lines = append(lines, orderLine{productID: it.ProductID, quantity: it.Quantity})
	}
	if len(lines) > MaxOrderLines {
		return nil, ErrTooManyItems
	}
	return lines, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*models.Order, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}
	order := &models.Order{
		UserID:             userID,
		Status:             models.OrderStatusPending,
		PaymentStatus:      models.PaymentStatusUnpaid,
		PaymentMethod:      req.PaymentMethod,
		ShippingName:       req.ShippingName,
		ShippingPhone:      req.ShippingPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingPostalCode: req.ShippingPostalCode,
		BillingAddress:     billing,
		Notes:              req.Notes,
	}

	err = s.uow.Do(ctx, func(tx repositories.Tx) error {
		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.productID
		}
		found, err := tx.Products().GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		products := make(map[string]models.Product, len(found))
		for _, p := range found {
			products[p.ID] = p
		}
		for _, l := range lines {
			if p, ok := products[l.productID]; !ok || !p.Active() {
				return fmt.Errorf("product %s: %w", l.productID, ErrInvalidProduct)
			}
		}

		// decrement in id order so concurrent orders lock rows consistently
		sort.Strings(ids)
		qty := make(map[string]int, len(lines))
		for _, l := range lines {
			qty[l.productID] = l.quantity
		}
		for _, id := range ids {
			if err := tx.Products().DecrementStock(ctx, id, qty[id]); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					return fmt.Errorf("%s: %w", products[id].Name, ErrInsufficientStock)
				}
				return err
			}
		}

		subtotal := decimal.Zero
		order.Items = make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			p := products[l.productID]
			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
			subtotal = subtotal.Add(lineTotal)
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    l.quantity,
				LineTotal:   lineTotal,
			})
		}
		order.Subtotal = subtotal
		order.Discount = decimal.Zero

		if code := NormalizeCode(req.CouponCode); code != "" {
			discount, err := s.applyCoupon(ctx, tx, code, subtotal)
			if err != nil {
				return err
			}
			order.CouponCode = code
			order.CouponID = &discount.couponID
			order.Discount = discount.amount
		}
		order.Total = order.Subtotal.Sub(order.Discount)

		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

type appliedCoupon struct {
	couponID string
	amount   decimal.Decimal
}

func (s *OrderService) applyCoupon(ctx context.Context, tx repositories.Tx, code string, subtotal decimal.Decimal) (*appliedCoupon, error) {
	c, err := tx.Coupons().GetByCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("coupon %s: %w", code, ErrInvalidCoupon)
	}
	if err != nil {
		return nil, err
	}
	if err := CheckCoupon(c, subtotal, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := tx.Coupons().Redeem(ctx, c.ID); err != nil {
		if errors.Is(err, repositories.ErrCouponExhausted) {
			return nil, fmt.Errorf("coupon %s: %w", code, ErrCouponExhausted)
		}
		return nil, err
	}
	return &appliedCoupon{couponID: c.ID, amount: ComputeDiscount(c, subtotal)}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidProduct):
		return "invalid_product"
	case errors.Is(err, ErrInvalidCoupon), errors.Is(err, ErrCouponExpired),
		errors.Is(err, ErrCouponExhausted), errors.Is(err, ErrCouponMinimum):
		return "coupon"
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrTooManyItems):
		return "invalid_request"
	default:
		return "internal"
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		slog.WarnContext(ctx, "failed to publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}

func (s *OrderService) refreshCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.InvalidateListings(ctx)
	}
}

// ListMyOrders returns one page of the user's orders.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page models.Page) (*models.PagedResult[models.Order], error) {
	page = page.Normalize()
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return &models.PagedResult[models.Order]{Data: orders, Page: page.Number, PageSize: page.Size, Total: total}, nil
}

// GetOrder returns the order when the actor owns it or is an admin. Other
// callers get ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && order.UserID != actor.UserID {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return order, nil
}

// customerCancellable reports whether the owner may still cancel the order.
func customerCancellable(o *models.Order) bool {
	return o.Status == models.OrderStatusPending || o.Status == models.OrderStatusProcessing
}

// CancelOrder cancels an order, restocking its items, releasing its coupon
// use and refunding a paid order. Customers may cancel pending or processing
// orders; admins may cancel any order that is not yet terminal.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() || (!actor.Admin && !customerCancellable(order)) {
		return nil, fmt.Errorf("cannot cancel a %s order: %w", order.Status, ErrInvalidTransition)
	}

	err = s.uow.Do(ctx, func(tx repositories.Tx) error {
		if err := tx.Orders().UpdateStatus(ctx, order.ID, order.Status, models.OrderStatusCancelled); err != nil {
			return conflict(err)
		}
		for _, it := range order.Items {
			if err := tx.Products().IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if order.CouponID != nil {
			if err := tx.Coupons().Release(ctx, *order.CouponID); err != nil {
				return err
			}
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			if err := tx.Orders().UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid, models.PaymentStatusRefunded); err != nil {
				return conflict(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshCatalog(ctx)
	cancelled, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCancelled, cancelled)
	slog.InfoContext(ctx, "order cancelled", "order_id", order.ID, "by", actor.UserID)
	return cancelled, nil
}

func conflict(err error) error {
	if errors.Is(err, repositories.ErrStatusConflict) {
		return ErrStatusConflict
	}
	return err
}

// ListOrders returns one filtered page of all orders.
func (s *OrderService) ListOrders(ctx context.Context, f models.OrderFilter) (*models.PagedResult[models.Order], error) {
	if f.Status != "" && !ValidOrderStatus(f.Status) {
		return nil, fmt.Errorf("%q: %w", f.Status, ErrInvalidStatus)
	}
	f.Page = f.Page.Normalize()
	orders, total, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.PagedResult[models.Order]{Data: orders, Page: f.Page.Number, PageSize: f.Page.Size, Total: total}, nil
}

// UpdateOrderStatus moves an order one step along its lifecycle. Moving to
// cancelled goes through CancelOrder.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, id, status string) (*models.Order, error) {
	if !ValidOrderStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	if status == models.OrderStatusCancelled {
		return s.CancelOrder(ctx, Actor{UserID: actor.UserID, Admin: true}, id)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if statusFlow[order.Status] != status {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, status, ErrInvalidTransition)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		return nil, conflict(err)
	}

	order.Status = status
	s.publish(ctx, events.OrderStatusChanged, order)
	slog.InfoContext(ctx, "order status changed", "order_id", id, "status", status, "by", actor.UserID)
	return s.orderRepo.GetByID(ctx, id)
}

// UpdatePaymentStatus records a payment or a refund.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if paymentFlow[order.PaymentStatus] != status {
		return nil, fmt.Errorf("payment %s -> %s: %w", order.PaymentStatus, status, ErrInvalidTransition)
	}
	if status == models.PaymentStatusPaid && order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("cannot pay a cancelled order: %w", ErrInvalidTransition)
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, order.PaymentStatus, status); err != nil {
		return nil, conflict(err)
	}
	return s.orderRepo.GetByID(ctx, id)
}
