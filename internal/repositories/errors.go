package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInsufficientStock is returned by a guarded stock decrement.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCouponExhausted is returned when a coupon has no uses left.
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	// ErrStatusConflict is returned when an order changed status concurrently.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// translate maps GORM errors onto the package sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
