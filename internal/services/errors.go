package services

import (
	"errors"

	"tokoshop/internal/repositories"
)

var (
	ErrNotFound = repositories.ErrNotFound

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfAction         = errors.New("admins cannot change or delete their own account")
	ErrInvalidInput       = errors.New("invalid input")

	ErrInvalidProduct    = errors.New("product does not exist or is not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrTooManyItems      = errors.New("too many order lines")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrStatusConflict    = errors.New("order was modified concurrently")
	ErrDuplicateRequest  = errors.New("request with this idempotency key is in progress")

	ErrInvalidCoupon   = errors.New("coupon is not valid")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrCouponMinimum   = errors.New("order does not reach the coupon minimum amount")

	ErrAlreadyFavorited = errors.New("product already in favorites")
)
