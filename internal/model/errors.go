package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core services. Handlers translate them to
// HTTP status codes with errors.Is / errors.As.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// InsufficientStockError aborts an order placement or a ledger movement that
// would drive a product's stock below zero. It names the offending product
// so POS staff can correct the cart immediately.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError rejects an order status change outside the allowed
// workflow.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

// ValidationError reports malformed input rejected before any persistence.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
