package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoAddressAvailable  = errors.New("no delivery address available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderNumberConflict = errors.New("order number conflict")
	ErrPlacementTimeout    = errors.New("order placement timed out")
	ErrOrderNotFound       = errors.New("order not found")

	ErrFailedPlaceOrder  = errors.New("failed to place order")
	ErrFailedGetOrders   = errors.New("failed to get orders")
	ErrFailedUpdateOrder = errors.New("failed to update order")

	PgUniqueViolation     = "23505"
	orderNumberConstraint = "orders_order_number_key"
)

// InsufficientStockError names the first product that could not be reserved.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
