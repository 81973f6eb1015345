package api

import (
	"context"
	"errors"
	"net/http"

	"spalena53-be/internal/address"
	"spalena53-be/internal/cart"
	"spalena53-be/internal/category"
	"spalena53-be/internal/delivery"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/order"
	"spalena53-be/internal/payment"
	"spalena53-be/internal/product"
	"spalena53-be/internal/redisx"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/user"

	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	// auth
	{order.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{payment.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{address.ErrUserNotAuthenticated, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{user.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{user.ErrUserExists, http.StatusBadRequest, "user_exists", "User with this email already exists"},

	// order placement
	{order.ErrEmptyCart, http.StatusBadRequest, "empty_cart", "Cart is empty"},
	{order.ErrNoAddressAvailable, http.StatusBadRequest, "no_address", "No delivery address available"},
	{order.ErrOrderNumberConflict, http.StatusConflict, "conflict", "Could not allocate order number, please retry"},
	{order.ErrPlacementTimeout, http.StatusServiceUnavailable, "timeout", "Order placement timed out, please retry"},

	// cart
	{cart.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock", "Insufficient stock"},
	{cart.ErrCartEmpty, http.StatusBadRequest, "empty_cart", "Cart already empty"},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "invalid_data", "Quantity must be positive"},
	{cart.ErrCartItemAlreadyExist, http.StatusConflict, "conflict", "Cart was updated concurrently, please retry"},

	// catalog
	{product.ErrSKUExists, http.StatusConflict, "conflict", "Product with this SKU already exists"},
	{product.ErrUnknownCategory, http.StatusBadRequest, "invalid_data", "Category does not exist"},

	// payment
	{payment.ErrAlreadyPaid, http.StatusBadRequest, "already_paid", "Order is already paid"},
	{payment.ErrPaymentNotSuccessful, http.StatusBadRequest, "payment_not_successful", "Payment not successful"},
	{payment.ErrGateway, http.StatusBadGateway, "internal_error", "Payment provider is unavailable"},

	// delivery
	{delivery.ErrInvalidProvider, http.StatusBadRequest, "invalid_provider", "Invalid provider"},
	{delivery.ErrInvalidMethod, http.StatusBadRequest, "invalid_data", "Invalid delivery method"},

	// idempotency
	{redisx.ErrRequestInFlight, http.StatusConflict, "conflict", "A request with this idempotency key is in progress"},
	{redisx.ErrInvalidKey, http.StatusBadRequest, "invalid_data", "Invalid Idempotency-Key header"},

	// not found
	{order.ErrOrderNotFound, http.StatusNotFound, "not_found", "Order not found"},
	{payment.ErrOrderNotFound, http.StatusNotFound, "not_found", "Order not found"},
	{payment.ErrPaymentNotFound, http.StatusNotFound, "not_found", "Payment not found"},
	{product.ErrProductNotFound, http.StatusNotFound, "not_found", "Product not found"},
	{cart.ErrProductNotFound, http.StatusNotFound, "not_found", "Product not found"},
	{cart.ErrCartItemNotFound, http.StatusNotFound, "not_found", "Cart item not found"},
	{address.ErrAddressNotFound, http.StatusNotFound, "not_found", "Address not found"},
	{category.ErrCategoryNotFound, http.StatusNotFound, "not_found", "Category not found"},
	{delivery.ErrTrackingNotFound, http.StatusNotFound, "not_found", "Tracking number not found"},
}

// writeError maps a service error onto the JSON error envelope. Anything not
// classified is logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *transport.ValidationError
	if errors.As(err, &verr) {
		transport.WriteValidationError(w, verr)
		return
	}

	var stockErr *order.InsufficientStockError
	if errors.As(err, &stockErr) {
		transport.WriteJSON(w, http.StatusBadRequest, transport.ErrorResponse{
			Error:   "insufficient_stock",
			Message: "Insufficient stock for " + stockErr.ProductName,
			Details: map[string]string{"productId": stockErr.ProductID.String()},
		})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logger.FromCtx(r.Context()).Warn("request failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
			transport.WriteError(w, m.status, m.code, m.message)
			return
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		transport.WriteError(w, http.StatusServiceUnavailable, "timeout", "Request timed out")
		return
	}

	logger.FromCtx(r.Context()).Error("unhandled error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	transport.WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
