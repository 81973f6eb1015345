package api

import (
	"net/http"

	"spalena53-be/internal/order"
	"spalena53-be/internal/payment"
	"spalena53-be/internal/transport"

	"github.com/google/uuid"
)

type paymentHandler struct {
	payments payment.Service
}

type createIntentRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type confirmResponse struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order"`
}

func (h *paymentHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.OrderID == uuid.Nil {
		writeError(w, r, &transport.ValidationError{Fields: map[string]string{"orderId": "is required"}})
		return
	}

	res, err := h.payments.CreateIntent(r.Context(), currentUser(r), req.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *paymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.payments.Confirm(r.Context(), req.PaymentIntentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, confirmResponse{Success: true, Order: o})
}
