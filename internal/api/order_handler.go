package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/order"
	"spalena53-be/internal/redisx"
	"spalena53-be/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

type orderHandler struct {
	orders order.Service
	idem   Idempotency
}

type placedOrder struct {
	*order.Order
	Shipment order.ShipmentState `json:"shipment"`
}

type placeOrderResponse struct {
	Order   placedOrder `json:"order"`
	Message string      `json:"message"`
}

func shipmentState(o *order.Order) order.ShipmentState {
	if o.TrackingNumber != nil {
		return order.ShipmentRegistered
	}
	return order.ShipmentPending
}

func (h *orderHandler) place(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUser(r)

	var in order.PlaceOrderInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	claimed := false
	if key != "" && h.idem != nil {
		claim, err := h.idem.ClaimOrder(ctx, userID, key)
		switch {
		case errors.Is(err, redisx.ErrRequestInFlight), errors.Is(err, redisx.ErrInvalidKey):
			writeError(w, r, err)
			return
		case err != nil:
			// redis unavailable: place without the guard
			logger.FromCtx(ctx).Warn("idempotency store unavailable", zap.Error(err))
		case claim.OrderID != nil:
			h.replay(w, r, userID, *claim.OrderID)
			return
		default:
			claimed = claim.Claimed
		}
	}

	res, err := h.orders.PlaceOrder(ctx, userID, in)
	if err != nil {
		if claimed {
			h.release(ctx, userID, key)
		}
		writeError(w, r, err)
		return
	}

	if claimed {
		if err := h.idem.CompleteOrder(ctx, userID, key, res.Order.ID); err != nil {
			logger.FromCtx(ctx).Warn("failed to record idempotency key",
				zap.String("order_id", res.Order.ID.String()),
				zap.Error(err),
			)
		}
	}

	transport.WriteJSON(w, http.StatusCreated, placeOrderResponse{
		Order:   placedOrder{Order: res.Order, Shipment: res.Shipment},
		Message: "Order created successfully",
	})
}

func (h *orderHandler) replay(w http.ResponseWriter, r *http.Request, userID, orderID uuid.UUID) {
	o, err := h.orders.Get(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, placeOrderResponse{
		Order:   placedOrder{Order: o, Shipment: shipmentState(o)},
		Message: "Order already created",
	})
}

func (h *orderHandler) release(ctx context.Context, userID uuid.UUID, key string) {
	if err := h.idem.ReleaseOrder(context.WithoutCancel(ctx), userID, key); err != nil {
		logger.FromCtx(ctx).Warn("failed to release idempotency key", zap.Error(err))
	}
}

func (h *orderHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, list)
}

func (h *orderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

func (h *orderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var upd order.StatusUpdate
	if err := transport.DecodeJSON(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), currentUser(r), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}
