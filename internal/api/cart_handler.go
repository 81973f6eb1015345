package api

import (
	"net/http"

	"spalena53-be/internal/cart"
	"spalena53-be/internal/transport"

	"github.com/google/uuid"
)

type cartHandler struct {
	carts cart.Service
}

type addToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  *int      `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *cartHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID == uuid.Nil {
		writeError(w, r, &transport.ValidationError{Fields: map[string]string{"productId": "is required"}})
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	c, err := h.carts.AddToCart(r.Context(), cart.AddToCartParams{
		UserID:    currentUser(r),
		ProductID: req.ProductID,
		Quantity:  qty,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *cartHandler) update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateQuantityRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), cart.UpdateQuantityParams{
		UserID:    currentUser(r),
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *cartHandler) remove(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), currentUser(r), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *cartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), currentUser(r)); err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, messageResponse{Message: "Cart cleared"})
}
