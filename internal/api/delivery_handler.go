package api

import (
	"net/http"
	"strings"

	"spalena53-be/internal/delivery"
	"spalena53-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

type deliveryHandler struct {
	delivery DeliveryService
}

func (h *deliveryHandler) methods(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.delivery.Methods())
}

func (h *deliveryHandler) points(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	provider := delivery.Method(strings.ToUpper(strings.TrimSpace(q.Get("provider"))))

	pts, err := h.delivery.Points(r.Context(), provider, q.Get("city"), q.Get("postalCode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, pts)
}

func (h *deliveryHandler) track(w http.ResponseWriter, r *http.Request) {
	t, err := h.delivery.Track(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, t)
}
