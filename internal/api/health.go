package api

import (
	"context"
	"net/http"
	"time"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/metrics"
	"spalena53-be/internal/transport"

	"go.uber.org/zap"
)

type healthHandler struct {
	db      Pinger
	metrics *metrics.Registry
}

type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Metrics  *metrics.Snapshot `json:"metrics,omitempty"`
}

func (h *healthHandler) get(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Warn("health check: database unreachable", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "down"
			code = http.StatusServiceUnavailable
		}
	}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		resp.Metrics = &snap
	}

	transport.WriteJSON(w, code, resp)
}
