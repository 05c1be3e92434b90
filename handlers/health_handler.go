package handlers

import (
	"context"
	"net/http"

	"github.com/upb/content-governance/utils"
	"go.uber.org/zap"
)

// HealthChecker verifies the storage layer is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the health/readiness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	DB      string `json:"db,omitempty"`
}

// HealthHandler serves liveness and readiness endpoints
type HealthHandler struct {
	db      HealthChecker
	logger  *zap.Logger
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker, logger *zap.Logger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		logger:  logger,
		version: version,
	}
}

// HandleHealthz handles GET /healthz. Liveness only; no dependencies
// are touched.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{OK: true, Version: h.version})
}

// HandleReadyz handles GET /readyz. Pings the database and reports 503
// when it is unreachable.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "database not ready")
		return
	}
	_ = utils.WriteOK(w, HealthResponse{OK: true, Version: h.version, DB: "ok"})
}
