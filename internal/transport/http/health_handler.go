package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"tincli/pkg/contracts"
	api "tincli/pkg/contracts/api/v1"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service ConsolidationServiceInterface
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service ConsolidationServiceInterface, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	running := h.service != nil && h.service.IsRunning()
	render.JSON(w, r, api.HealthResponse{
		Status:    "healthy",
		Version:   contracts.Version,
		Running:   running,
		Timestamp: time.Now().UTC(),
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
