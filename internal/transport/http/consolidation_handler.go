package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "tincli/internal/errors"
	"tincli/internal/middleware"
	"tincli/internal/services"
	api "tincli/pkg/contracts/api/v1"
)

// ConsolidationHandler handles consolidation HTTP requests
type ConsolidationHandler struct {
	service      ConsolidationServiceInterface
	validator    *middleware.Validator
	errorHandler *apperrors.ErrorHandler
	timeout      time.Duration
	logger       *slog.Logger
}

// NewConsolidationHandler creates a new consolidation handler. A zero
// timeout leaves runs bounded only by the request context.
func NewConsolidationHandler(service ConsolidationServiceInterface, errorHandler *apperrors.ErrorHandler, timeout time.Duration, logger *slog.Logger) *ConsolidationHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apperrors.NewErrorHandler(logger, false)
	}

	return &ConsolidationHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		errorHandler: errorHandler,
		timeout:      timeout,
		logger:       logger.With(slog.String("handler", "consolidation")),
	}
}

// Routes returns the consolidation routes
func (h *ConsolidationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).
		Post("/", h.Consolidate)
	return r
}

// Consolidate handles POST /api/consolidate
func (h *ConsolidationHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	var req api.ConsolidateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.logger.InfoContext(ctx, "Consolidation requested",
		slog.String("source_folder", req.SourceFolder),
		slog.String("flag_file", req.FlagFile))

	stats, err := h.service.Run(ctx, services.ConsolidateRequest{
		SourceFolder: req.SourceFolder,
		FlagFile:     req.FlagFile,
		OutputDir:    req.OutputDir,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.ConsolidateResponse{
		Message: services.SuccessMessage(stats),
		Warning: services.WarningMessage(stats),
		Stats:   stats,
	})
}
