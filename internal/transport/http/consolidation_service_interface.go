package http

import (
	"context"

	"tincli/internal/services"
	"tincli/pkg/contracts/domain"
)

// ConsolidationServiceInterface defines the operations the HTTP layer needs
// from the consolidation service
type ConsolidationServiceInterface interface {
	Run(ctx context.Context, req services.ConsolidateRequest) (*domain.SummaryStats, error)
	IsRunning() bool
}
