package api

import (
	"time"

	"tincli/pkg/contracts/domain"
)

// ConsolidateResponse is returned after a successful run
type ConsolidateResponse struct {
	Message string               `json:"message"`
	Warning string               `json:"warning,omitempty"`
	Stats   *domain.SummaryStats `json:"stats"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Running   bool      `json:"running"`
	Timestamp time.Time `json:"timestamp"`
}
