package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobDetailPrefetch = "detail-prefetch"
	JobCatalogSync    = "catalog-sync"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type Job struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`      // "detail-prefetch" | "catalog-sync"
	Reference   string     `json:"reference"` // problem slug for detail-prefetch
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	LastError   *string    `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobUpdatesChannel is the Redis pub/sub channel job status changes are
// published on.
const JobUpdatesChannel = "job_updates"

type JobUpdate struct {
	JobID     uuid.UUID `json:"job_id"`
	Type      string    `json:"type"`
	Reference string    `json:"reference,omitempty"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
