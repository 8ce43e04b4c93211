// Package audit provides persistent audit logging for completed risk
// assessments. Only the computed outcome and timing are stored; raw
// patient inputs never reach the audit trail.
package audit

import (
	"context"
	"io"
	"time"

	"github.com/cardio-risk-server/internal/domain"
)

// Entry represents one audited assessment.
type Entry struct {
	ID               int64             `json:"id,omitempty"`
	AssessmentID     string            `json:"assessment_id"`     // UUID assigned at assessment time
	Calculator       domain.Calculator `json:"calculator"`        // Which engine produced the outcome
	Outcome          string            `json:"outcome"`           // Human-readable outcome summary
	RiskLevel        string            `json:"risk_level,omitempty"`
	RequestID        string            `json:"request_id,omitempty"` // Correlation ID from the transport layer
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Store defines the interface for audit storage operations.
type Store interface {
	// Save appends an audit entry. Entries are immutable once written.
	Save(ctx context.Context, entry *Entry) error

	// Get retrieves an entry by its assessment UUID.
	// Returns nil without error when no entry exists.
	Get(ctx context.Context, assessmentID string) (*Entry, error)

	// List returns entries newest-first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Entry, error)

	// Count returns the total number of audit entries.
	Count(ctx context.Context) (int64, error)

	// ExportJSON exports the full audit trail to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Entries    []*Entry  `json:"entries"`
}
