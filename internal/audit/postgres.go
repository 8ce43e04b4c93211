package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/cardio-risk-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL audit store over an existing
// connection and ensures the audit schema exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createPostgresSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL audit store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func createPostgresSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments_audit (
		id BIGSERIAL PRIMARY KEY,
		assessment_id TEXT NOT NULL UNIQUE,
		calculator TEXT NOT NULL,
		outcome TEXT NOT NULL,
		risk_level TEXT DEFAULT '',
		request_id TEXT DEFAULT '',
		processing_time_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_audit_calculator ON assessments_audit(calculator);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON assessments_audit(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save appends an audit entry.
func (s *PostgresStore) Save(ctx context.Context, entry *Entry) error {
	if entry.AssessmentID == "" {
		return fmt.Errorf("assessment ID is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assessments_audit (
			assessment_id, calculator, outcome,
			risk_level, request_id, processing_time_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.AssessmentID,
		string(entry.Calculator),
		entry.Outcome,
		entry.RiskLevel,
		entry.RequestID,
		entry.ProcessingTimeMs,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves an entry by its assessment UUID.
func (s *PostgresStore) Get(ctx context.Context, assessmentID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, assessment_id, calculator, outcome,
			risk_level, request_id, processing_time_ms, created_at
		FROM assessments_audit
		WHERE assessment_id = $1
		LIMIT 1
	`, assessmentID)

	e := &Entry{}
	var calculator string
	err := row.Scan(
		&e.ID, &e.AssessmentID, &calculator, &e.Outcome,
		&e.RiskLevel, &e.RequestID, &e.ProcessingTimeMs, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	e.Calculator = domain.Calculator(calculator)
	return e, nil
}

// List returns entries newest-first with pagination.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, assessment_id, calculator, outcome,
			risk_level, request_id, processing_time_ms, created_at
		FROM assessments_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		e := &Entry{}
		var calculator string
		err := rows.Scan(
			&e.ID, &e.AssessmentID, &calculator, &e.Outcome,
			&e.RiskLevel, &e.RequestID, &e.ProcessingTimeMs, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Calculator = domain.Calculator(calculator)
		result = append(result, e)
	}
	return result, rows.Err()
}

// Count returns the total number of audit entries.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments_audit").Scan(&count)
	return count, err
}

// ExportJSON exports the full audit trail to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Entries:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
