// Package repository persists assessment records in PostgreSQL. Records hold
// computed outcomes only; raw patient inputs are never written.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/cardio-risk-server/internal/domain"
)

// ErrNotFound is returned when no record exists for the requested ID.
var ErrNotFound = errors.New("assessment not found")

// AssessmentRepository handles assessment record persistence
type AssessmentRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *pgxpool.Pool, logger *logrus.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new assessment record
func (r *AssessmentRepository) Create(ctx context.Context, record *domain.AssessmentRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assessments (
			id, calculator, outcome, risk_level, request_id,
			processing_time_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		string(record.Calculator),
		record.Outcome,
		record.RiskLevel,
		record.RequestID,
		record.ProcessingTimeMs,
		record.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"assessment_id": record.ID,
			"calculator":    record.Calculator,
			"error":         err,
		}).Error("Failed to create assessment record")
		return fmt.Errorf("creating assessment record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"assessment_id": record.ID,
		"calculator":    record.Calculator,
	}).Debug("Assessment record created")

	return nil
}

// GetByID retrieves an assessment record by its UUID
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*domain.AssessmentRecord, error) {
	query := `
		SELECT id, calculator, outcome, risk_level, request_id,
			   processing_time_ms, created_at
		FROM assessments
		WHERE id = $1`

	record, err := scanAssessment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		r.log.WithFields(logrus.Fields{
			"assessment_id": id,
			"error":         err,
		}).Error("Failed to get assessment by ID")
		return nil, fmt.Errorf("getting assessment by ID: %w", err)
	}

	return record, nil
}

// ListRecent retrieves the most recent assessment records
func (r *AssessmentRepository) ListRecent(ctx context.Context, limit, offset int) ([]*domain.AssessmentRecord, error) {
	query := `
		SELECT id, calculator, outcome, risk_level, request_id,
			   processing_time_ms, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.WithError(err).Error("Failed to list recent assessments")
		return nil, fmt.Errorf("listing recent assessments: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

// ListByCalculator retrieves records for one calculator with pagination
func (r *AssessmentRepository) ListByCalculator(ctx context.Context, calculator domain.Calculator, limit, offset int) ([]*domain.AssessmentRecord, error) {
	query := `
		SELECT id, calculator, outcome, risk_level, request_id,
			   processing_time_ms, created_at
		FROM assessments
		WHERE calculator = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, string(calculator), limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"calculator": calculator,
			"error":      err,
		}).Error("Failed to list assessments by calculator")
		return nil, fmt.Errorf("listing assessments by calculator: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

// Count returns the total number of stored assessment records
func (r *AssessmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting assessments: %w", err)
	}
	return count, nil
}

// CountByRiskLevel returns the number of records per risk level, ignoring
// records without one
func (r *AssessmentRepository) CountByRiskLevel(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT risk_level, COUNT(*)
		FROM assessments
		WHERE risk_level <> ''
		GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("counting by risk level: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scanning risk level count: %w", err)
		}
		counts[level] = count
	}
	return counts, rows.Err()
}

// scanAssessment scans one row into a record.
func scanAssessment(row pgx.Row) (*domain.AssessmentRecord, error) {
	var record domain.AssessmentRecord
	var calculator string

	err := row.Scan(
		&record.ID,
		&calculator,
		&record.Outcome,
		&record.RiskLevel,
		&record.RequestID,
		&record.ProcessingTimeMs,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Calculator = domain.Calculator(calculator)
	return &record, nil
}

// collectAssessments drains a result set into records.
func collectAssessments(rows pgx.Rows) ([]*domain.AssessmentRecord, error) {
	var records []*domain.AssessmentRecord
	for rows.Next() {
		record, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assessment row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessment rows: %w", err)
	}
	return records, nil
}
