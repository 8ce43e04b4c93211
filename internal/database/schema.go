package database

import (
	"context"
	"fmt"
)

// assessmentSchema is the full assessment persistence schema. Statements are
// idempotent so they can run on every startup; there is no migration history
// because the schema only ever grows additively.
const assessmentSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id UUID PRIMARY KEY,
	calculator TEXT NOT NULL,
	outcome TEXT NOT NULL,
	risk_level TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	processing_time_ms INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_assessments_calculator ON assessments(calculator);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level) WHERE risk_level <> '';
`

// EnsureSchema creates the assessment tables and indexes if they do not
// exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, assessmentSchema); err != nil {
		return fmt.Errorf("ensuring assessment schema: %w", err)
	}
	db.log.Debug("Assessment schema ensured")
	return nil
}
