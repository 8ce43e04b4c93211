package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cardio-risk-server/internal/database"
	"github.com/cardio-risk-server/internal/domain"
)

// generateTestPassword creates a random password for test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if os.Getenv("RUN_DB_TESTS") == "" {
		t.Skip("Skipping database integration test; set RUN_DB_TESTS=1 to run")
	}

	ctx := context.Background()
	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := database.Config{
		Host:        host,
		Port:        port.Int(),
		Database:    "testdb",
		Username:    "testuser",
		Password:    testPassword,
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: time.Minute * 30,
		SSLMode:     "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func testRecord(calculator domain.Calculator, outcome, riskLevel string) *domain.AssessmentRecord {
	return &domain.AssessmentRecord{
		ID:               uuid.New().String(),
		Calculator:       calculator,
		Outcome:          outcome,
		RiskLevel:        riskLevel,
		RequestID:        uuid.New().String(),
		ProcessingTimeMs: 3,
		CreatedAt:        time.Now(),
	}
}

func TestAssessmentRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)
	ctx := context.Background()

	record := testRecord(domain.CALC_ASCVD, "10-year ASCVD risk 5.38% (male/white)", "")
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Calculator != domain.CALC_ASCVD {
		t.Errorf("GetByID() calculator = %v, want %v", got.Calculator, domain.CALC_ASCVD)
	}
	if got.Outcome != record.Outcome {
		t.Errorf("GetByID() outcome = %q, want %q", got.Outcome, record.Outcome)
	}
	if got.RequestID != record.RequestID {
		t.Errorf("GetByID() request ID = %q, want %q", got.RequestID, record.RequestID)
	}
}

func TestAssessmentRepository_GetByIDNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)

	_, err := repo.GetByID(context.Background(), uuid.New().String())
	if err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestAssessmentRepository_ListRecentOrdering(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)
	ctx := context.Background()

	older := testRecord(domain.CALC_BP, "Blood pressure category: Normal", "")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testRecord(domain.CALC_STROKE, "CHA2DS2-VASc score 4", "High")

	if err := repo.Create(ctx, older); err != nil {
		t.Fatalf("Create(older) error: %v", err)
	}
	if err := repo.Create(ctx, newer); err != nil {
		t.Fatalf("Create(newer) error: %v", err)
	}

	records, err := repo.ListRecent(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListRecent() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRecent() returned %d records, want 2", len(records))
	}
	if records[0].ID != newer.ID {
		t.Errorf("ListRecent() first record = %s, want newest %s", records[0].ID, newer.ID)
	}

	byCalc, err := repo.ListByCalculator(ctx, domain.CALC_STROKE, 10, 0)
	if err != nil {
		t.Fatalf("ListByCalculator() error: %v", err)
	}
	if len(byCalc) != 1 || byCalc[0].Calculator != domain.CALC_STROKE {
		t.Errorf("ListByCalculator() = %+v, want single stroke_risk record", byCalc)
	}
}

func TestAssessmentRepository_Counts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)
	ctx := context.Background()

	for _, level := range []string{"High", "High", "Low", ""} {
		if err := repo.Create(ctx, testRecord(domain.CALC_ECG, "Rhythm: Normal sinus rhythm", level)); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if total != 4 {
		t.Errorf("Count() = %d, want 4", total)
	}

	byLevel, err := repo.CountByRiskLevel(ctx)
	if err != nil {
		t.Fatalf("CountByRiskLevel() error: %v", err)
	}
	if byLevel["High"] != 2 || byLevel["Low"] != 1 {
		t.Errorf("CountByRiskLevel() = %v, want High=2 Low=1", byLevel)
	}
	if _, ok := byLevel[""]; ok {
		t.Error("CountByRiskLevel() should not include empty risk levels")
	}
}
