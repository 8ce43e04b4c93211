package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cardio-risk-server/internal/audit"
	"github.com/cardio-risk-server/internal/domain"
)

// AssessmentRepository persists assessment records for later retrieval.
// Implemented by the pgx-backed repository; nil when the database is
// disabled.
type AssessmentRepository interface {
	Create(ctx context.Context, record *domain.AssessmentRecord) error
}

// StrokeRiskResult pairs a CHA2DS2-VASc score with its risk band.
type StrokeRiskResult struct {
	Score     int              `json:"score"`
	RiskLevel domain.RiskLevel `json:"risk_level"`
}

// AssessorService orchestrates the risk calculators and records every
// completed assessment to the audit trail.
type AssessorService struct {
	logger     *logrus.Logger
	auditStore audit.Store
	repository AssessmentRepository
}

// NewAssessorService creates a new assessor service. auditStore and
// repository may be nil; assessments then run without persistence.
func NewAssessorService(logger *logrus.Logger, auditStore audit.Store, repository AssessmentRepository) *AssessorService {
	return &AssessorService{
		logger:     logger,
		auditStore: auditStore,
		repository: repository,
	}
}

// AssessASCVD computes the 10-year ASCVD risk for a patient profile.
func (s *AssessorService) AssessASCVD(ctx context.Context, requestID string, data map[string]interface{}) (*domain.ASCVDResult, *domain.AssessmentRecord, error) {
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"calculator": domain.CALC_ASCVD,
		"request_id": requestID,
	}).Info("Starting ASCVD risk assessment")

	result, err := ComputeASCVDRisk(data)
	if err != nil {
		return nil, nil, err
	}

	record := s.recordAssessment(ctx, domain.CALC_ASCVD,
		fmt.Sprintf("10-year ASCVD risk %.2f%% (%s)", result.RiskPercent, result.Group),
		"", requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator":   domain.CALC_ASCVD,
		"risk_percent": result.RiskPercent,
		"group":        result.Group,
		"request_id":   requestID,
	}).Info("ASCVD risk assessment completed")

	return result, record, nil
}

// AssessBloodPressure classifies a blood pressure reading.
func (s *AssessorService) AssessBloodPressure(ctx context.Context, requestID string, sbp, dbp interface{}) (domain.BPCategory, *domain.AssessmentRecord, error) {
	startTime := time.Now()

	category, err := ClassifyBloodPressure(sbp, dbp)
	if err != nil {
		return "", nil, err
	}

	record := s.recordAssessment(ctx, domain.CALC_BP,
		fmt.Sprintf("Blood pressure category: %s", category),
		"", requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator": domain.CALC_BP,
		"category":   category,
		"request_id": requestID,
	}).Info("Blood pressure classification completed")

	return category, record, nil
}

// AssessStrokeRisk computes a CHA2DS2-VASc score and its risk band.
func (s *AssessorService) AssessStrokeRisk(ctx context.Context, requestID string, data map[string]interface{}) (*StrokeRiskResult, *domain.AssessmentRecord, error) {
	startTime := time.Now()

	score, err := ScoreStrokeRisk(data)
	if err != nil {
		return nil, nil, err
	}
	level := StrokeRiskLevel(score)

	record := s.recordAssessment(ctx, domain.CALC_STROKE,
		fmt.Sprintf("CHA2DS2-VASc score %d", score),
		level, requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator": domain.CALC_STROKE,
		"score":      score,
		"risk_level": level,
		"request_id": requestID,
	}).Info("Stroke risk scoring completed")

	return &StrokeRiskResult{Score: score, RiskLevel: level}, record, nil
}

// AssessRhythm interprets a rhythm strip. Invalid input surfaces inside the
// interpretation, so no error is returned.
func (s *AssessorService) AssessRhythm(ctx context.Context, requestID string, data map[string]interface{}) (*domain.RhythmInterpretation, *domain.AssessmentRecord) {
	startTime := time.Now()

	result := InterpretRhythm(data)

	record := s.recordAssessment(ctx, domain.CALC_ECG,
		fmt.Sprintf("Rhythm: %s", result.Rhythm),
		"", requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator": domain.CALC_ECG,
		"rhythm":     result.Rhythm,
		"confidence": result.Confidence,
		"request_id": requestID,
	}).Info("Rhythm interpretation completed")

	return result, record
}

// AssessTwelveLead interprets 12-lead findings. Invalid input surfaces
// inside the report, so no error is returned.
func (s *AssessorService) AssessTwelveLead(ctx context.Context, requestID string, data map[string]interface{}) (*domain.TwelveLeadReport, *domain.AssessmentRecord) {
	startTime := time.Now()

	result := InterpretTwelveLead(data)

	record := s.recordAssessment(ctx, domain.CALC_ECG,
		fmt.Sprintf("12-lead findings: %d", len(result.Findings)),
		result.RiskLevel, requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator": domain.CALC_ECG,
		"findings":   len(result.Findings),
		"risk_level": result.RiskLevel,
		"request_id": requestID,
	}).Info("12-lead interpretation completed")

	return result, record
}

// AssessECG produces the combined rhythm and 12-lead report.
func (s *AssessorService) AssessECG(ctx context.Context, requestID string, data map[string]interface{}) (*domain.ECGReport, *domain.AssessmentRecord) {
	startTime := time.Now()

	result := InterpretECG(data)

	record := s.recordAssessment(ctx, domain.CALC_ECG,
		fmt.Sprintf("Rhythm: %s; 12-lead findings: %d", result.Rhythm.Rhythm, len(result.TwelveLeadFindings)),
		result.OverallRisk, requestID, startTime)

	s.logger.WithFields(logrus.Fields{
		"calculator":   domain.CALC_ECG,
		"rhythm":       result.Rhythm.Rhythm,
		"overall_risk": result.OverallRisk,
		"request_id":   requestID,
	}).Info("Comprehensive ECG interpretation completed")

	return result, record
}

// recordAssessment builds the assessment record and writes it to the audit
// trail and repository. Persistence failures are logged but never fail the
// assessment itself.
func (s *AssessorService) recordAssessment(ctx context.Context, calculator domain.Calculator, outcome string, riskLevel domain.RiskLevel, requestID string, startTime time.Time) *domain.AssessmentRecord {
	record := &domain.AssessmentRecord{
		ID:               uuid.New().String(),
		Calculator:       calculator,
		Outcome:          outcome,
		RiskLevel:        string(riskLevel),
		RequestID:        requestID,
		ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
		CreatedAt:        time.Now(),
	}

	if s.auditStore != nil {
		entry := &audit.Entry{
			AssessmentID:     record.ID,
			Calculator:       calculator,
			Outcome:          outcome,
			RiskLevel:        string(riskLevel),
			RequestID:        requestID,
			ProcessingTimeMs: int64(record.ProcessingTimeMs),
			CreatedAt:        record.CreatedAt,
		}
		if err := s.auditStore.Save(ctx, entry); err != nil {
			s.logger.WithError(err).Warn("Failed to write audit entry")
		}
	}

	if s.repository != nil {
		if err := s.repository.Create(ctx, record); err != nil {
			s.logger.WithError(err).Warn("Failed to persist assessment record")
		}
	}

	return record
}
