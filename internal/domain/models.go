package domain

import (
	"time"
)

// Result Types
//
// All results are value objects produced fresh per call. Nothing here is
// cached or shared between calculations.

// ASCVDResult represents a computed 10-year ASCVD risk.
type ASCVDResult struct {
	Risk        float64   `json:"risk"`         // probability in [0,1]
	RiskPercent float64   `json:"risk_percent"` // rounded to two decimals
	Group       RiskGroup `json:"group"`
}

// RhythmInterpretation represents the detailed rhythm result, including the
// sentinel form produced when validation fails.
type RhythmInterpretation struct {
	Rhythm     RhythmLabel     `json:"rhythm"`
	Confidence ConfidenceLevel `json:"confidence"`
	Notes      string          `json:"notes"`
}

// TwelveLeadReport represents the 12-lead findings result. Findings are
// ordered, human-readable strings; the risk level is the maximum severity
// over the findings that produced them.
type TwelveLeadReport struct {
	Findings        []string  `json:"findings"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
}

// ECGReport merges the rhythm interpretation and the 12-lead report into a
// unified summary for report generation.
type ECGReport struct {
	Rhythm             RhythmInterpretation `json:"rhythm"`
	TwelveLeadFindings []string             `json:"twelve_lead_findings"`
	OverallRisk        RiskLevel            `json:"overall_risk"`
	Recommendations    []string             `json:"recommendations"`
}

// AssessmentRecord represents a stored assessment outcome. Only the computed
// outcome is recorded; raw patient inputs are never persisted.
type AssessmentRecord struct {
	ID               string     `json:"id"`
	Calculator       Calculator `json:"calculator"`
	Outcome          string     `json:"outcome"`
	RiskLevel        string     `json:"risk_level,omitempty"`
	RequestID        string     `json:"request_id,omitempty"`
	ProcessingTimeMs int        `json:"processing_time_ms"`
	CreatedAt        time.Time  `json:"created_at"`
}
