package service

import (
	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/validate"
)

// strokeWeights holds the CHA2DS2-VASc point values in component order.
// Fixed at process start and never mutated.
var strokeWeights = []struct {
	field  string
	points int
}{
	{"chf", 1},          // C  = Congestive heart failure
	{"hypertension", 1}, // H  = Hypertension
	{"age_ge_75", 2},    // A  = Age >= 75
	{"diabetes", 1},     // D  = Diabetes
	{"stroke", 2},       // S  = Stroke/TIA/thromboembolism
	{"vascular", 1},     // V  = Vascular disease
	{"age_65_74", 1},    // A  = Age 65-74
	{"female", 1},       // Sc = Sex category (female)
}

// ScoreStrokeRisk computes the CHA2DS2-VASc stroke risk score for atrial
// fibrillation patients.
//
// Reference:
//	Lip GYH, Frison L, Halperin JL, Lane DA. Refining Clinical Risk
//	Stratification for Predicting Stroke and Thromboembolism in Atrial
//	Fibrillation. Chest. 2010;137(4):996-1002. doi:10.1378/chest.10-1273
//
// The result is a pure weighted sum in [0,9]; the age bands are mutually
// exclusive, enforced by validation.
func ScoreStrokeRisk(data map[string]interface{}) (int, error) {
	if err := validate.StrokeRiskInput(data); err != nil {
		return 0, err
	}

	score := 0
	for _, w := range strokeWeights {
		v, _ := validate.Flag(data[w.field])
		score += v * w.points
	}
	return score, nil
}

// StrokeRiskLevel maps a CHA2DS2-VASc score onto the coarse risk bands used
// in assessment summaries.
func StrokeRiskLevel(score int) domain.RiskLevel {
	switch {
	case score >= 2:
		return domain.HIGH_RISK
	case score == 1:
		return domain.MODERATE_RISK
	default:
		return domain.LOW_RISK
	}
}
