// Package domain contains core business entities and types for rule-based
// cardiovascular risk assessment.
//
// References:
//   - Goff DC Jr, Lloyd-Jones DM, et al. 2013 ACC/AHA Guideline on the Assessment
//     of Cardiovascular Risk. Circulation. 2014;129(25_suppl_1):S49-S73.
//   - Whelton PK, Carey RM, et al. 2017 ACC/AHA Guideline for High Blood Pressure
//     in Adults. Hypertension. 2018;71(6):e13-e115.
//   - Lip GYH, et al. The CHA2DS2-VASc Score. Chest. 2010;137(4):996-1002.
package domain

// Sex represents the patient sex categories supported by the Pooled Cohort
// Equations. Only the two sexes with published coefficient tables are valid.
type Sex string

const (
	MALE   Sex = "male"
	FEMALE Sex = "female"
)

// Race represents the race categories with published Pooled Cohort Equations
// coefficients.
type Race string

const (
	WHITE Race = "white"
	BLACK Race = "black"
)

// RiskGroup identifies one of the four (sex,race) demographic strata of the
// Pooled Cohort Equations. Each group carries its own published term list and
// coefficient table; the groups form a closed set and must never be unified.
type RiskGroup string

const (
	WHITE_FEMALE RiskGroup = "female/white"
	BLACK_FEMALE RiskGroup = "female/black"
	WHITE_MALE   RiskGroup = "male/white"
	BLACK_MALE   RiskGroup = "male/black"
)

// BPCategory represents the 2017 ACC/AHA blood pressure classification.
type BPCategory string

const (
	BP_NORMAL   BPCategory = "Normal"
	BP_ELEVATED BPCategory = "Elevated"
	BP_STAGE_1  BPCategory = "Stage 1 Hypertension"
	BP_STAGE_2  BPCategory = "Stage 2 Hypertension"
)

// RiskLevel represents the overall risk derived from ECG findings.
type RiskLevel string

const (
	LOW_RISK      RiskLevel = "Low"
	MODERATE_RISK RiskLevel = "Moderate"
	HIGH_RISK     RiskLevel = "High"
)

// ConfidenceLevel represents the confidence attached to a rhythm
// interpretation.
type ConfidenceLevel string

const (
	HIGH ConfidenceLevel = "High"
	LOW  ConfidenceLevel = "Low"
)

// RhythmLabel represents the outcome of the rhythm decision table.
type RhythmLabel string

const (
	NORMAL_SINUS_RHYTHM   RhythmLabel = "Normal sinus rhythm"
	SINUS_BRADYCARDIA     RhythmLabel = "Sinus bradycardia"
	SINUS_TACHYCARDIA     RhythmLabel = "Sinus tachycardia"
	ATRIAL_FIBRILLATION   RhythmLabel = "Atrial fibrillation"
	TACHYCARDIA_UNCERTAIN RhythmLabel = "Tachycardia, uncertain rhythm"
	POSSIBLE_AFIB         RhythmLabel = "Possible AFib or arrhythmia"
	UNDETERMINED          RhythmLabel = "Undetermined"

	// INVALID_INPUT is the sentinel label reported by the detailed entry
	// points when validation fails. It is part of the caller contract and is
	// never produced by the raw classifier.
	INVALID_INPUT RhythmLabel = "Invalid input"
)

// Calculator identifies one of the scoring engines for audit and routing.
type Calculator string

const (
	CALC_ASCVD  Calculator = "ascvd"
	CALC_BP     Calculator = "bp"
	CALC_STROKE Calculator = "stroke_risk"
	CALC_ECG    Calculator = "ecg"
)

// IsValid reports whether the sex is one of the supported categories.
func (s Sex) IsValid() bool {
	switch s {
	case MALE, FEMALE:
		return true
	default:
		return false
	}
}

// IsValid reports whether the race has a published coefficient table.
func (r Race) IsValid() bool {
	switch r {
	case WHITE, BLACK:
		return true
	default:
		return false
	}
}

// IsValid reports whether the risk group is one of the four published strata.
func (g RiskGroup) IsValid() bool {
	switch g {
	case WHITE_FEMALE, BLACK_FEMALE, WHITE_MALE, BLACK_MALE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk group.
func (g RiskGroup) String() string {
	return string(g)
}

// GroupFor resolves the coefficient group for a normalized (sex,race) pair.
// This is the single dispatch point for the four published formulas.
func GroupFor(sex Sex, race Race) RiskGroup {
	if sex == FEMALE {
		if race == BLACK {
			return BLACK_FEMALE
		}
		return WHITE_FEMALE
	}
	if race == BLACK {
		return BLACK_MALE
	}
	return WHITE_MALE
}

// IsValid reports whether the category is a recognized ACC/AHA category.
func (c BPCategory) IsValid() bool {
	switch c {
	case BP_NORMAL, BP_ELEVATED, BP_STAGE_1, BP_STAGE_2:
		return true
	default:
		return false
	}
}

// String returns the category label used in reports.
func (c BPCategory) String() string {
	return string(c)
}

// IsValid reports whether the risk level is recognized.
func (rl RiskLevel) IsValid() bool {
	switch rl {
	case LOW_RISK, MODERATE_RISK, HIGH_RISK:
		return true
	default:
		return false
	}
}

// Severity returns an ordinal for max-severity aggregation over findings.
func (rl RiskLevel) Severity() int {
	switch rl {
	case HIGH_RISK:
		return 2
	case MODERATE_RISK:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the risk level.
func (rl RiskLevel) String() string {
	return string(rl)
}

// IsValid reports whether the confidence level is recognized.
func (cl ConfidenceLevel) IsValid() bool {
	switch cl {
	case HIGH, LOW:
		return true
	default:
		return false
	}
}

// String returns the string representation of the confidence level.
func (cl ConfidenceLevel) String() string {
	return string(cl)
}

// String returns the human-readable rhythm label.
func (l RhythmLabel) String() string {
	return string(l)
}

// IsValid reports whether the calculator name is recognized.
func (c Calculator) IsValid() bool {
	switch c {
	case CALC_ASCVD, CALC_BP, CALC_STROKE, CALC_ECG:
		return true
	default:
		return false
	}
}

// String returns the calculator name used in audit records and routes.
func (c Calculator) String() string {
	return string(c)
}
