package service

import (
	"fmt"
	"math"

	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/validate"
)

// Rule-based ECG interpretation for research and education.
//
// Rhythm logic aligns with ACC/AHA/HRS guidelines; 12-lead criteria follow
// the AHA/ACCF/HRS recommendations for the standardization of
// electrocardiography. Inputs are pre-abstracted features, not signals; this
// is decision support, never diagnosis.

// ClassifyRhythm applies the rhythm decision table to rate, regularity, and
// P-wave presence. It assumes a validated rate; callers wanting validation
// use InterpretRhythm.
func ClassifyRhythm(rate int, regular, pWavesPresent bool) domain.RhythmLabel {
	if rate < 60 {
		return domain.SINUS_BRADYCARDIA
	}
	if rate > 100 {
		switch {
		case regular && pWavesPresent:
			return domain.SINUS_TACHYCARDIA
		case !regular && !pWavesPresent:
			return domain.ATRIAL_FIBRILLATION
		default:
			return domain.TACHYCARDIA_UNCERTAIN
		}
	}
	switch {
	case regular && pWavesPresent:
		return domain.NORMAL_SINUS_RHYTHM
	case !regular:
		return domain.POSSIBLE_AFIB
	default:
		return domain.UNDETERMINED
	}
}

// rhythmNotes carries the fixed advisory note per label. Static lookup data,
// never mutated.
var rhythmNotes = map[domain.RhythmLabel]string{
	domain.SINUS_BRADYCARDIA:     "Assess for athletic training, medications, or conduction disease.",
	domain.SINUS_TACHYCARDIA:     "Evaluate for fever, pain, anemia, or hyperthyroidism.",
	domain.ATRIAL_FIBRILLATION:   "Confirm with 12-lead ECG; consider anticoagulation.",
	domain.TACHYCARDIA_UNCERTAIN: "Further analysis needed (e.g., V1 lead).",
	domain.POSSIBLE_AFIB:         "Irregular rhythm without clear P-waves.",
	domain.UNDETERMINED:          "Insufficient data for interpretation.",
}

// highConfidenceLabels marks the labels the decision table identifies
// unambiguously.
var highConfidenceLabels = map[domain.RhythmLabel]bool{
	domain.SINUS_BRADYCARDIA:   true,
	domain.NORMAL_SINUS_RHYTHM: true,
	domain.SINUS_TACHYCARDIA:   true,
	domain.ATRIAL_FIBRILLATION: true,
}

// ecgRecommendations is the fixed advisory list attached to every 12-lead
// report, findings or not.
var ecgRecommendations = []string{
	"Correlate with clinical picture",
	"Consider troponin if ST changes",
	"Review medication list if QTc > 500ms",
	"Assess for symptoms if high-risk findings present",
}

// InterpretRhythm validates a rhythm input mapping and returns the detailed
// interpretation. Validation failures are reported inside the result with
// the "Invalid input" sentinel label rather than as an error; this is a
// deliberate contract for report-building callers and differs from the
// propagating classifiers.
func InterpretRhythm(data map[string]interface{}) *domain.RhythmInterpretation {
	if err := validate.RhythmInput(data); err != nil {
		return &domain.RhythmInterpretation{
			Rhythm:     domain.INVALID_INPUT,
			Confidence: domain.LOW,
			Notes:      err.Error(),
		}
	}

	rate, _ := validate.Integer(data["rate"])
	regular := flagDefault(data, "regular")
	pWaves := flagDefault(data, "p_waves_present")

	rhythm := ClassifyRhythm(rate, regular, pWaves)

	confidence := domain.LOW
	if highConfidenceLabels[rhythm] {
		confidence = domain.HIGH
	}

	notes, ok := rhythmNotes[rhythm]
	if !ok {
		notes = "No specific notes."
	}

	return &domain.RhythmInterpretation{
		Rhythm:     rhythm,
		Confidence: confidence,
		Notes:      notes,
	}
}

// finding pairs a human-readable finding with the severity assigned at
// creation time. Severity is explicit rather than re-derived from the
// finding text, so wording changes cannot silently shift the overall risk.
type finding struct {
	text     string
	severity domain.RiskLevel
}

// InterpretTwelveLead validates a 12-lead input mapping and extracts
// findings. Like InterpretRhythm, validation failures are reported inside
// the result rather than propagated.
func InterpretTwelveLead(data map[string]interface{}) *domain.TwelveLeadReport {
	if err := validate.TwelveLeadInput(data); err != nil {
		return &domain.TwelveLeadReport{
			Findings:        []string{},
			RiskLevel:       domain.LOW_RISK,
			Recommendations: []string{fmt.Sprintf("Invalid input: %s", err.Error())},
		}
	}

	findings := collectFindings(data)

	texts := make([]string, 0, len(findings))
	overall := domain.LOW_RISK
	for _, f := range findings {
		texts = append(texts, f.text)
		if f.severity.Severity() > overall.Severity() {
			overall = f.severity
		}
	}

	return &domain.TwelveLeadReport{
		Findings:        texts,
		RiskLevel:       overall,
		Recommendations: append([]string(nil), ecgRecommendations...),
	}
}

// collectFindings evaluates each 12-lead criterion independently, in a fixed
// order, against validated input.
func collectFindings(data map[string]interface{}) []finding {
	var findings []finding

	// 1. ST elevation (STEMI criteria)
	if optBool(data, "st_elevation") {
		if leads := optString(data, "st_elevation_leads"); leads != "" {
			findings = append(findings, finding{
				text:     fmt.Sprintf("ST elevation in %s → Possible anterior/inferior STEMI", leads),
				severity: domain.HIGH_RISK,
			})
		}
	}

	// 2. QTc prolongation, Bazett's formula: qtc = qt / sqrt(rr seconds)
	qt, qtOK := optNumber(data, "qt_interval_ms")
	rr, rrOK := optNumber(data, "rr_interval_ms")
	if qtOK && rrOK && qt > 0 && rr > 0 {
		// Half-integer values round to even, keeping boundary readings like
		// 450.5 below the monitoring threshold.
		qtc := int(math.RoundToEven(qt / math.Sqrt(rr/1000.0)))
		if qtc > 500 {
			findings = append(findings, finding{
				text:     fmt.Sprintf("QTc = %d ms → High risk of Torsades de Pointes", qtc),
				severity: domain.HIGH_RISK,
			})
		} else if qtc > 450 {
			findings = append(findings, finding{
				text:     fmt.Sprintf("QTc = %d ms → Monitor for drug-induced prolongation", qtc),
				severity: domain.MODERATE_RISK,
			})
		}
	}

	// 3. Left ventricular hypertrophy
	if optBool(data, "lvh_criteria_met") {
		findings = append(findings, finding{
			text:     "LVH by voltage criteria (e.g., Sokolow-Lyon) → ASCVD risk enhancer",
			severity: domain.MODERATE_RISK,
		})
	}

	// 4. Pathological Q waves (prior MI)
	if optBool(data, "pathological_q_waves") {
		if leads := optString(data, "q_wave_leads"); leads != "" {
			findings = append(findings, finding{
				text:     fmt.Sprintf("Pathological Q waves in %s → Possible prior MI", leads),
				severity: domain.HIGH_RISK,
			})
		}
	}

	// 5. PR interval (first-degree AV block)
	if pr, ok := optNumber(data, "pr_interval_ms"); ok && pr > 200 {
		findings = append(findings, finding{
			text:     fmt.Sprintf("PR = %s ms → First-degree AV block", formatMillis(pr)),
			severity: domain.MODERATE_RISK,
		})
	}

	// 6. T-wave inversion (ischemia/strain)
	if optBool(data, "t_wave_inversion") {
		findings = append(findings, finding{
			text:     "T-wave inversion → Possible ischemia or strain pattern",
			severity: domain.LOW_RISK,
		})
	}

	return findings
}

// InterpretECG merges the rhythm and 12-lead interpretations of one combined
// input into a unified report. Both sub-engines keep their sentinel-style
// failure reporting, so the merge itself always succeeds.
func InterpretECG(data map[string]interface{}) *domain.ECGReport {
	rhythmData := map[string]interface{}{
		"rate": data["rate"],
	}
	if v, ok := data["regular"]; ok {
		rhythmData["regular"] = v
	}
	if v, ok := data["p_waves_present"]; ok {
		rhythmData["p_waves_present"] = v
	}

	rhythm := InterpretRhythm(rhythmData)
	twelveLead := InterpretTwelveLead(data)

	return &domain.ECGReport{
		Rhythm:             *rhythm,
		TwelveLeadFindings: twelveLead.Findings,
		OverallRisk:        twelveLead.RiskLevel,
		Recommendations:    twelveLead.Recommendations,
	}
}

// flagDefault reads an optional validated binary field, defaulting to false
// when absent.
func flagDefault(data map[string]interface{}, field string) bool {
	v, ok := data[field]
	if !ok || v == nil {
		return false
	}
	n, ok := validate.Flag(v)
	return ok && n == 1
}

// optBool reads an optional boolean field.
func optBool(data map[string]interface{}, field string) bool {
	b, _ := data[field].(bool)
	return b
}

// optString reads an optional string field.
func optString(data map[string]interface{}, field string) string {
	s, _ := data[field].(string)
	return s
}

// optNumber reads an optional numeric field.
func optNumber(data map[string]interface{}, field string) (float64, bool) {
	v, ok := data[field]
	if !ok || v == nil {
		return 0, false
	}
	return validate.Number(v)
}

// formatMillis renders an interval without a trailing fraction when it is
// integral, matching how callers supplied it.
func formatMillis(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int(f))
	}
	return fmt.Sprintf("%g", f)
}
