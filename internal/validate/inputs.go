package validate

import (
	"fmt"
	"strings"

	"github.com/cardio-risk-server/internal/domain"
)

// Validation contexts named in error messages.
const (
	ascvdContext  = "ASCVD"
	strokeContext = "CHA2DS2VASc"
	rhythmContext = "ECG Rhythm"
	leadContext   = "12-lead ECG"
)

// ASCVDRequiredFields lists the ASCVD input fields in declaration order.
// Presence is checked for all fields at once; value checks run in this order
// and fail fast.
var ASCVDRequiredFields = []string{
	"age", "sex", "race",
	"total_cholesterol", "hdl",
	"sbp",
	"smoker", "diabetes",
	"on_htn_meds",
}

// StrokeRiskFields lists the CHA2DS2-VASc binary flags in scoring order.
var StrokeRiskFields = []string{
	"chf", "hypertension", "age_ge_75",
	"diabetes", "stroke", "vascular",
	"age_65_74", "female",
}

// ASCVDInput validates a candidate Pooled Cohort Equations input mapping.
func ASCVDInput(data map[string]interface{}) error {
	if err := requireFields(data, ASCVDRequiredFields, ascvdContext); err != nil {
		return err
	}

	// Age 40-79
	age, err := checkNumber(data["age"], "age", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkRange(age, data["age"], "age", 40, 79, ascvdContext); err != nil {
		return err
	}

	// Sex
	sex, err := checkString(data["sex"], "sex", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkInSet(normalize(sex), "sex", []string{"male", "female"}, ascvdContext); err != nil {
		return err
	}

	// Race: only the two groups with published coefficients are accepted.
	race, err := checkString(data["race"], "race", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkInSet(normalize(race), "race", []string{"white", "black"}, ascvdContext); err != nil {
		return err
	}

	// Cholesterol (mg/dL)
	tc, err := checkNumber(data["total_cholesterol"], "total_cholesterol", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkRange(tc, data["total_cholesterol"], "total_cholesterol", 100, 400, ascvdContext); err != nil {
		return err
	}

	// HDL (mg/dL)
	hdl, err := checkNumber(data["hdl"], "hdl", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkRange(hdl, data["hdl"], "hdl", 10, 150, ascvdContext); err != nil {
		return err
	}

	// Systolic BP (mmHg)
	sbp, err := checkNumber(data["sbp"], "sbp", ascvdContext)
	if err != nil {
		return err
	}
	if err := checkRange(sbp, data["sbp"], "sbp", 70, 250, ascvdContext); err != nil {
		return err
	}

	// Binary flags
	for _, field := range []string{"smoker", "diabetes", "on_htn_meds"} {
		if _, ok := Flag(data[field]); !ok {
			return domain.NewValidationError(field,
				fmt.Sprintf("%s must be 0 or 1", field), data[field])
		}
	}

	return nil
}

// BloodPressure validates a systolic/diastolic reading pair for
// classification. The pair is positional, so type checks apply to each value
// individually before ranges and the cross-field rule.
func BloodPressure(sbp, dbp interface{}) error {
	s, err := checkNumber(sbp, "sbp", "BP")
	if err != nil {
		return err
	}
	d, err := checkNumber(dbp, "dbp", "BP")
	if err != nil {
		return err
	}

	if s < 50 || s > 250 {
		return domain.NewValidationError("sbp",
			fmt.Sprintf("sbp must be between 50 and 250, but got %v", sbp), sbp)
	}
	if d < 40 || d > 150 {
		return domain.NewValidationError("dbp",
			fmt.Sprintf("dbp must be between 40 and 150, but got %v", dbp), dbp)
	}

	// Diastolic can never reach systolic.
	if s <= d {
		return domain.NewValidationError("sbp",
			fmt.Sprintf("sbp (%v) must be greater than dbp (%v)", sbp, dbp), sbp)
	}

	return nil
}

// StrokeRiskInput validates the CHA2DS2-VASc binary risk factors, including
// the mutual exclusion of the two age bands.
func StrokeRiskInput(data map[string]interface{}) error {
	if err := requireFields(data, StrokeRiskFields, strokeContext); err != nil {
		return err
	}

	for _, field := range StrokeRiskFields {
		if _, ok := Flag(data[field]); !ok {
			return domain.NewValidationError(field,
				fmt.Sprintf("Field '%s' must be 0/1 or True/False in %s", field, strokeContext), data[field])
		}
	}

	ge75, _ := Flag(data["age_ge_75"])
	a6574, _ := Flag(data["age_65_74"])
	if ge75 == 1 && a6574 == 1 {
		return domain.NewValidationError("age_ge_75",
			"age_ge_75 and age_65_74 cannot both be 1", 1)
	}

	return nil
}

// RhythmInput validates an ECG rhythm input mapping. Only rate is required;
// regular and p_waves_present are checked when present.
func RhythmInput(data map[string]interface{}) error {
	rate, ok := data["rate"]
	if !ok || rate == nil {
		return domain.NewValidationError("rate", "Missing required field: 'rate'", nil)
	}

	n, isInt := Integer(rate)
	if !isInt {
		return domain.NewValidationError("rate",
			fmt.Sprintf("rate must be an integer, got %T: %v", rate, rate), rate)
	}
	if n <= 0 {
		return domain.NewValidationError("rate",
			fmt.Sprintf("rate must be a positive integer, got %v", n), rate)
	}
	if n < 20 || n > 250 {
		return domain.NewValidationError("rate",
			fmt.Sprintf("rate in %s out of range: %v (expected between 20 and 250)", rhythmContext, n), rate)
	}

	for _, field := range []string{"regular", "p_waves_present"} {
		if v, present := data[field]; present && v != nil {
			if _, ok := Flag(v); !ok {
				return domain.NewValidationError(field,
					fmt.Sprintf("%s must be True, False, 0, or 1, got %v", field, v), v)
			}
		}
	}

	return nil
}

// twelveLeadIntervals lists the optional interval fields with their bounds,
// in check order.
var twelveLeadIntervals = []struct {
	field    string
	min, max float64
}{
	{"qt_interval_ms", 300, 700},
	{"rr_interval_ms", 300, 1200},
	{"pr_interval_ms", 120, 300},
}

// TwelveLeadInput validates a 12-lead ECG input mapping. Every field is
// optional, but a lead-location string is required exactly when its
// corresponding flag is set; lead strings without the flag are tolerated.
func TwelveLeadInput(data map[string]interface{}) error {
	for _, iv := range twelveLeadIntervals {
		if v, present := data[iv.field]; present && v != nil {
			n, err := checkNumber(v, iv.field, leadContext)
			if err != nil {
				return err
			}
			if err := checkRange(n, v, iv.field, iv.min, iv.max, leadContext); err != nil {
				return err
			}
		}
	}

	for _, field := range []string{"st_elevation", "lvh_criteria_met", "pathological_q_waves", "t_wave_inversion"} {
		if v, present := data[field]; present && v != nil {
			if _, ok := v.(bool); !ok {
				return domain.NewValidationError(field,
					fmt.Sprintf("%s must be True or False", field), v)
			}
		}
	}

	for _, field := range []string{"st_elevation_leads", "q_wave_leads"} {
		if v, present := data[field]; present && v != nil {
			if _, ok := v.(string); !ok {
				return domain.NewValidationError(field,
					fmt.Sprintf("%s must be a string", field), v)
			}
		}
	}

	if boolField(data, "st_elevation") && stringField(data, "st_elevation_leads") == "" {
		return domain.NewValidationError("st_elevation_leads",
			"st_elevation_leads is required when st_elevation is True", nil)
	}
	if boolField(data, "pathological_q_waves") && stringField(data, "q_wave_leads") == "" {
		return domain.NewValidationError("q_wave_leads",
			"q_wave_leads is required when pathological_q_waves is True", nil)
	}

	return nil
}

// normalize trims and lowercases a string enum value before comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// boolField reads an optional boolean field, defaulting to false.
func boolField(data map[string]interface{}, field string) bool {
	b, _ := data[field].(bool)
	return b
}

// stringField reads an optional string field, defaulting to empty.
func stringField(data map[string]interface{}, field string) string {
	s, _ := data[field].(string)
	return s
}
