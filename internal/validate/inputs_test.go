package validate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cardio-risk-server/internal/domain"
)

func validASCVDInput() map[string]interface{} {
	return map[string]interface{}{
		"age":               55,
		"sex":               "female",
		"race":              "white",
		"total_cholesterol": 200,
		"hdl":               50,
		"sbp":               120,
		"smoker":            false,
		"diabetes":          false,
		"on_htn_meds":       false,
	}
}

func TestASCVDInputValid(t *testing.T) {
	if err := ASCVDInput(validASCVDInput()); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	// Case and whitespace are normalized before set membership.
	data := validASCVDInput()
	data["sex"] = "  Female "
	data["race"] = "WHITE"
	if err := ASCVDInput(data); err != nil {
		t.Errorf("normalized enum values rejected: %v", err)
	}

	// Integer flags are as good as booleans.
	data = validASCVDInput()
	data["smoker"] = 1
	data["diabetes"] = 0
	if err := ASCVDInput(data); err != nil {
		t.Errorf("0/1 flags rejected: %v", err)
	}
}

func TestASCVDInputMissingFields(t *testing.T) {
	data := validASCVDInput()
	delete(data, "hdl")
	delete(data, "sbp")

	err := ASCVDInput(data)
	if err == nil {
		t.Fatal("expected error for missing fields")
	}

	// All missing fields are reported at once, in declaration order.
	want := "Missing required fields in ASCVD: [hdl sbp]"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestASCVDInputNilFieldIsMissing(t *testing.T) {
	data := validASCVDInput()
	data["age"] = nil

	err := ASCVDInput(data)
	if err == nil || !strings.Contains(err.Error(), "Missing required fields in ASCVD: [age]") {
		t.Errorf("nil field not reported as missing: %v", err)
	}
}

func TestASCVDInputViolations(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "Age below range",
			field:   "age",
			value:   20,
			wantMsg: "age in ASCVD out of range: 20 (expected between 40 and 79)",
		},
		{
			name:    "Age above range",
			field:   "age",
			value:   85,
			wantMsg: "age in ASCVD out of range: 85 (expected between 40 and 79)",
		},
		{
			name:    "Age is boolean",
			field:   "age",
			value:   true,
			wantMsg: "age must be a number (int or float), but bool is not allowed",
		},
		{
			name:    "Unsupported race",
			field:   "race",
			value:   "asian",
			wantMsg: "Invalid value for 'race' in ASCVD: 'asian'. Must be one of [black white]",
		},
		{
			name:    "Unsupported sex",
			field:   "sex",
			value:   "unknown",
			wantMsg: "Invalid value for 'sex' in ASCVD: 'unknown'. Must be one of [female male]",
		},
		{
			name:    "Sex not a string",
			field:   "sex",
			value:   1,
			wantMsg: "sex must be of type string for ASCVD",
		},
		{
			name:    "HDL below range",
			field:   "hdl",
			value:   5,
			wantMsg: "hdl in ASCVD out of range: 5 (expected between 10 and 150)",
		},
		{
			name:    "Cholesterol above range",
			field:   "total_cholesterol",
			value:   450,
			wantMsg: "total_cholesterol in ASCVD out of range: 450 (expected between 100 and 400)",
		},
		{
			name:    "SBP below range",
			field:   "sbp",
			value:   60,
			wantMsg: "sbp in ASCVD out of range: 60 (expected between 70 and 250)",
		},
		{
			name:    "Smoker flag of 2",
			field:   "smoker",
			value:   2,
			wantMsg: "smoker must be 0 or 1",
		},
		{
			name:    "String flag",
			field:   "on_htn_meds",
			value:   "1",
			wantMsg: "on_htn_meds must be 0 or 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validASCVDInput()
			data[tt.field] = tt.value

			err := ASCVDInput(data)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatal("expected *domain.ValidationError")
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestASCVDInputDoesNotMutate(t *testing.T) {
	data := validASCVDInput()
	snapshot := map[string]interface{}{}
	for k, v := range data {
		snapshot[k] = v
	}

	_ = ASCVDInput(data)

	if !reflect.DeepEqual(data, snapshot) {
		t.Error("validator mutated its input")
	}
}

func TestBloodPressure(t *testing.T) {
	tests := []struct {
		name    string
		sbp     interface{}
		dbp     interface{}
		wantMsg string // empty means valid
	}{
		{"Valid ints", 120, 80, ""},
		{"Valid floats", 125.7, 79.9, ""},
		{"SBP string", "120", 80, "sbp must be a number (int or float) for BP"},
		{"DBP string", 120, "80", "dbp must be a number (int or float) for BP"},
		{"SBP nil", nil, 80, "sbp must be a number (int or float) for BP"},
		{"DBP bool", 120, true, "dbp must be a number (int or float), but bool is not allowed"},
		{"SBP list", []int{120}, 80, "sbp must be a number (int or float) for BP"},
		{"SBP too low", 40, 30, "sbp must be between 50 and 250, but got 40"},
		{"SBP too high", 260, 80, "sbp must be between 50 and 250, but got 260"},
		{"DBP too high", 200, 160, "dbp must be between 40 and 150, but got 160"},
		{"DBP equals SBP", 120, 120, "sbp (120) must be greater than dbp (120)"},
		{"DBP exceeds SBP", 110, 115, "sbp (110) must be greater than dbp (115)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BloodPressure(tt.sbp, tt.dbp)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("valid reading rejected: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func validStrokeInput() map[string]interface{} {
	return map[string]interface{}{
		"chf":          0,
		"hypertension": 0,
		"age_ge_75":    0,
		"diabetes":     0,
		"stroke":       0,
		"vascular":     0,
		"age_65_74":    0,
		"female":       0,
	}
}

func TestStrokeRiskInput(t *testing.T) {
	if err := StrokeRiskInput(validStrokeInput()); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	// Mixed bool/int forms are accepted.
	data := validStrokeInput()
	data["chf"] = true
	data["female"] = 1
	if err := StrokeRiskInput(data); err != nil {
		t.Errorf("mixed flag forms rejected: %v", err)
	}
}

func TestStrokeRiskInputRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"two", 2},
		{"string", "1"},
		{"float", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validStrokeInput()
			data["chf"] = tt.value

			err := StrokeRiskInput(data)
			if err == nil {
				t.Fatal("expected validation error")
			}
			want := "Field 'chf' must be 0/1 or True/False in CHA2DS2VASc"
			if err.Error() != want {
				t.Errorf("error = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestStrokeRiskInputAgeConflict(t *testing.T) {
	data := validStrokeInput()
	data["age_ge_75"] = 1
	data["age_65_74"] = 1

	err := StrokeRiskInput(data)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Error() != "age_ge_75 and age_65_74 cannot both be 1" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestStrokeRiskInputMissingFields(t *testing.T) {
	err := StrokeRiskInput(map[string]interface{}{"chf": 1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Missing required fields in CHA2DS2VASc") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRhythmInput(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantMsg string
	}{
		{"Valid full", map[string]interface{}{"rate": 75, "regular": true, "p_waves_present": true}, ""},
		{"Valid rate only", map[string]interface{}{"rate": 60}, ""},
		{"Valid 0/1 flags", map[string]interface{}{"rate": 75, "regular": 1, "p_waves_present": 0}, ""},
		{"Missing rate", map[string]interface{}{}, "Missing required field: 'rate'"},
		{"Nil rate", map[string]interface{}{"rate": nil}, "Missing required field: 'rate'"},
		{"Float rate", map[string]interface{}{"rate": 75.5}, "rate must be an integer, got float64: 75.5"},
		{"Negative rate", map[string]interface{}{"rate": -50}, "rate must be a positive integer, got -50"},
		{"Rate below range", map[string]interface{}{"rate": 10}, "rate in ECG Rhythm out of range: 10 (expected between 20 and 250)"},
		{"Rate above range", map[string]interface{}{"rate": 300}, "rate in ECG Rhythm out of range: 300 (expected between 20 and 250)"},
		{"Bad regular", map[string]interface{}{"rate": 75, "regular": 2}, "regular must be True, False, 0, or 1, got 2"},
		{"Bad p waves", map[string]interface{}{"rate": 75, "p_waves_present": "yes"}, "p_waves_present must be True, False, 0, or 1, got yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RhythmInput(tt.data)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("valid input rejected: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestTwelveLeadInput(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantMsg string
	}{
		{"Empty input is valid", map[string]interface{}{}, ""},
		{"Valid intervals", map[string]interface{}{"qt_interval_ms": 400, "rr_interval_ms": 810, "pr_interval_ms": 160}, ""},
		{"Valid flags with leads", map[string]interface{}{"st_elevation": true, "st_elevation_leads": "II, III, aVF"}, ""},
		{"Leads without flag tolerated", map[string]interface{}{"st_elevation_leads": "V1-V3"}, ""},
		{
			"QT out of range",
			map[string]interface{}{"qt_interval_ms": 250},
			"qt_interval_ms in 12-lead ECG out of range: 250 (expected between 300 and 700)",
		},
		{
			"RR out of range",
			map[string]interface{}{"rr_interval_ms": 1500},
			"rr_interval_ms in 12-lead ECG out of range: 1500 (expected between 300 and 1200)",
		},
		{
			"PR not numeric",
			map[string]interface{}{"pr_interval_ms": "160"},
			"pr_interval_ms must be a number (int or float) for 12-lead ECG",
		},
		{
			"Flag not boolean",
			map[string]interface{}{"st_elevation": 1},
			"st_elevation must be True or False",
		},
		{
			"Leads not a string",
			map[string]interface{}{"q_wave_leads": 3},
			"q_wave_leads must be a string",
		},
		{
			"ST elevation without leads",
			map[string]interface{}{"st_elevation": true},
			"st_elevation_leads is required when st_elevation is True",
		},
		{
			"ST elevation with empty leads",
			map[string]interface{}{"st_elevation": true, "st_elevation_leads": ""},
			"st_elevation_leads is required when st_elevation is True",
		},
		{
			"Q waves without leads",
			map[string]interface{}{"pathological_q_waves": true},
			"q_wave_leads is required when pathological_q_waves is True",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TwelveLeadInput(tt.data)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("valid input rejected: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
