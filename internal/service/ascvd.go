package service

import (
	"math"
	"strings"

	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/validate"
)

// ASCVD risk estimation using the 2013 ACC/AHA Pooled Cohort Equations.
//
// Reference:
//	Goff DC Jr, Lloyd-Jones DM, et al. 2013 ACC/AHA Guideline on the
//	Assessment of Cardiovascular Risk. Circulation. 2014;129(25_suppl_1):
//	S49-S73. doi:10.1161/01.cir.0000437741.48606.98
//
// The model is a log-linear Cox survival formula stratified into four
// (sex,race) groups. Each group has its own published subset of interaction
// terms; the asymmetry is clinically real and must not be unified.

// termVector maps term names to their computed values for one calculation.
type termVector map[string]float64

// pceParams holds the published constants for one demographic group.
type pceParams struct {
	S0     float64            // baseline 10-year survival
	MeanLP float64            // mean linear predictor in the derivation cohort
	Betas  map[string]float64 // term name -> coefficient
}

// expDeviationLimit bounds the linear-predictor deviation passed to math.Exp.
// Beyond it the exponential would overflow float64, so risk is clamped to the
// corresponding extreme instead.
const expDeviationLimit = 709.0

// pceConstants holds the published coefficient tables, keyed by group.
// Fixed at process start and read-only thereafter; safe for unsynchronized
// concurrent reads.
var pceConstants = map[domain.RiskGroup]pceParams{
	domain.WHITE_FEMALE: {
		S0:     0.9665,
		MeanLP: -29.18,
		Betas: map[string]float64{
			"ln_age":         -29.799,
			"ln_age_sq":      4.884,
			"ln_tc":          13.540,
			"ln_age*ln_tc":   -3.114,
			"ln_hdl":         -13.578,
			"ln_age*ln_hdl":  3.149,
			"ln_sbp_trt":     2.019,
			"ln_sbp_untrt":   1.957,
			"smoker":         7.574,
			"ln_age*smoker":  -1.665,
			"diabetes":       0.661,
		},
	},
	domain.BLACK_FEMALE: {
		S0:     0.9533,
		MeanLP: 86.61,
		Betas: map[string]float64{
			"ln_age":              17.114,
			"ln_tc":               0.940,
			"ln_hdl":              -18.920,
			"ln_age*ln_hdl":       4.475,
			"ln_sbp_trt":          29.291,
			"ln_age*ln_sbp_trt":   -6.432,
			"ln_sbp_untrt":        27.820,
			"ln_age*ln_sbp_untrt": -6.087,
			"smoker":              0.691,
			"diabetes":            0.874,
		},
	},
	domain.WHITE_MALE: {
		S0:     0.9144,
		MeanLP: 61.18,
		Betas: map[string]float64{
			"ln_age":        12.344,
			"ln_tc":         11.853,
			"ln_age*ln_tc":  -2.664,
			"ln_hdl":        -7.990,
			"ln_age*ln_hdl": 1.769,
			"ln_sbp_trt":    1.797,
			"ln_sbp_untrt":  1.764,
			"smoker":        7.837,
			"ln_age*smoker": -1.795,
			"diabetes":      0.658,
		},
	},
	domain.BLACK_MALE: {
		S0:     0.8954,
		MeanLP: 19.54,
		Betas: map[string]float64{
			"ln_age":       2.469,
			"ln_tc":        0.302,
			"ln_hdl":       -0.307,
			"ln_sbp_trt":   1.916,
			"ln_sbp_untrt": 1.809,
			"smoker":       0.549,
			"diabetes":     0.645,
		},
	},
}

// termBuilders maps each group to its published term construction. The
// treated/untreated systolic-BP term is mutually exclusive: exactly one of
// ln_sbp_trt / ln_sbp_untrt appears per calculation.
var termBuilders = map[domain.RiskGroup]func(p ascvdProfile) termVector{
	domain.WHITE_FEMALE: termsWhiteFemale,
	domain.BLACK_FEMALE: termsBlackFemale,
	domain.WHITE_MALE:   termsWhiteMale,
	domain.BLACK_MALE:   termsBlackMale,
}

// ascvdProfile is the validated, normalized numeric view of one ASCVD input.
type ascvdProfile struct {
	Age      float64
	TC       float64
	HDL      float64
	SBP      float64
	Treated  bool
	Smoker   float64 // 0 or 1
	Diabetes float64 // 0 or 1
}

// commonTerms computes the base log-transformed terms shared by all groups.
func commonTerms(p ascvdProfile) termVector {
	lnAge := math.Log(p.Age)
	return termVector{
		"ln_age":    lnAge,
		"ln_age_sq": lnAge * lnAge,
		"ln_tc":     math.Log(p.TC),
		"ln_hdl":    math.Log(p.HDL),
		"ln_sbp":    math.Log(p.SBP),
		"smoker":    p.Smoker,
		"diabetes":  p.Diabetes,
	}
}

func termsWhiteFemale(p ascvdProfile) termVector {
	base := commonTerms(p)
	terms := termVector{
		"ln_age":        base["ln_age"],
		"ln_age_sq":     base["ln_age_sq"],
		"ln_tc":         base["ln_tc"],
		"ln_age*ln_tc":  base["ln_age"] * base["ln_tc"],
		"ln_hdl":        base["ln_hdl"],
		"ln_age*ln_hdl": base["ln_age"] * base["ln_hdl"],
		"smoker":        base["smoker"],
		"ln_age*smoker": base["ln_age"] * base["smoker"],
		"diabetes":      base["diabetes"],
	}
	if p.Treated {
		terms["ln_sbp_trt"] = base["ln_sbp"]
	} else {
		terms["ln_sbp_untrt"] = base["ln_sbp"]
	}
	return terms
}

func termsBlackFemale(p ascvdProfile) termVector {
	base := commonTerms(p)
	terms := termVector{
		"ln_age":        base["ln_age"],
		"ln_tc":         base["ln_tc"],
		"ln_hdl":        base["ln_hdl"],
		"ln_age*ln_hdl": base["ln_age"] * base["ln_hdl"],
		"smoker":        base["smoker"],
		"diabetes":      base["diabetes"],
	}
	if p.Treated {
		terms["ln_sbp_trt"] = base["ln_sbp"]
		terms["ln_age*ln_sbp_trt"] = base["ln_age"] * base["ln_sbp"]
	} else {
		terms["ln_sbp_untrt"] = base["ln_sbp"]
		terms["ln_age*ln_sbp_untrt"] = base["ln_age"] * base["ln_sbp"]
	}
	return terms
}

func termsWhiteMale(p ascvdProfile) termVector {
	base := commonTerms(p)
	terms := termVector{
		"ln_age":        base["ln_age"],
		"ln_tc":         base["ln_tc"],
		"ln_age*ln_tc":  base["ln_age"] * base["ln_tc"],
		"ln_hdl":        base["ln_hdl"],
		"ln_age*ln_hdl": base["ln_age"] * base["ln_hdl"],
		"smoker":        base["smoker"],
		"ln_age*smoker": base["ln_age"] * base["smoker"],
		"diabetes":      base["diabetes"],
	}
	if p.Treated {
		terms["ln_sbp_trt"] = base["ln_sbp"]
	} else {
		terms["ln_sbp_untrt"] = base["ln_sbp"]
	}
	return terms
}

// Black males use no interaction terms at all; this is the published model,
// not an omission.
func termsBlackMale(p ascvdProfile) termVector {
	base := commonTerms(p)
	terms := termVector{
		"ln_age":   base["ln_age"],
		"ln_tc":    base["ln_tc"],
		"ln_hdl":   base["ln_hdl"],
		"smoker":   base["smoker"],
		"diabetes": base["diabetes"],
	}
	if p.Treated {
		terms["ln_sbp_trt"] = base["ln_sbp"]
	} else {
		terms["ln_sbp_untrt"] = base["ln_sbp"]
	}
	return terms
}

// ComputeASCVDRisk validates the input mapping and evaluates the Pooled
// Cohort Equations. The returned probability is in [0,1], rounded via a
// stable two-decimal percentage.
//
// Validation failures return *domain.ValidationError. A mismatch between a
// group's coefficient table and its term vector returns
// *domain.InconsistencyError; that signals broken constant data, not bad
// user input.
func ComputeASCVDRisk(data map[string]interface{}) (*domain.ASCVDResult, error) {
	if err := validate.ASCVDInput(data); err != nil {
		return nil, err
	}

	profile, group := buildProfile(data)

	params := pceConstants[group]
	terms := termBuilders[group](profile)

	// The unselected treatment arm is the only part of the table allowed to
	// go unmatched. That covers the bare systolic-BP coefficient and, for
	// groups that carry them, its age interactions.
	unusedSBPTerm := "ln_sbp_trt"
	if profile.Treated {
		unusedSBPTerm = "ln_sbp_untrt"
	}

	var missing []string
	for name := range params.Betas {
		if _, ok := terms[name]; !ok && !strings.HasSuffix(name, unusedSBPTerm) {
			missing = append(missing, name)
		}
	}
	for name := range terms {
		if _, ok := params.Betas[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewInconsistencyError(group, missing)
	}

	var lp float64
	for name, value := range terms {
		lp += params.Betas[name] * value
	}

	riskPercent := riskPercentFromDeviation(params.S0, lp-params.MeanLP)

	return &domain.ASCVDResult{
		Risk:        riskPercent / 100.0,
		RiskPercent: riskPercent,
		Group:       group,
	}, nil
}

// riskPercentFromDeviation converts a linear-predictor deviation into a
// two-decimal risk percentage. Deviations beyond the exp overflow limit clamp
// to the corresponding extreme.
func riskPercentFromDeviation(s0, deviation float64) float64 {
	switch {
	case deviation > expDeviationLimit:
		return 100.0
	case deviation < -expDeviationLimit:
		return 0.0
	default:
		survival := math.Pow(s0, math.Exp(deviation))
		risk := 1.0 - survival
		return round2(math.Max(0.0, math.Min(100.0, risk*100.0)))
	}
}

// buildProfile extracts the validated fields into numeric form and resolves
// the demographic group. Race values outside the two published groups were
// already rejected by validation; mapping non-"black" to white here keeps the
// dispatch total.
func buildProfile(data map[string]interface{}) (ascvdProfile, domain.RiskGroup) {
	age, _ := validate.Number(data["age"])
	tc, _ := validate.Number(data["total_cholesterol"])
	hdl, _ := validate.Number(data["hdl"])
	sbp, _ := validate.Number(data["sbp"])
	treated, _ := validate.Flag(data["on_htn_meds"])
	smoker, _ := validate.Flag(data["smoker"])
	diabetes, _ := validate.Flag(data["diabetes"])

	sex := domain.Sex(normalizeEnum(data["sex"]))
	race := domain.WHITE
	if normalizeEnum(data["race"]) == string(domain.BLACK) {
		race = domain.BLACK
	}

	profile := ascvdProfile{
		Age:      age,
		TC:       tc,
		HDL:      hdl,
		SBP:      sbp,
		Treated:  treated == 1,
		Smoker:   float64(smoker),
		Diabetes: float64(diabetes),
	}

	return profile, domain.GroupFor(sex, race)
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// normalizeEnum lowercases and trims a validated string enum field.
func normalizeEnum(v interface{}) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}
