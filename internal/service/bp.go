package service

import (
	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/validate"
)

// ClassifyBloodPressure classifies a reading using the 2017 ACC/AHA
// guideline.
//
// Reference:
//	Whelton PK, Carey RM, et al. 2017 ACC/AHA Guideline for the Prevention,
//	Detection, Evaluation, and Management of High Blood Pressure in Adults.
//	Hypertension. 2018;71(6):e13-e115. doi:10.1161/HYP.0000000000000065
//
// Rules are evaluated most severe first: the category bands overlap at the
// boundaries only because a single elevated component (e.g. sbp=135 with
// dbp=60) must land in the more severe category.
func ClassifyBloodPressure(sbp, dbp interface{}) (domain.BPCategory, error) {
	if err := validate.BloodPressure(sbp, dbp); err != nil {
		return "", err
	}

	s, _ := validate.Number(sbp)
	d, _ := validate.Number(dbp)

	switch {
	case s >= 140 || d >= 90:
		return domain.BP_STAGE_2, nil
	case s >= 130 || d >= 80:
		return domain.BP_STAGE_1, nil
	case s >= 120:
		return domain.BP_ELEVATED, nil
	default:
		return domain.BP_NORMAL, nil
	}
}
