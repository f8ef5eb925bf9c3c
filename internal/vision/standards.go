// Package vision scores visual acuity and field-of-view measurements against
// the driving vision standard. Results are always derived from the raw test
// data; nothing here is stored.
package vision

import "fmt"

const (
	// GoodEyeMax is the worst acuity denominator an eye may have when both eyes count.
	GoodEyeMax = 12
	// SingleEyeMax is the worst denominator for the better eye when the other is impaired.
	SingleEyeMax = 9
	// CorrectiveLensThreshold: a denominator above this requires corrective lenses.
	CorrectiveLensThreshold = 12

	// FullFieldDegrees always satisfies the horizontal field requirement.
	FullFieldDegrees = 120
	// ReducedFieldDegrees is accepted only when one eye's own field is impaired.
	ReducedFieldDegrees = 115
	// ImpairedEyeFieldDegrees marks an eye field as impaired.
	ImpairedEyeFieldDegrees = 70
)

// Restriction and reason texts.
const (
	RestrictionCorrectiveLenses = "Must wear corrective lenses while driving"
	ReasonAcuity                = "Visual acuity below standard"
)

// Eye names one eye.
type Eye string

const (
	EyeLeft  Eye = "left"
	EyeRight Eye = "right"
)

// TestData is the raw vision test input.
type TestData struct {
	LeftAcuity      string  `json:"left_acuity"`
	RightAcuity     string  `json:"right_acuity"`
	BinocularAcuity string  `json:"binocular_acuity,omitempty"`
	HorizontalField float64 `json:"horizontal_field"`
	LeftField       float64 `json:"left_field"`
	RightField      float64 `json:"right_field"`
	// CorrectiveLensesInUse is reported by the examiner; whether lenses are
	// required is derived, never input.
	CorrectiveLensesInUse bool `json:"corrective_lenses_in_use"`
}

// Result is the derived vision outcome.
type Result struct {
	Passes                   bool     `json:"vision_meets_standards"`
	Restrictions             []string `json:"vision_restrictions"`
	CorrectiveLensesRequired bool     `json:"corrective_lenses_required"`
	AcuityPasses             bool     `json:"acuity_passes"`
	FieldPasses              bool     `json:"field_passes"`
	// ImpairedEye is set when the monocular allowance was used.
	ImpairedEye Eye      `json:"impaired_eye,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
}

// ImpairedEyeRestriction is the restriction attached when a pass relies on
// the better eye alone.
func ImpairedEyeRestriction(eye Eye) string {
	return fmt.Sprintf("Impaired %s eye - restricted to daytime driving", eye)
}

// Evaluate scores the test data. Field-of-view failure overrides an otherwise
// passing acuity result.
func Evaluate(d TestData) Result {
	left := ParseAcuity(d.LeftAcuity)
	right := ParseAcuity(d.RightAcuity)

	r := Result{
		Restrictions: []string{},
	}

	r.AcuityPasses, r.ImpairedEye = evaluateAcuity(left, right)
	if r.ImpairedEye != "" {
		r.Restrictions = append(r.Restrictions, ImpairedEyeRestriction(r.ImpairedEye))
	}
	if !r.AcuityPasses {
		r.Reasons = append(r.Reasons, ReasonAcuity)
	}

	r.FieldPasses = evaluateField(d.HorizontalField, d.LeftField, d.RightField)
	if !r.FieldPasses {
		r.Reasons = append(r.Reasons, fmt.Sprintf("Horizontal visual field below standard (%g°)", d.HorizontalField))
	}

	r.CorrectiveLensesRequired = CorrectiveLensesRequired(left, right)
	if r.CorrectiveLensesRequired || d.CorrectiveLensesInUse {
		r.Restrictions = append(r.Restrictions, RestrictionCorrectiveLenses)
	}

	r.Passes = r.AcuityPasses && r.FieldPasses
	return r
}

// CorrectiveLensesRequired is true iff either parsed denominator exceeds the threshold.
func CorrectiveLensesRequired(left, right Acuity) bool {
	return left.Denominator > CorrectiveLensThreshold || right.Denominator > CorrectiveLensThreshold
}

// evaluateAcuity applies the two-eye standard, then the monocular allowance:
// one eye at 6/9 or better passes regardless of the other eye, and the other
// eye is reported as impaired.
func evaluateAcuity(left, right Acuity) (bool, Eye) {
	if left.Good() && right.Good() {
		return true, ""
	}
	switch {
	case left.MeetsSingleEye() && !right.Good():
		return true, EyeRight
	case right.MeetsSingleEye() && !left.Good():
		return true, EyeLeft
	}
	return false, ""
}

func evaluateField(horizontal, left, right float64) bool {
	if horizontal >= FullFieldDegrees {
		return true
	}
	if horizontal >= ReducedFieldDegrees {
		return impairedField(left) || impairedField(right)
	}
	return false
}

// impairedField reports a measured eye field below the impairment mark. An
// eye that was not measured (0) never qualifies.
func impairedField(deg float64) bool {
	return deg > 0 && deg < ImpairedEyeFieldDegrees
}

// InReducedFieldBand reports whether horizontal passes only with per-eye
// field measurements.
func InReducedFieldBand(horizontal float64) bool {
	return horizontal >= ReducedFieldDegrees && horizontal < FullFieldDegrees
}
