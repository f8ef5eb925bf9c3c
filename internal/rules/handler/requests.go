package handler

import (
	"strings"
	"time"

	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	"dladmin/internal/medical"
	"dladmin/internal/person"
	"dladmin/internal/vision"
	dErrors "dladmin/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// VisionRequest is the body of POST /vision/evaluate.
type VisionRequest struct {
	vision.TestData
}

func (r *VisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.HorizontalField < 0 || r.LeftField < 0 || r.RightField < 0 {
		return dErrors.New(dErrors.CodeValidation, "visual field degrees cannot be negative")
	}
	return nil
}

// EligibilityRequest is the body of POST /eligibility/evaluate. An empty
// category evaluates every category of the kind.
type EligibilityRequest struct {
	BirthDate string                   `json:"birth_date"`
	Existing  []person.ExistingLicense `json:"existing_licenses"`
	Kind      string                   `json:"kind"`
	Category  string                   `json:"category"`
	Policy    string                   `json:"policy"`

	birth  time.Time
	kind   category.Kind
	policy eligibility.Policy
}

func (r *EligibilityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	birth, err := time.Parse(dateLayout, strings.TrimSpace(r.BirthDate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be a date (YYYY-MM-DD)")
	}
	r.birth = birth
	switch category.Kind(strings.ToLower(strings.TrimSpace(r.Kind))) {
	case "", category.KindLicense:
		r.kind = category.KindLicense
	case category.KindPermit:
		r.kind = category.KindPermit
	default:
		return dErrors.New(dErrors.CodeValidation, "kind must be driving or professional")
	}
	if r.Policy != "" {
		r.policy = eligibility.ParsePolicy(r.Policy)
	}
	return nil
}

// PoliceClearanceRequest is the body of POST /police-clearance/evaluate.
type PoliceClearanceRequest struct {
	Selected []string                 `json:"professional_categories"`
	Existing []person.ExistingLicense `json:"existing_licenses"`
}

func (r *PoliceClearanceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// MedicalRequest is the body of POST /medical/evaluate.
type MedicalRequest struct {
	medical.Information
	Age      int      `json:"age"`
	Licenses []string `json:"categories"`
	Permits  []string `json:"professional_categories"`

	reqs []category.Requirements
}

func (r *MedicalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Age < 0 || r.Age > 150 {
		return dErrors.New(dErrors.CodeValidation, "age is out of range")
	}
	r.reqs = nil
	for _, code := range r.Licenses {
		c, ok := category.License(code)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "unknown category: "+code)
		}
		r.reqs = append(r.reqs, c.Requirements)
	}
	for _, code := range eligibility.NormalizePermits(r.Permits) {
		c, _ := category.Permit(code)
		r.reqs = append(r.reqs, c.Requirements)
	}
	return nil
}
