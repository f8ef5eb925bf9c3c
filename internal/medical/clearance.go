// Package medical aggregates the vision result, the applicant's
// self-declaration and the practitioner certificate into a single medical
// clearance. Clearance is a pure function of its inputs and is re-derived on
// every read.
package medical

import (
	"strings"

	"dladmin/internal/category"
	"dladmin/internal/vision"
)

// Information is the raw medical step input.
type Information struct {
	Vision                   vision.TestData `json:"vision"`
	SelfDeclarationConfirmed bool            `json:"self_declaration_confirmed"`
	CertificatePassed        bool            `json:"certificate_passed"`
	PractitionerName         string          `json:"practitioner_name,omitempty"`
	PractitionerRegistration string          `json:"practitioner_registration,omitempty"`
	CertificateNumber        string          `json:"certificate_number,omitempty"`
}

// Requirement states whether an assessment is mandatory for the applicant and
// whether a practitioner certificate must be signed off.
type Requirement struct {
	Mandatory           bool `json:"mandatory"`
	CertificateRequired bool `json:"certificate_required"`
}

// Assessment is the derived medical outcome.
type Assessment struct {
	Vision              vision.Result `json:"vision"`
	CertificateRequired bool          `json:"certificate_required"`
	MedicalClearance    bool          `json:"medical_clearance"`
}

// Clearance is the aggregation rule:
// vision passes, declaration confirmed, and certificate passed when required.
func Clearance(visionPasses, selfDeclarationConfirmed, certificateRequired, certificatePassed bool) bool {
	return visionPasses && selfDeclarationConfirmed && (!certificateRequired || certificatePassed)
}

// RequirementFor derives the requirement from the applicant's age and the
// categories being applied for.
func RequirementFor(age int, reqs ...category.Requirements) Requirement {
	var r Requirement
	for _, req := range reqs {
		if req.RequiresMedicalCertificate {
			r.Mandatory = true
			r.CertificateRequired = true
		}
	}
	if age >= category.MedicalAgeThreshold {
		r.Mandatory = true
	}
	return r
}

// Derive computes the assessment for info under req.
func Derive(info Information, req Requirement) Assessment {
	v := vision.Evaluate(info.Vision)
	return Assessment{
		Vision:              v,
		CertificateRequired: req.CertificateRequired,
		MedicalClearance:    Clearance(v.Passes, info.SelfDeclarationConfirmed, req.CertificateRequired, info.CertificatePassed),
	}
}

// Provided reports whether any medical data has been entered.
func (i Information) Provided() bool {
	v := i.Vision
	return strings.TrimSpace(v.LeftAcuity) != "" ||
		strings.TrimSpace(v.RightAcuity) != "" ||
		strings.TrimSpace(v.BinocularAcuity) != "" ||
		v.HorizontalField != 0 || v.LeftField != 0 || v.RightField != 0 ||
		v.CorrectiveLensesInUse ||
		i.SelfDeclarationConfirmed || i.CertificatePassed ||
		strings.TrimSpace(i.PractitionerName) != "" ||
		strings.TrimSpace(i.CertificateNumber) != ""
}

// StepResult is the medical step gate outcome.
type StepResult struct {
	Satisfied  bool        `json:"satisfied"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Messages   []string    `json:"messages,omitempty"`
}

// EvaluateStep decides whether the medical step may be left. When the
// assessment is not mandatory and nothing was entered the step is satisfied
// without clearance. Entered data is always assessed so the derived clearance
// travels downstream.
func EvaluateStep(info *Information, req Requirement) StepResult {
	if info == nil || !info.Provided() {
		if req.Mandatory {
			return StepResult{Messages: []string{"Medical assessment is required for this application"}}
		}
		return StepResult{Satisfied: true}
	}

	a := Derive(*info, req)
	res := StepResult{Assessment: &a}
	res.Messages = missingFields(*info, req)
	if req.Mandatory {
		res.Messages = append(res.Messages, a.Vision.Reasons...)
		if !info.SelfDeclarationConfirmed {
			res.Messages = append(res.Messages, "Self-declaration must be confirmed")
		}
		if req.CertificateRequired && !info.CertificatePassed {
			res.Messages = append(res.Messages, "Medical certificate must be passed by the practitioner")
		}
		res.Satisfied = len(res.Messages) == 0 && a.MedicalClearance
		return res
	}
	res.Satisfied = len(res.Messages) == 0
	return res
}

func missingFields(info Information, req Requirement) []string {
	var msgs []string
	if strings.TrimSpace(info.Vision.LeftAcuity) == "" || strings.TrimSpace(info.Vision.RightAcuity) == "" {
		msgs = append(msgs, "Visual acuity is required for both eyes")
	}
	if info.Vision.HorizontalField <= 0 {
		msgs = append(msgs, "Horizontal visual field is required")
	}
	if vision.InReducedFieldBand(info.Vision.HorizontalField) && (info.Vision.LeftField <= 0 || info.Vision.RightField <= 0) {
		msgs = append(msgs, "Field of each eye is required when the horizontal field is below 120°")
	}
	if req.CertificateRequired {
		if strings.TrimSpace(info.PractitionerName) == "" || strings.TrimSpace(info.PractitionerRegistration) == "" {
			msgs = append(msgs, "Practitioner name and registration are required")
		}
		if strings.TrimSpace(info.CertificateNumber) == "" {
			msgs = append(msgs, "Certificate number is required")
		}
	}
	return msgs
}
