// Package application turns a completed wizard session into a licence
// application on the backend.
package application

import (
	"errors"
	"strings"

	"dladmin/internal/backend"
	"dladmin/internal/medical"
	"dladmin/internal/wizard"
	dErrors "dladmin/pkg/domain-errors"
)

// GenericSubmissionMessage is shown when the backend gives no usable reason.
const GenericSubmissionMessage = "The application could not be submitted. Please try again."

// BuildCreate assembles the backend payload. Derived medical outcomes are
// recomputed from the entered data, never read from the session.
func BuildCreate(s *wizard.Session, env wizard.Env) (backend.ApplicationCreate, error) {
	if s.Person == nil {
		return backend.ApplicationCreate{}, dErrors.New(dErrors.CodeValidation, "no person selected")
	}
	loc, err := s.LocationID()
	if err != nil {
		return backend.ApplicationCreate{}, dErrors.Wrap(err, dErrors.CodeValidation, "issuing location is invalid")
	}

	f := s.Fields
	out := backend.ApplicationCreate{
		PersonID:           s.Person.ID,
		LocationID:         loc,
		OfficerID:          s.OfficerID,
		ApplicationType:    string(s.Type),
		RefusalDeclaration: f.Bool(wizard.FieldRefusalDeclaration),
		RefusalDetails:     f.String(wizard.FieldRefusalDetails),
		SubmittedAt:        env.Now,
	}
	if c, ok := s.LicenseCategory(); ok {
		out.Category = c.Code
	}

	switch s.Type {
	case wizard.TypeProfessional:
		out.ProfessionalCategories = s.Permits()
		if s.PoliceClearanceRequired() {
			out.PoliceClearance = &backend.PoliceClearance{
				CertificateNumber: f.String(wizard.FieldPoliceCertificateNumber),
				IssueDate:         f.String(wizard.FieldPoliceIssueDate),
				IssuingStation:    f.String(wizard.FieldPoliceIssuingStation),
			}
		}
	case wizard.TypeForeignConversion:
		out.ForeignLicense = &backend.ForeignLicense{
			Country:    f.String(wizard.FieldForeignCountry),
			Number:     f.String(wizard.FieldForeignLicenseNumber),
			IssueDate:  f.String(wizard.FieldForeignIssueDate),
			ExpiryDate: f.String(wizard.FieldForeignExpiryDate),
			Categories: f.List(wizard.FieldForeignCategories),
		}
	case wizard.TypeTemporary:
		out.Temporary = &backend.TemporaryLicense{
			Reason:    f.String(wizard.FieldTemporaryReason),
			ValidDays: int(f.Number(wizard.FieldTemporaryValidDays)),
		}
	}

	if info := s.MedicalInformation(); info.Provided() {
		out.Medical = medicalPayload(info, s.MedicalRequirement(env.Now))
	}
	return out, nil
}

func medicalPayload(info medical.Information, req medical.Requirement) *backend.MedicalPayload {
	a := medical.Derive(info, req)
	v := info.Vision
	return &backend.MedicalPayload{
		LeftAcuity:               v.LeftAcuity,
		RightAcuity:              v.RightAcuity,
		BinocularAcuity:          v.BinocularAcuity,
		HorizontalField:          v.HorizontalField,
		LeftField:                v.LeftField,
		RightField:               v.RightField,
		CorrectiveLensesInUse:    v.CorrectiveLensesInUse,
		VisionMeetsStandards:     a.Vision.Passes,
		CorrectiveLensesRequired: a.Vision.CorrectiveLensesRequired,
		VisionRestrictions:       a.Vision.Restrictions,
		SelfDeclarationConfirmed: info.SelfDeclarationConfirmed,
		CertificateRequired:      a.CertificateRequired,
		CertificatePassed:        info.CertificatePassed,
		PractitionerName:         info.PractitionerName,
		PractitionerRegistration: info.PractitionerRegistration,
		CertificateNumber:        info.CertificateNumber,
		MedicalClearance:         a.MedicalClearance,
	}
}

// SubmissionMessage renders a failed submission for the banner: field errors
// as "field: message" pairs, else the backend's message, else a generic text.
func SubmissionMessage(err error) string {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return GenericSubmissionMessage
	}
	if len(apiErr.Errors) > 0 {
		parts := make([]string, 0, len(apiErr.Errors))
		for _, fe := range apiErr.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		return strings.Join(parts, "; ")
	}
	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}
	return GenericSubmissionMessage
}
