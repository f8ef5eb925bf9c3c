package handler

import (
	"strings"
	"time"

	"dladmin/internal/form"
	"dladmin/internal/person"
	"dladmin/internal/wizard"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

// StartRequest is the body of POST /wizards.
type StartRequest struct {
	Type string `json:"type"`

	parsedType wizard.ApplicationType
}

func (r *StartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	t, err := wizard.ParseApplicationType(r.Type)
	if err != nil {
		return err
	}
	r.parsedType = t
	return nil
}

// PersonRequest is the body of PUT /wizards/{id}/person.
type PersonRequest struct {
	ID          string                    `json:"id"`
	FirstName   string                    `json:"first_name"`
	LastName    string                    `json:"last_name"`
	OtherNames  string                    `json:"other_names"`
	BirthDate   string                    `json:"birth_date"`
	Nationality string                    `json:"nationality"`
	Aliases     []person.IdentityDocument `json:"aliases"`

	parsed person.Person
}

func (r *PersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FirstName) > 128 || len(r.LastName) > 128 || len(r.OtherNames) > 256 {
		return dErrors.New(dErrors.CodeValidation, "name parts are too long")
	}
	personID, err := id.ParsePersonID(r.ID)
	if err != nil {
		return err
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" || r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name and last_name are required")
	}
	birth, err := time.Parse(wizard.DateLayout, strings.TrimSpace(r.BirthDate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be a date (YYYY-MM-DD)")
	}
	r.parsed = person.Person{
		ID:          personID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		OtherNames:  strings.TrimSpace(r.OtherNames),
		BirthDate:   birth,
		Nationality: strings.TrimSpace(r.Nationality),
		Aliases:     r.Aliases,
	}
	return nil
}

// FieldsRequest is the body of PATCH /wizards/{id}/fields. A null value clears a field.
type FieldsRequest struct {
	Fields form.Values `json:"fields"`
}

func (r *FieldsRequest) Validate() error {
	if r == nil || len(r.Fields) == 0 {
		return dErrors.New(dErrors.CodeValidation, "fields must not be empty")
	}
	return nil
}

// BiometricRequest is the body of PUT /wizards/{id}/biometric.
type BiometricRequest struct {
	PhotoRef        string   `json:"photo_ref"`
	SignatureRef    string   `json:"signature_ref"`
	FingerprintRefs []string `json:"fingerprint_refs"`
}

func (r *BiometricRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PhotoRef = strings.TrimSpace(r.PhotoRef)
	r.SignatureRef = strings.TrimSpace(r.SignatureRef)
	if r.PhotoRef == "" || r.SignatureRef == "" {
		return dErrors.New(dErrors.CodeValidation, "photo_ref and signature_ref are required")
	}
	return nil
}

// GoToRequest is the body of POST /wizards/{id}/goto.
type GoToRequest struct {
	Step string `json:"step"`
}

func (r *GoToRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Step) == "" {
		return dErrors.New(dErrors.CodeValidation, "step is required")
	}
	r.Step = strings.ToLower(strings.TrimSpace(r.Step))
	return nil
}
