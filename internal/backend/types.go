package backend

import (
	"time"

	id "dladmin/pkg/domain"
)

// ApplicationCreate is the payload of a new licence application.
type ApplicationCreate struct {
	PersonID               id.PersonID       `json:"person_id"`
	LocationID             id.LocationID     `json:"location_id"`
	OfficerID              id.OfficerID      `json:"officer_id"`
	ApplicationType        string            `json:"application_type"`
	Category               string            `json:"category,omitempty"`
	ProfessionalCategories []string          `json:"professional_categories,omitempty"`
	Medical                *MedicalPayload   `json:"medical,omitempty"`
	ForeignLicense         *ForeignLicense   `json:"foreign_license,omitempty"`
	Temporary              *TemporaryLicense `json:"temporary,omitempty"`
	PoliceClearance        *PoliceClearance  `json:"police_clearance,omitempty"`
	RefusalDeclaration     bool              `json:"refusal_declaration"`
	RefusalDetails         string            `json:"refusal_details,omitempty"`
	SubmittedAt            time.Time         `json:"submitted_at"`
}

// MedicalPayload carries the medical inputs and the outcomes derived from them.
type MedicalPayload struct {
	LeftAcuity               string   `json:"vision_left_acuity"`
	RightAcuity              string   `json:"vision_right_acuity"`
	BinocularAcuity          string   `json:"vision_binocular_acuity,omitempty"`
	HorizontalField          float64  `json:"vision_horizontal_field"`
	LeftField                float64  `json:"vision_left_field,omitempty"`
	RightField               float64  `json:"vision_right_field,omitempty"`
	CorrectiveLensesInUse    bool     `json:"corrective_lenses_in_use"`
	VisionMeetsStandards     bool     `json:"vision_meets_standards"`
	CorrectiveLensesRequired bool     `json:"corrective_lenses_required"`
	VisionRestrictions       []string `json:"vision_restrictions"`
	SelfDeclarationConfirmed bool     `json:"self_declaration_confirmed"`
	CertificateRequired      bool     `json:"certificate_required"`
	CertificatePassed        bool     `json:"certificate_passed"`
	PractitionerName         string   `json:"practitioner_name,omitempty"`
	PractitionerRegistration string   `json:"practitioner_registration,omitempty"`
	CertificateNumber        string   `json:"certificate_number,omitempty"`
	MedicalClearance         bool     `json:"medical_clearance"`
}

type ForeignLicense struct {
	Country    string   `json:"country"`
	Number     string   `json:"number"`
	IssueDate  string   `json:"issue_date"`
	ExpiryDate string   `json:"expiry_date"`
	Categories []string `json:"categories"`
}

type TemporaryLicense struct {
	Reason    string `json:"reason"`
	ValidDays int    `json:"valid_days"`
}

type PoliceClearance struct {
	CertificateNumber string `json:"certificate_number"`
	IssueDate         string `json:"issue_date"`
	IssuingStation    string `json:"issuing_station"`
}

// Application is the backend's record of a created application.
type Application struct {
	ID        id.ApplicationID `json:"id"`
	Reference string           `json:"reference"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// BiometricData references the captured biometric artefacts.
type BiometricData struct {
	PhotoRef        string    `json:"photo_ref"`
	SignatureRef    string    `json:"signature_ref"`
	FingerprintRefs []string  `json:"fingerprint_refs,omitempty"`
	CapturedAt      time.Time `json:"captured_at"`
}

// PoliceDocument references an uploaded police clearance certificate.
type PoliceDocument struct {
	DocumentRef       string `json:"document_ref"`
	CertificateNumber string `json:"certificate_number"`
}
