package wizard

import (
	"dladmin/internal/category"
	"dladmin/internal/form"
)

// Field names. Derived outcomes (vision_meets_standards,
// corrective_lenses_required, medical_clearance) are computed on read and
// appear in no schema.
const (
	FieldCategory   = "category"
	FieldLocationID = "location_id"

	FieldProfessionalCategories = "professional_categories"

	FieldForeignCountry       = "foreign_country"
	FieldForeignLicenseNumber = "foreign_license_number"
	FieldForeignIssueDate     = "foreign_issue_date"
	FieldForeignExpiryDate    = "foreign_expiry_date"
	FieldForeignCategories    = "foreign_categories"

	FieldTemporaryReason    = "temporary_reason"
	FieldTemporaryValidDays = "temporary_valid_days"

	FieldLeftAcuity            = "vision_left_acuity"
	FieldRightAcuity           = "vision_right_acuity"
	FieldBinocularAcuity       = "vision_binocular_acuity"
	FieldHorizontalField       = "vision_horizontal_field"
	FieldLeftField             = "vision_left_field"
	FieldRightField            = "vision_right_field"
	FieldCorrectiveLensesInUse = "corrective_lenses_in_use"
	FieldSelfDeclaration       = "self_declaration_confirmed"
	FieldCertificatePassed     = "certificate_passed"
	FieldPractitionerName      = "practitioner_name"
	FieldPractitionerReg       = "practitioner_registration"
	FieldCertificateNumber     = "certificate_number"

	FieldPoliceCertificateNumber = "police_certificate_number"
	FieldPoliceIssueDate         = "police_issue_date"
	FieldPoliceIssuingStation    = "police_issuing_station"
	FieldPoliceDocumentRef       = "police_document_ref"

	FieldRefusalDeclaration   = "refusal_declaration"
	FieldRefusalDetails       = "refusal_details"
	FieldDeclarationConfirmed = "declaration_confirmed"
)

// Temporary licence reasons.
const (
	ReasonCardInProduction = "card_in_production"
	ReasonCardLost         = "card_lost"
	ReasonCardDamaged      = "card_damaged"
	ReasonAwaitingRenewal  = "awaiting_renewal"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

const (
	// MaxTemporaryValidDays bounds temporary licence validity.
	MaxTemporaryValidDays = 90
	// PoliceClearanceMaxAgeDays is how old a police certificate may be.
	PoliceClearanceMaxAgeDays = 180
)

var locationSchema = form.Schema{
	FieldLocationID: {Kind: form.KindString, MaxLength: 64},
}

var categorySchema = form.Merge(form.Schema{
	FieldCategory: {Kind: form.KindEnum, Options: category.LicenseCodes()},
}, locationSchema)

var permitsSchema = form.Merge(form.Schema{
	FieldProfessionalCategories: {Kind: form.KindEnumList, Options: category.PermitCodes()},
}, locationSchema)

var foreignLicenseSchema = form.Schema{
	FieldForeignCountry:       {Kind: form.KindString, MaxLength: 64},
	FieldForeignLicenseNumber: {Kind: form.KindString, MaxLength: 64},
	FieldForeignIssueDate:     {Kind: form.KindString, MaxLength: 10},
	FieldForeignExpiryDate:    {Kind: form.KindString, MaxLength: 10},
	FieldForeignCategories:    {Kind: form.KindEnumList, Options: category.LicenseCodes()},
}

var temporarySchema = form.Merge(form.Schema{
	FieldTemporaryReason: {Kind: form.KindEnum, Options: []string{
		ReasonCardInProduction, ReasonCardLost, ReasonCardDamaged, ReasonAwaitingRenewal,
	}},
	FieldTemporaryValidDays: {Kind: form.KindNumber, Min: 1, Max: MaxTemporaryValidDays, Integer: true},
}, locationSchema)

var medicalSchema = form.Schema{
	FieldLeftAcuity:            {Kind: form.KindString, MaxLength: 16},
	FieldRightAcuity:           {Kind: form.KindString, MaxLength: 16},
	FieldBinocularAcuity:       {Kind: form.KindString, MaxLength: 16},
	FieldHorizontalField:       {Kind: form.KindNumber, Min: 0, Max: 200},
	FieldLeftField:             {Kind: form.KindNumber, Min: 0, Max: 200},
	FieldRightField:            {Kind: form.KindNumber, Min: 0, Max: 200},
	FieldCorrectiveLensesInUse: {Kind: form.KindBool},
	FieldSelfDeclaration:       {Kind: form.KindBool},
	FieldCertificatePassed:     {Kind: form.KindBool},
	FieldPractitionerName:      {Kind: form.KindString, MaxLength: 128},
	FieldPractitionerReg:       {Kind: form.KindString, MaxLength: 64},
	FieldCertificateNumber:     {Kind: form.KindString, MaxLength: 64},
}

var policeSchema = form.Schema{
	FieldPoliceCertificateNumber: {Kind: form.KindString, MaxLength: 64},
	FieldPoliceIssueDate:         {Kind: form.KindString, MaxLength: 10},
	FieldPoliceIssuingStation:    {Kind: form.KindString, MaxLength: 128},
	FieldPoliceDocumentRef:       {Kind: form.KindString, MaxLength: 256},
}

var reviewSchema = form.Schema{
	FieldRefusalDeclaration:   {Kind: form.KindBool},
	FieldRefusalDetails:       {Kind: form.KindString, MaxLength: 1024},
	FieldDeclarationConfirmed: {Kind: form.KindBool},
}
