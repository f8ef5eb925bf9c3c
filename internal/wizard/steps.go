package wizard

import (
	"fmt"
	"strings"
	"time"

	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	"dladmin/internal/medical"
	"dladmin/internal/person"
	"dladmin/internal/vision"
	id "dladmin/pkg/domain"
)

// Age returns the selected person's age at now, or 0 before a person is selected.
func (s *Session) Age(now time.Time) int {
	if s.Person == nil {
		return 0
	}
	return s.Person.Age(now)
}

// LicenseCategory returns the selected driving licence category.
func (s *Session) LicenseCategory() (category.Category, bool) {
	code := s.Fields.String(FieldCategory)
	if code == "" {
		return category.Category{}, false
	}
	return category.License(code)
}

// Permits returns the selected professional permits in display order,
// implied permits included.
func (s *Session) Permits() []string {
	return eligibility.NormalizePermits(s.Fields.List(FieldProfessionalCategories))
}

// PoliceClearanceRequired derives the police step guard.
func (s *Session) PoliceClearanceRequired() bool {
	return eligibility.RequiresPoliceClearance(s.Permits(), s.Existing)
}

// LocationID parses the issuing location field.
func (s *Session) LocationID() (id.LocationID, error) {
	return id.ParseLocationID(s.Fields.String(FieldLocationID))
}

// selectedRequirements lists the requirements of every category in the application.
func (s *Session) selectedRequirements() []category.Requirements {
	var reqs []category.Requirements
	if c, ok := s.LicenseCategory(); ok {
		reqs = append(reqs, c.Requirements)
	}
	for _, code := range s.Permits() {
		if c, ok := category.Permit(code); ok {
			reqs = append(reqs, c.Requirements)
		}
	}
	return reqs
}

// MedicalRequirement derives whether the medical assessment is mandatory.
func (s *Session) MedicalRequirement(now time.Time) medical.Requirement {
	return medical.RequirementFor(s.Age(now), s.selectedRequirements()...)
}

// MedicalInformation collects the medical step fields.
func (s *Session) MedicalInformation() medical.Information {
	f := s.Fields
	return medical.Information{
		Vision: vision.TestData{
			LeftAcuity:            f.String(FieldLeftAcuity),
			RightAcuity:           f.String(FieldRightAcuity),
			BinocularAcuity:       f.String(FieldBinocularAcuity),
			HorizontalField:       f.Number(FieldHorizontalField),
			LeftField:             f.Number(FieldLeftField),
			RightField:            f.Number(FieldRightField),
			CorrectiveLensesInUse: f.Bool(FieldCorrectiveLensesInUse),
		},
		SelfDeclarationConfirmed: f.Bool(FieldSelfDeclaration),
		CertificatePassed:        f.Bool(FieldCertificatePassed),
		PractitionerName:         f.String(FieldPractitionerName),
		PractitionerRegistration: f.String(FieldPractitionerReg),
		CertificateNumber:        f.String(FieldCertificateNumber),
	}
}

// ForeignLicense returns the foreign licence as an existing licence so its
// categories count towards prerequisites. The licence is active while unexpired.
func (s *Session) ForeignLicense(now time.Time) (person.ExistingLicense, bool) {
	if s.Type != TypeForeignConversion {
		return person.ExistingLicense{}, false
	}
	codes := s.Fields.List(FieldForeignCategories)
	if len(codes) == 0 {
		return person.ExistingLicense{}, false
	}
	issued, _ := parseDate(s.Fields.String(FieldForeignIssueDate))
	expiry, err := parseDate(s.Fields.String(FieldForeignExpiryDate))
	return person.ExistingLicense{
		ID:              s.Fields.String(FieldForeignLicenseNumber),
		Kind:            category.KindLicense,
		Categories:      codes,
		Active:          err == nil && !expiry.Before(truncateDay(now)),
		IssueDate:       issued,
		IssuingLocation: s.Fields.String(FieldForeignCountry),
	}, true
}

// eligibilityInput assembles the resolver input for the session.
func (s *Session) eligibilityInput(env Env) eligibility.Input {
	existing := s.Existing
	if fl, ok := s.ForeignLicense(env.Now); ok {
		existing = append(append([]person.ExistingLicense{}, s.Existing...), fl)
	}
	in := eligibility.Input{Existing: existing, Now: env.Now, Policy: env.Policy}
	if s.Person != nil {
		in.Person = *s.Person
	}
	return in
}

// CategoryEligibility resolves cat for the session's person. A foreign
// conversion counts the foreign categories as prerequisites and waives the
// learner's permit; "already held" only looks at domestic licences.
func (s *Session) CategoryEligibility(cat category.Category, env Env) eligibility.Result {
	domestic := eligibility.Input{Existing: s.Existing, Now: env.Now, Policy: env.Policy}
	if s.Person != nil {
		domestic.Person = *s.Person
	}
	if s.Type != TypeForeignConversion {
		return eligibility.Resolve(cat, domestic)
	}

	combined := eligibility.Resolve(cat, s.eligibilityInput(env))
	own := eligibility.Resolve(cat, domestic)
	res := eligibility.Result{Category: cat.Code, Kind: cat.Kind, Reasons: []string{}, Warnings: own.Warnings}
	for i, reason := range combined.Reasons {
		switch combined.Failed[i] {
		case eligibility.CheckLearnerPermit, eligibility.CheckAlreadyHeld:
			continue
		}
		res.Failed = append(res.Failed, combined.Failed[i])
		res.Reasons = append(res.Reasons, reason)
	}
	for i, reason := range own.Reasons {
		if own.Failed[i] == eligibility.CheckAlreadyHeld {
			res.Failed = append(res.Failed, own.Failed[i])
			res.Reasons = append(res.Reasons, reason)
		}
	}
	res.Eligible = len(res.Reasons) == 0
	return res
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Step validity predicates.

func validatePerson(s *Session, _ Env) Validation {
	if s.Person == nil {
		return invalid("Select a person to continue")
	}
	var c check
	c.require(!s.Person.ID.IsNil(), "Selected person has no identifier")
	c.require(!s.Person.BirthDate.IsZero(), "Selected person has no recorded date of birth")
	return c.result()
}

func validateLocation(c *check, s *Session) {
	if s.Fields.String(FieldLocationID) == "" {
		c.add("Issuing location is required")
		return
	}
	if _, err := s.LocationID(); err != nil {
		c.add("Issuing location is invalid")
	}
}

func validateCategory(s *Session, env Env) Validation {
	var c check
	cat, ok := s.LicenseCategory()
	if !ok {
		c.add("Select a licence category")
	} else {
		if s.Type == TypeForeignConversion && !containsCode(s.Fields.List(FieldForeignCategories), cat.Code) {
			c.add(fmt.Sprintf("Category %s is not on the foreign licence", cat.Code))
		}
		res := s.CategoryEligibility(cat, env)
		c.add(res.Reasons...)
	}
	validateLocation(&c, s)
	return c.result()
}

func validatePermits(s *Session, env Env) Validation {
	var c check
	permits := s.Permits()
	if len(permits) == 0 {
		c.add("Select at least one professional permit")
	}
	in := s.eligibilityInput(env)
	for _, code := range permits {
		res := eligibility.ResolveCode(category.KindPermit, code, in)
		c.add(res.Reasons...)
	}
	validateLocation(&c, s)
	return c.result()
}

func validateForeignLicense(s *Session, env Env) Validation {
	var c check
	f := s.Fields
	c.require(f.String(FieldForeignCountry) != "", "Issuing country is required")
	c.require(f.String(FieldForeignLicenseNumber) != "", "Foreign licence number is required")
	c.require(len(f.List(FieldForeignCategories)) > 0, "Select the categories on the foreign licence")

	today := truncateDay(env.Now)
	issued, issueErr := parseDate(f.String(FieldForeignIssueDate))
	switch {
	case issueErr != nil:
		c.add("Foreign licence issue date must be a date (YYYY-MM-DD)")
	case issued.After(today):
		c.add("Foreign licence issue date cannot be in the future")
	}
	expiry, expiryErr := parseDate(f.String(FieldForeignExpiryDate))
	switch {
	case expiryErr != nil:
		c.add("Foreign licence expiry date must be a date (YYYY-MM-DD)")
	case expiry.Before(today):
		c.add("Foreign licence has expired")
	case issueErr == nil && !expiry.After(issued):
		c.add("Foreign licence expiry date must be after its issue date")
	}
	return c.result()
}

func validateTemporary(s *Session, _ Env) Validation {
	var c check
	c.require(s.Fields.String(FieldTemporaryReason) != "", "Select a reason for the temporary licence")
	c.require(s.Fields.Number(FieldTemporaryValidDays) >= 1, "Temporary licence validity is required")
	c.require(holdsFullLicense(s.Existing), "A temporary licence requires an active driving licence")
	validateLocation(&c, s)
	return c.result()
}

func validateMedical(s *Session, env Env) Validation {
	info := s.MedicalInformation()
	res := medical.EvaluateStep(&info, s.MedicalRequirement(env.Now))
	if res.Satisfied {
		return valid()
	}
	return invalid(res.Messages...)
}

func validatePolice(s *Session, env Env) Validation {
	var c check
	f := s.Fields
	c.require(f.String(FieldPoliceCertificateNumber) != "", "Police clearance certificate number is required")
	c.require(f.String(FieldPoliceIssuingStation) != "", "Issuing police station is required")
	issued, err := parseDate(f.String(FieldPoliceIssueDate))
	today := truncateDay(env.Now)
	switch {
	case err != nil:
		c.add("Police clearance issue date must be a date (YYYY-MM-DD)")
	case issued.After(today):
		c.add("Police clearance issue date cannot be in the future")
	case today.Sub(issued) > PoliceClearanceMaxAgeDays*24*time.Hour:
		c.add(fmt.Sprintf("Police clearance must be issued within the last %d days", PoliceClearanceMaxAgeDays))
	}
	return c.result()
}

func validateBiometric(s *Session, _ Env) Validation {
	if s.Biometric == nil {
		return invalid("Biometric capture is required")
	}
	var c check
	c.require(s.Biometric.PhotoRef != "", "Photo is required")
	c.require(s.Biometric.SignatureRef != "", "Signature is required")
	return c.result()
}

func validateReview(s *Session, _ Env) Validation {
	var c check
	f := s.Fields
	c.require(f.Has(FieldRefusalDeclaration), "Answer the refusal declaration")
	if f.Bool(FieldRefusalDeclaration) {
		c.require(f.String(FieldRefusalDetails) != "", "Give details of the previous refusal")
	}
	c.require(f.Bool(FieldDeclarationConfirmed), "The applicant declaration must be confirmed")
	return c.result()
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// holdsFullLicense reports whether an active driving licence carries a
// category other than a learner's permit.
func holdsFullLicense(existing []person.ExistingLicense) bool {
	for code := range person.HeldCategories(existing, category.KindLicense) {
		if !category.IsLearnerPermit(code) {
			return true
		}
	}
	return false
}
