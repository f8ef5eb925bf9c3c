package wizard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	"dladmin/internal/form"
	"dladmin/internal/person"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

var (
	now      = time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	env      = Env{Now: now, Policy: eligibility.PolicyWarnAlreadyHeld}
	location = uuid.NewString()
)

func applicant(years int) *person.Person {
	return &person.Person{
		ID:        id.PersonID(uuid.New()),
		FirstName: "Ama",
		LastName:  "Mensah",
		BirthDate: now.AddDate(-years, 0, -1),
	}
}

func held(kind category.Kind, codes ...string) person.ExistingLicense {
	return person.ExistingLicense{ID: uuid.NewString(), Kind: kind, Categories: codes, Active: true}
}

func newTestSession(t *testing.T, typ ApplicationType) (Graph, *Session) {
	t.Helper()
	g, err := FlowFor(typ)
	require.NoError(t, err)
	s, err := NewSession(typ, id.OfficerID(uuid.New()), now)
	require.NoError(t, err)
	return g, s
}

func set(s *Session, vals form.Values) {
	for k, v := range vals {
		s.Fields[k] = v
	}
}

func clearVision() form.Values {
	return form.Values{
		FieldLeftAcuity:      form.String("6/6"),
		FieldRightAcuity:     form.String("6/9"),
		FieldHorizontalField: form.Number(120),
		FieldSelfDeclaration: form.Bool(true),
	}
}

func certificate() form.Values {
	return form.Values{
		FieldCertificatePassed: form.Bool(true),
		FieldPractitionerName:  form.String("Dr Owusu"),
		FieldPractitionerReg:   form.String("MDC-1182"),
		FieldCertificateNumber: form.String("MC-2026-0042"),
	}
}

func reviewDone() form.Values {
	return form.Values{
		FieldRefusalDeclaration:   form.Bool(false),
		FieldDeclarationConfirmed: form.Bool(true),
	}
}

func biometric() *Biometric {
	return &Biometric{PhotoRef: "photo-1", SignatureRef: "sig-1", CapturedAt: now}
}

func mustAdvance(t *testing.T, g Graph, s *Session, want StepID) {
	t.Helper()
	out := Advance(g, s, env)
	require.True(t, out.Moved, "blocked at %s: %v", out.BlockedAt, out.Validation.Messages)
	require.Equal(t, want, s.Current)
}

func TestAdvance_BlockedByIneligibleCategory(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	s.Person = applicant(16)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "L1")}
	mustAdvance(t, g, s, StepCategory)

	set(s, form.Values{FieldCategory: form.Enum("B"), FieldLocationID: form.String(location)})
	out := Advance(g, s, env)

	assert.False(t, out.Moved)
	assert.Equal(t, StepCategory, out.BlockedAt)
	assert.Equal(t, StepCategory, s.Current)
	assert.Contains(t, out.Validation.Messages, "Minimum age: 18 years (current: 16)")
	assert.Equal(t, []StepID{StepPerson}, s.History)
}

func TestAdvance_NewLicenseWalkthrough(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	assert.Equal(t, StepPerson, s.Current)

	out := Advance(g, s, env)
	require.False(t, out.Moved)
	assert.Equal(t, []string{"Select a person to continue"}, out.Validation.Messages)

	s.Person = applicant(30)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "L2")}
	mustAdvance(t, g, s, StepCategory)

	set(s, form.Values{FieldCategory: form.Enum("B"), FieldLocationID: form.String(location)})
	mustAdvance(t, g, s, StepMedical)

	// Optional assessment with nothing entered.
	mustAdvance(t, g, s, StepBiometric)

	s.Biometric = biometric()
	mustAdvance(t, g, s, StepReview)

	assert.False(t, ReadyToSubmit(g, s, env).Valid)
	set(s, reviewDone())
	assert.True(t, ReadyToSubmit(g, s, env).Valid)

	out = Advance(g, s, env)
	assert.False(t, out.Moved, "review is terminal")
	assert.True(t, out.Validation.Valid)
	assert.Equal(t, []StepID{StepPerson, StepCategory, StepMedical, StepBiometric}, s.History)
}

func TestAdvance_MandatoryMedicalForSeniorApplicant(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	s.Person = applicant(70)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "L1")}
	set(s, form.Values{FieldCategory: form.Enum("B"), FieldLocationID: form.String(location)})
	mustAdvance(t, g, s, StepCategory)
	mustAdvance(t, g, s, StepMedical)

	out := Advance(g, s, env)
	require.False(t, out.Moved)
	assert.Contains(t, out.Validation.Messages, "Medical assessment is required for this application")

	set(s, clearVision())
	set(s, form.Values{FieldHorizontalField: form.Number(110)})
	out = Advance(g, s, env)
	require.False(t, out.Moved)
	assert.Contains(t, out.Validation.Messages, "Horizontal visual field below standard (110°)")

	set(s, form.Values{FieldHorizontalField: form.Number(125)})
	mustAdvance(t, g, s, StepBiometric)
}

func TestBack(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)

	out := Back(s)
	assert.False(t, out.Moved)
	assert.Equal(t, StepPerson, s.Current)

	s.Person = applicant(30)
	mustAdvance(t, g, s, StepCategory)

	out = Back(s)
	assert.True(t, out.Moved)
	assert.Equal(t, StepPerson, s.Current)
	assert.Empty(t, s.History)
}

func TestGoTo(t *testing.T) {
	t.Run("forward jump blocked by an invalid step on the way", func(t *testing.T) {
		g, s := newTestSession(t, TypeNewLicense)
		s.Person = applicant(30)

		out, err := GoTo(g, s, env, StepBiometric)
		require.NoError(t, err)
		assert.False(t, out.Moved)
		assert.Equal(t, StepCategory, out.BlockedAt)
		assert.Contains(t, out.Validation.Messages, "Select a licence category")
		assert.Equal(t, StepPerson, s.Current)
	})

	t.Run("forward jump over valid steps records them in history", func(t *testing.T) {
		g, s := newTestSession(t, TypeNewLicense)
		s.Person = applicant(30)
		s.Existing = []person.ExistingLicense{held(category.KindLicense, "L1")}
		set(s, form.Values{FieldCategory: form.Enum("B"), FieldLocationID: form.String(location)})

		out, err := GoTo(g, s, env, StepBiometric)
		require.NoError(t, err)
		assert.True(t, out.Moved)
		assert.Equal(t, StepBiometric, s.Current)
		assert.Equal(t, []StepID{StepPerson, StepCategory, StepMedical}, s.History)
	})

	t.Run("backward jump is always allowed and truncates history", func(t *testing.T) {
		g, s := newTestSession(t, TypeNewLicense)
		s.Person = applicant(30)
		s.Existing = []person.ExistingLicense{held(category.KindLicense, "L1")}
		set(s, form.Values{FieldCategory: form.Enum("B"), FieldLocationID: form.String(location)})
		mustAdvance(t, g, s, StepCategory)
		mustAdvance(t, g, s, StepMedical)

		// Invalidate an earlier step; going back must still work.
		delete(s.Fields, FieldCategory)
		out, err := GoTo(g, s, env, StepPerson)
		require.NoError(t, err)
		assert.True(t, out.Moved)
		assert.Equal(t, StepPerson, s.Current)
		assert.Empty(t, s.History)
	})

	t.Run("unknown step", func(t *testing.T) {
		g, s := newTestSession(t, TypeNewLicense)
		_, err := GoTo(g, s, env, StepPolice)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("step skipped by its guard is unreachable", func(t *testing.T) {
		g, s := newTestSession(t, TypeProfessional)
		s.Person = applicant(30)
		set(s, form.Values{FieldProfessionalCategories: form.EnumList("G")})
		_, err := GoTo(g, s, env, StepPolice)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("current step is a no-op", func(t *testing.T) {
		g, s := newTestSession(t, TypeNewLicense)
		out, err := GoTo(g, s, env, StepPerson)
		require.NoError(t, err)
		assert.False(t, out.Moved)
		assert.True(t, out.Validation.Valid)
	})
}

func TestProfessionalFlow_PoliceStepFollowsGuard(t *testing.T) {
	tests := []struct {
		name     string
		permits  []string
		existing []person.ExistingLicense
		police   bool
	}{
		{name: "goods only", permits: []string{"G"}, police: false},
		{name: "passenger permit", permits: []string{"P"}, police: true},
		{name: "dangerous goods implies goods", permits: []string{"D"}, police: true},
		{name: "existing passenger permit", permits: []string{"G"}, existing: []person.ExistingLicense{held(category.KindPermit, "P")}, police: true},
		{name: "inactive passenger permit", permits: []string{"G"}, existing: []person.ExistingLicense{{Kind: category.KindPermit, Categories: []string{"P"}}}, police: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newTestSession(t, TypeProfessional)
			s.Existing = tt.existing
			set(s, form.Values{FieldProfessionalCategories: form.EnumList(tt.permits...)})
			path := g.Path(s, env)
			assert.Equal(t, tt.police, contains(path, StepPolice), "path %v", path)
		})
	}
}

func TestProfessionalFlow_Walkthrough(t *testing.T) {
	g, s := newTestSession(t, TypeProfessional)
	s.Person = applicant(30)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "B")}
	mustAdvance(t, g, s, StepPermits)

	set(s, normalizePermits(form.Values{FieldProfessionalCategories: form.EnumList("D")}))
	assert.Equal(t, []string{"G", "D"}, s.Permits())
	set(s, form.Values{FieldLocationID: form.String(location)})
	mustAdvance(t, g, s, StepMedical)

	set(s, clearVision())
	out := Advance(g, s, env)
	require.False(t, out.Moved)
	assert.Contains(t, out.Validation.Messages, "Medical certificate must be passed by the practitioner")

	set(s, certificate())
	mustAdvance(t, g, s, StepPolice)

	set(s, form.Values{
		FieldPoliceCertificateNumber: form.String("PC-881"),
		FieldPoliceIssuingStation:    form.String("Central"),
		FieldPoliceIssueDate:         form.String(now.AddDate(0, 0, -200).Format(DateLayout)),
	})
	out = Advance(g, s, env)
	require.False(t, out.Moved)
	assert.Contains(t, out.Validation.Messages, "Police clearance must be issued within the last 180 days")

	set(s, form.Values{FieldPoliceIssueDate: form.String(now.AddDate(0, 0, -10).Format(DateLayout))})
	mustAdvance(t, g, s, StepBiometric)
}

func TestPermitsStep_AgeShortfall(t *testing.T) {
	g, s := newTestSession(t, TypeProfessional)
	s.Person = applicant(19)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "B")}
	set(s, form.Values{FieldProfessionalCategories: form.EnumList("P"), FieldLocationID: form.String(location)})

	v := g.Validate(StepPermits, s, env)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Messages, "Minimum age: 21 years (current: 19)")
}

func TestForeignConversion(t *testing.T) {
	foreign := form.Values{
		FieldForeignCountry:       form.String("Togo"),
		FieldForeignLicenseNumber: form.String("TG-55102"),
		FieldForeignIssueDate:     form.String("2020-05-01"),
		FieldForeignExpiryDate:    form.String("2030-05-01"),
		FieldForeignCategories:    form.EnumList("B", "BE"),
	}

	t.Run("learner permit waived and foreign categories count as prerequisites", func(t *testing.T) {
		g, s := newTestSession(t, TypeForeignConversion)
		s.Person = applicant(30)
		set(s, foreign)
		set(s, form.Values{FieldCategory: form.Enum("BE"), FieldLocationID: form.String(location)})
		mustAdvance(t, g, s, StepForeignLicense)
		mustAdvance(t, g, s, StepCategory)
		mustAdvance(t, g, s, StepMedical)
	})

	t.Run("category must be on the foreign licence", func(t *testing.T) {
		g, s := newTestSession(t, TypeForeignConversion)
		s.Person = applicant(30)
		set(s, foreign)
		set(s, form.Values{FieldCategory: form.Enum("C1"), FieldLocationID: form.String(location)})
		v := g.Validate(StepCategory, s, env)
		assert.Contains(t, v.Messages, "Category C1 is not on the foreign licence")
	})

	t.Run("expired foreign licence", func(t *testing.T) {
		g, s := newTestSession(t, TypeForeignConversion)
		set(s, foreign)
		set(s, form.Values{FieldForeignExpiryDate: form.String("2025-01-01")})
		v := g.Validate(StepForeignLicense, s, env)
		assert.Contains(t, v.Messages, "Foreign licence has expired")
	})
}

func TestTemporaryFlow_RequiresFullLicence(t *testing.T) {
	g, s := newTestSession(t, TypeTemporary)
	s.Person = applicant(30)
	s.Existing = []person.ExistingLicense{held(category.KindLicense, "L1")}
	set(s, form.Values{
		FieldTemporaryReason:    form.Enum(ReasonCardLost),
		FieldTemporaryValidDays: form.Number(30),
		FieldLocationID:         form.String(location),
	})

	v := g.Validate(StepTemporary, s, env)
	assert.Equal(t, []string{"A temporary licence requires an active driving licence"}, v.Messages)

	s.Existing = append(s.Existing, held(category.KindLicense, "B"))
	assert.True(t, g.Validate(StepTemporary, s, env).Valid)
	assert.Equal(t, []StepID{StepPerson, StepTemporary, StepBiometric, StepReview}, g.Path(s, env))
}

func TestStatuses(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	s.Person = applicant(30)

	statuses := Statuses(g, s, env)
	require.Len(t, statuses, 5)

	assert.True(t, statuses[0].Current)
	assert.True(t, statuses[0].Enabled)
	assert.True(t, statuses[0].Validation.Valid)
	assert.True(t, statuses[1].Enabled, "reachable because the person step is valid")
	assert.False(t, statuses[1].Validation.Valid)
	assert.False(t, statuses[2].Enabled, "category step is invalid")
	assert.False(t, statuses[4].Enabled)
}

func TestReviewRefusalDetails(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	set(s, form.Values{FieldRefusalDeclaration: form.Bool(true), FieldDeclarationConfirmed: form.Bool(true)})
	v := g.Validate(StepReview, s, env)
	assert.Equal(t, []string{"Give details of the previous refusal"}, v.Messages)
}

func TestReadyToSubmit_OnlyFromReview(t *testing.T) {
	g, s := newTestSession(t, TypeNewLicense)
	v := ReadyToSubmit(g, s, env)
	assert.False(t, v.Valid)
	assert.Equal(t, []string{"Applications can only be submitted from the review step"}, v.Messages)
}

func TestParseApplicationType(t *testing.T) {
	typ, err := ParseApplicationType(" Professional_License ")
	require.NoError(t, err)
	assert.Equal(t, TypeProfessional, typ)

	_, err = ParseApplicationType("renewal")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func contains(path []StepID, step StepID) bool {
	for _, p := range path {
		if p == step {
			return true
		}
	}
	return false
}
