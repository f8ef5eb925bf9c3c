package application

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dladmin/internal/backend"
	"dladmin/internal/form"
	"dladmin/internal/person"
	"dladmin/internal/vision"
	"dladmin/internal/wizard"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

func session(t *testing.T, typ wizard.ApplicationType, vals form.Values) *wizard.Session {
	t.Helper()
	s, err := wizard.NewSession(typ, id.OfficerID(uuid.New()), now)
	require.NoError(t, err)
	s.Person = applicant(40)
	s.Fields = form.Values{wizard.FieldLocationID: form.String(uuid.NewString())}
	for k, v := range vals {
		s.Fields[k] = v
	}
	return s
}

func TestBuildCreate_DerivesMedicalOutcome(t *testing.T) {
	s := session(t, wizard.TypeNewLicense, form.Values{
		wizard.FieldCategory:              form.Enum("B"),
		wizard.FieldLeftAcuity:            form.String("6/6"),
		wizard.FieldRightAcuity:           form.String("6/60"),
		wizard.FieldHorizontalField:       form.Number(130),
		wizard.FieldCorrectiveLensesInUse: form.Bool(true),
		wizard.FieldSelfDeclaration:       form.Bool(true),
	})

	out, err := BuildCreate(s, wizard.Env{Now: now})
	require.NoError(t, err)
	require.NotNil(t, out.Medical)
	assert.True(t, out.Medical.VisionMeetsStandards)
	assert.Contains(t, out.Medical.VisionRestrictions, vision.ImpairedEyeRestriction(vision.EyeRight))
	assert.True(t, out.Medical.MedicalClearance)
	assert.False(t, out.Medical.CertificateRequired)
	assert.Equal(t, "new_license", out.ApplicationType)
	assert.Equal(t, now, out.SubmittedAt)
}

func TestBuildCreate_TypeSpecificSections(t *testing.T) {
	t.Run("foreign conversion", func(t *testing.T) {
		s := session(t, wizard.TypeForeignConversion, form.Values{
			wizard.FieldCategory:             form.Enum("B"),
			wizard.FieldForeignCountry:       form.String("DE"),
			wizard.FieldForeignLicenseNumber: form.String("F-1"),
			wizard.FieldForeignCategories:    form.EnumList("B"),
		})
		out, err := BuildCreate(s, wizard.Env{Now: now})
		require.NoError(t, err)
		require.NotNil(t, out.ForeignLicense)
		assert.Equal(t, "DE", out.ForeignLicense.Country)
		assert.Nil(t, out.Temporary)
	})

	t.Run("temporary", func(t *testing.T) {
		s := session(t, wizard.TypeTemporary, form.Values{
			wizard.FieldTemporaryReason:    form.Enum(wizard.ReasonCardLost),
			wizard.FieldTemporaryValidDays: form.Number(30),
		})
		s.Existing = []person.ExistingLicense{held("B")}
		out, err := BuildCreate(s, wizard.Env{Now: now})
		require.NoError(t, err)
		require.NotNil(t, out.Temporary)
		assert.Equal(t, 30, out.Temporary.ValidDays)
		assert.Empty(t, out.Category)
		assert.Nil(t, out.Medical)
	})
}

func TestBuildCreate_RequiresPersonAndLocation(t *testing.T) {
	s := session(t, wizard.TypeNewLicense, nil)
	s.Person = nil
	_, err := BuildCreate(s, wizard.Env{Now: now})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	s = session(t, wizard.TypeNewLicense, form.Values{wizard.FieldLocationID: form.String("nope")})
	_, err = BuildCreate(s, wizard.Env{Now: now})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSubmissionMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "field errors",
			err: &backend.APIError{Status: http.StatusBadRequest, Message: "ignored", Errors: []backend.FieldError{
				{Field: "person_id", Message: "unknown person"},
			}},
			want: "person_id: unknown person",
		},
		{
			name: "api message",
			err:  &backend.APIError{Status: http.StatusConflict, Message: "Duplicate application"},
			want: "Duplicate application",
		},
		{
			name: "empty api error",
			err:  &backend.APIError{Status: http.StatusInternalServerError},
			want: GenericSubmissionMessage,
		},
		{
			name: "transport error",
			err:  errors.New("connection reset"),
			want: GenericSubmissionMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubmissionMessage(tt.err))
		})
	}
}
