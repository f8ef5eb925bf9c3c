package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dladmin/internal/category"
	"dladmin/internal/person"
	"dladmin/internal/wizard"
	"dladmin/internal/wizard/mocks"
	id "dladmin/pkg/domain"
	"dladmin/pkg/requestcontext"
)

var fixedNow = time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	router   http.Handler
	licenses *mocks.MockLicenseFetcher
	officer  id.OfficerID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	licenses := mocks.NewMockLicenseFetcher(ctrl)
	store := wizard.NewInMemoryStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := wizard.NewService(store, licenses, wizard.WithLogger(logger))

	f := &fixture{licenses: licenses, officer: id.OfficerID(uuid.New())}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithTime(req.Context(), fixedNow)
			ctx = requestcontext.WithOfficerID(ctx, f.officer)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	New(svc, logger).Register(r)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type viewBody struct {
	Session struct {
		ID          string         `json:"id"`
		CurrentStep string         `json:"current_step"`
		Fields      map[string]any `json:"fields"`
		Banner      string         `json:"banner"`
	} `json:"session"`
	Path    []string `json:"path"`
	Derived struct {
		Age                     int  `json:"age"`
		PoliceClearanceRequired bool `json:"police_clearance_required"`
		Medical                 *struct {
			MedicalClearance bool `json:"medical_clearance"`
			Vision           struct {
				Passes                   bool `json:"vision_meets_standards"`
				CorrectiveLensesRequired bool `json:"corrective_lenses_required"`
			} `json:"vision"`
		} `json:"medical"`
	} `json:"derived"`
}

type navBody struct {
	Outcome struct {
		Moved      bool   `json:"moved"`
		BlockedAt  string `json:"blocked_at"`
		Validation struct {
			Valid    bool     `json:"valid"`
			Messages []string `json:"messages"`
		} `json:"validation"`
	} `json:"outcome"`
	Wizard viewBody `json:"wizard"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) start(t *testing.T, typ string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/wizards", map[string]string{"type": typ})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[viewBody](t, rec).Session.ID
}

func TestStart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/wizards", map[string]string{"type": "professional_license"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[viewBody](t, rec)
	assert.Equal(t, "person", body.Session.CurrentStep)
	assert.Equal(t, []string{"person", "permits", "medical", "biometric", "review"}, body.Path)

	rec = f.do(t, http.MethodPost, "/wizards", map[string]string{"type": "renewal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/wizards", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownWizard(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/wizards/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/wizards/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfessionalFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	wid := f.start(t, "professional_license")
	personID := uuid.New()

	f.licenses.EXPECT().GetPersonLicenses(gomock.Any(), id.PersonID(personID)).Return([]person.ExistingLicense{
		{ID: "DL-1", Kind: category.KindLicense, Categories: []string{"B"}, Active: true},
	}, nil)
	rec := f.do(t, http.MethodPut, "/wizards/"+wid+"/person", map[string]any{
		"id":         personID.String(),
		"first_name": "Kofi",
		"last_name":  "Boateng",
		"birth_date": "1990-04-12",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 36, decode[viewBody](t, rec).Derived.Age)

	rec = f.do(t, http.MethodPost, "/wizards/"+wid+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[navBody](t, rec).Outcome.Moved)

	// Blocked advance is a normal response, not an error.
	rec = f.do(t, http.MethodPost, "/wizards/"+wid+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[navBody](t, rec)
	assert.False(t, nav.Outcome.Moved)
	assert.Equal(t, "permits", nav.Outcome.BlockedAt)
	assert.Contains(t, nav.Outcome.Validation.Messages, "Select at least one professional permit")

	rec = f.do(t, http.MethodPatch, "/wizards/"+wid+"/fields", map[string]any{
		"fields": map[string]any{
			"professional_categories": map[string]any{"kind": "enum_list", "value": []string{"D"}},
			"location_id":             map[string]any{"kind": "string", "value": uuid.NewString()},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[viewBody](t, rec)
	assert.True(t, view.Derived.PoliceClearanceRequired)
	assert.Contains(t, view.Path, "police")

	rec = f.do(t, http.MethodPost, "/wizards/"+wid+"/next", nil)
	require.True(t, decode[navBody](t, rec).Outcome.Moved)

	rec = f.do(t, http.MethodPatch, "/wizards/"+wid+"/fields", map[string]any{
		"fields": map[string]any{
			"vision_left_acuity":      map[string]any{"kind": "string", "value": "6/18"},
			"vision_right_acuity":     map[string]any{"kind": "string", "value": "6/9"},
			"vision_horizontal_field": map[string]any{"kind": "number", "value": 120},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[viewBody](t, rec)
	require.NotNil(t, view.Derived.Medical)
	assert.True(t, view.Derived.Medical.Vision.Passes)
	assert.True(t, view.Derived.Medical.Vision.CorrectiveLensesRequired)
	assert.False(t, view.Derived.Medical.MedicalClearance)
}

func TestSetFieldsRejectsMistypedAndDerivedFields(t *testing.T) {
	f := newFixture(t)
	wid := f.start(t, "new_license")
	personID := uuid.New()
	f.licenses.EXPECT().GetPersonLicenses(gomock.Any(), gomock.Any()).Return(nil, nil)
	rec := f.do(t, http.MethodPut, "/wizards/"+wid+"/person", map[string]any{
		"id": personID.String(), "first_name": "Esi", "last_name": "Asante", "birth_date": "1950-01-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	f.do(t, http.MethodPost, "/wizards/"+wid+"/next", nil)
	rec = f.do(t, http.MethodPatch, "/wizards/"+wid+"/fields", map[string]any{
		"fields": map[string]any{"category": map[string]any{"kind": "enum", "value": "B"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/wizards/"+wid+"/goto", map[string]string{"step": "medical"})
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[navBody](t, rec)
	require.False(t, nav.Outcome.Moved)
	assert.Equal(t, "category", nav.Outcome.BlockedAt)

	rec = f.do(t, http.MethodPatch, "/wizards/"+wid+"/fields", map[string]any{
		"fields": map[string]any{
			"vision_meets_standards": map[string]any{"kind": "bool", "value": true},
			"category":               map[string]any{"kind": "enum", "value": "Z"},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	fields, ok := body["fields"].([]any)
	require.True(t, ok, rec.Body.String())
	assert.Len(t, fields, 2)

	rec = f.do(t, http.MethodPatch, "/wizards/"+wid+"/fields", map[string]any{
		"fields": map[string]any{"vision_horizontal_field": map[string]any{"kind": "number", "value": "120"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a stringified number is malformed JSON for a number field")
}

func TestAbandonAndBanner(t *testing.T) {
	f := newFixture(t)
	wid := f.start(t, "temporary_license")

	rec := f.do(t, http.MethodDelete, "/wizards/"+wid+"/banner", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/wizards/"+wid, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/wizards/"+wid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
