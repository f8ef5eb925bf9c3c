package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	dErrors "dladmin/pkg/domain-errors"
	audit "dladmin/pkg/platform/audit"
	auditmemory "dladmin/pkg/platform/audit/store/memory"
)

type stubInvalidator struct {
	calls int
	err   error
}

func (s *stubInvalidator) Invalidate(context.Context) error {
	s.calls++
	return s.err
}

type AdminHandlerSuite struct {
	suite.Suite
	lookups *stubInvalidator
	store   *auditmemory.InMemoryStore
	router  chi.Router
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	s.lookups = &stubInvalidator{}
	s.store = auditmemory.NewInMemoryStore()
	s.router = chi.NewRouter()
	New(s.lookups, s.store, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *AdminHandlerSuite) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (s *AdminHandlerSuite) TestInvalidateLookups() {
	rec := s.do(http.MethodPost, "/admin/lookups/invalidate")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(1, s.lookups.calls)

	var body InvalidateResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.ElementsMatch([]string{"locations", "lookups"}, body.Invalidated)
}

func (s *AdminHandlerSuite) TestInvalidateLookupsFailure() {
	s.lookups.err = dErrors.Wrap(errors.New("redis down"), dErrors.CodeInternal, "failed to invalidate lookup cache")
	rec := s.do(http.MethodPost, "/admin/lookups/invalidate")
	s.Equal(http.StatusInternalServerError, rec.Code)
}

func (s *AdminHandlerSuite) TestRecentAudit() {
	ctx := context.Background()
	for _, subject := range []string{"w-1", "w-2", "w-1"} {
		s.Require().NoError(s.store.Append(ctx, audit.Event{Subject: subject, Action: string(audit.EventWizardStarted)}))
	}

	rec := s.do(http.MethodGet, "/admin/audit/recent?limit=2")
	s.Equal(http.StatusOK, rec.Code)
	var body AuditEventsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(2, body.Total)

	rec = s.do(http.MethodGet, "/admin/audit/subjects/w-1")
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(2, body.Total)
}

func (s *AdminHandlerSuite) TestRecentAuditBadLimit() {
	for _, limit := range []string{"0", "abc", "501"} {
		rec := s.do(http.MethodGet, "/admin/audit/recent?limit="+limit)
		s.Equal(http.StatusBadRequest, rec.Code, limit)
	}
}

func (s *AdminHandlerSuite) TestEmptySubject() {
	rec := s.do(http.MethodGet, "/admin/audit/subjects/nobody")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"events":[],"total":0}`, rec.Body.String())
}
