package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dladmin/internal/eligibility"
	jwttoken "dladmin/internal/jwt_token"
	"dladmin/internal/person"
	ruleshandler "dladmin/internal/rules/handler"
	httptransport "dladmin/internal/transport/http"
	"dladmin/internal/wizard"
	wizardhandler "dladmin/internal/wizard/handler"
	id "dladmin/pkg/domain"
	"dladmin/pkg/testutil"
)

type heldB struct{}

func (heldB) GetPersonLicenses(context.Context, id.PersonID) ([]person.ExistingLicense, error) {
	return []person.ExistingLicense{{ID: "DL-1", Categories: []string{"B"}, Active: true}}, nil
}

// FlowSuite drives the wizard through the assembled router with real tokens.
type FlowSuite struct {
	suite.Suite
	router   http.Handler
	jwt      *jwttoken.JWTService
	location id.LocationID
	token    string
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

func (s *FlowSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.jwt = jwttoken.NewJWTService("flow-key", "dladmin", "dladmin-officers")
	svc := wizard.NewService(wizard.NewInMemoryStore(time.Hour), heldB{}, wizard.WithLogger(logger))

	s.router = httptransport.NewRouter(httptransport.Deps{
		Logger:    logger,
		Validator: jwttoken.NewMiddlewareValidator(s.jwt),
		Officer: []httptransport.Registrar{
			ruleshandler.New(eligibility.PolicyWarnAlreadyHeld, logger),
			wizardhandler.New(svc, logger),
		},
	})
	s.location = id.LocationID(uuid.New())
	s.token = s.mint()
}

func (s *FlowSuite) mint() string {
	token, err := s.jwt.GenerateAccessToken(id.OfficerID(uuid.New()), s.location, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *FlowSuite) TestStartSelectPersonAndAdvance() {
	t := s.T()

	rr := testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodPost, "/wizards", s.token,
		map[string]string{"type": "new_license"}))
	view := testutil.DecodeJSON[wizard.View](t, rr, http.StatusCreated)
	s.Equal(wizard.StepPerson, view.Session.Current)
	s.Equal(s.location.String(), view.Session.Fields.String(wizard.FieldLocationID))
	wizardPath := "/wizards/" + view.Session.ID.String()

	rr = testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodPut, wizardPath+"/person", s.token,
		map[string]string{
			"id":         uuid.NewString(),
			"first_name": "Ada",
			"last_name":  "Obi",
			"birth_date": "1990-04-12",
		}))
	view = testutil.DecodeJSON[wizard.View](t, rr, http.StatusOK)
	s.Require().Len(view.Session.Existing, 1)

	rr = testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodPost, wizardPath+"/next", s.token, nil))
	nav := testutil.DecodeJSON[wizard.NavigationResult](t, rr, http.StatusOK)
	s.True(nav.Outcome.Moved)
	s.Equal(wizard.StepCategory, nav.View.Session.Current)
}

func (s *FlowSuite) TestOtherOfficerIsForbidden() {
	t := s.T()
	rr := testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodPost, "/wizards", s.token,
		map[string]string{"type": "new_license"}))
	view := testutil.DecodeJSON[wizard.View](t, rr, http.StatusCreated)

	rr = testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodGet, "/wizards/"+view.Session.ID.String(), s.mint(), nil))
	body := testutil.RequireError(t, rr, http.StatusForbidden, "forbidden")
	s.Equal("wizard belongs to another officer", body.Description)
}

func (s *FlowSuite) TestRulesRequireToken() {
	t := s.T()
	rr := testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodGet, "/categories", "", nil))
	testutil.RequireError(t, rr, http.StatusUnauthorized, "unauthorized")

	rr = testutil.Serve(s.router, testutil.OfficerRequest(t, http.MethodGet, "/categories", s.token, nil))
	s.Equal(http.StatusOK, rr.Code)
}
