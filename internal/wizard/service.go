package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dladmin/internal/eligibility"
	"dladmin/internal/form"
	"dladmin/internal/person"
	"dladmin/internal/wizard/metrics"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	audit "dladmin/pkg/platform/audit"
	"dladmin/pkg/platform/sentinel"
	"dladmin/pkg/requestcontext"
)

// LicenseFetcher loads a person's existing licences from the licensing backend.
type LicenseFetcher interface {
	GetPersonLicenses(ctx context.Context, personID id.PersonID) ([]person.ExistingLicense, error)
}

// Service runs wizard sessions. Every mutation goes through Store.Update so
// concurrent requests against one session serialize.
type Service struct {
	store    Store
	licenses LicenseFetcher
	policy   eligibility.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  audit.Publisher
}

type Option func(*Service)

// WithPolicy sets how already-held categories are treated.
func WithPolicy(p eligibility.Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a audit.Publisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(store Store, licenses LicenseFetcher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		licenses: licenses,
		policy:   eligibility.PolicyWarnAlreadyHeld,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the already-held policy the service evaluates with.
func (s *Service) Policy() eligibility.Policy { return s.policy }

func (s *Service) env(ctx context.Context) Env {
	return Env{Now: requestcontext.Now(ctx), Policy: s.policy}
}

// NavigationResult is returned by Advance, Back and GoTo.
type NavigationResult struct {
	Outcome Outcome `json:"outcome"`
	View    View    `json:"wizard"`
}

// Start opens a new session of type t. The officer's location prefills the
// issuing location.
func (s *Service) Start(ctx context.Context, t ApplicationType) (View, error) {
	env := s.env(ctx)
	sess, err := NewSession(t, requestcontext.OfficerID(ctx), env.Now)
	if err != nil {
		return View{}, err
	}
	if loc := requestcontext.LocationID(ctx); !loc.IsNil() {
		sess.Fields[FieldLocationID] = form.String(loc.String())
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save wizard")
	}

	s.metrics.IncStarted(string(t))
	s.emit(ctx, audit.EventWizardStarted, sess.ID.String(), string(t))
	s.logger.InfoContext(ctx, "wizard started",
		"wizard_id", sess.ID.String(),
		"type", string(t),
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.describe(sess, env)
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, wizardID id.WizardID) (View, error) {
	sess, err := s.store.Get(ctx, wizardID)
	if err != nil {
		return View{}, translate(err)
	}
	if err := authorize(ctx, sess); err != nil {
		return View{}, err
	}
	return s.describe(sess, s.env(ctx))
}

// SelectPerson records the applicant and loads their existing licences.
// The applicant can only change on the person step.
func (s *Service) SelectPerson(ctx context.Context, wizardID id.WizardID, p person.Person) (View, error) {
	if p.ID.IsNil() {
		return View{}, dErrors.New(dErrors.CodeValidation, "person id is required")
	}
	if p.BirthDate.IsZero() {
		return View{}, dErrors.New(dErrors.CodeValidation, "person birth date is required")
	}
	if _, err := s.Get(ctx, wizardID); err != nil {
		return View{}, err
	}

	existing, err := s.licenses.GetPersonLicenses(ctx, p.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch existing licences",
			"person_id", p.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return View{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch existing licences")
	}
	if existing == nil {
		existing = []person.ExistingLicense{}
	}

	view, err := s.mutate(ctx, wizardID, func(sess *Session, _ Env) error {
		if sess.Current != StepPerson {
			return dErrors.New(dErrors.CodeInvalidState, "the applicant can only be changed on the person step")
		}
		sess.Person = &p
		sess.Existing = existing
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.emit(ctx, audit.EventPersonSelected, wizardID.String(), p.ID.String())
	return view, nil
}

// SetFields applies updates to the current step's fields. Fields of other
// steps and derived fields are rejected.
func (s *Service) SetFields(ctx context.Context, wizardID id.WizardID, updates form.Values) (View, error) {
	return s.mutate(ctx, wizardID, func(sess *Session, _ Env) error {
		g, err := FlowFor(sess.Type)
		if err != nil {
			return err
		}
		node, _ := g.Node(sess.Current)
		next, err := node.Schema.Apply(sess.Fields, updates)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
		}
		if node.Normalize != nil {
			next = node.Normalize(next)
		}
		sess.Fields = next
		return nil
	})
}

// SetBiometric records the biometric capture on the biometric step.
func (s *Service) SetBiometric(ctx context.Context, wizardID id.WizardID, b Biometric) (View, error) {
	return s.mutate(ctx, wizardID, func(sess *Session, env Env) error {
		if sess.Current != StepBiometric {
			return dErrors.New(dErrors.CodeInvalidState, "biometrics can only be captured on the biometric step")
		}
		if b.CapturedAt.IsZero() {
			b.CapturedAt = env.Now
		}
		sess.Biometric = &b
		return nil
	})
}

func (s *Service) Advance(ctx context.Context, wizardID id.WizardID) (NavigationResult, error) {
	return s.navigate(ctx, wizardID, "advance", func(g Graph, sess *Session, env Env) (Outcome, error) {
		return Advance(g, sess, env), nil
	})
}

func (s *Service) Back(ctx context.Context, wizardID id.WizardID) (NavigationResult, error) {
	return s.navigate(ctx, wizardID, "back", func(_ Graph, sess *Session, _ Env) (Outcome, error) {
		return Back(sess), nil
	})
}

func (s *Service) GoTo(ctx context.Context, wizardID id.WizardID, target StepID) (NavigationResult, error) {
	return s.navigate(ctx, wizardID, "goto", func(g Graph, sess *Session, env Env) (Outcome, error) {
		return GoTo(g, sess, env, target)
	})
}

// DismissBanner clears the submission error banner.
func (s *Service) DismissBanner(ctx context.Context, wizardID id.WizardID) (View, error) {
	return s.mutate(ctx, wizardID, func(sess *Session, _ Env) error {
		sess.Banner = ""
		return nil
	})
}

// Abandon discards a session.
func (s *Service) Abandon(ctx context.Context, wizardID id.WizardID) error {
	sess, err := s.store.Get(ctx, wizardID)
	if err != nil {
		return translate(err)
	}
	if err := authorize(ctx, sess); err != nil {
		return err
	}
	if sess.InFlight(s.env(ctx).Now) {
		return dErrors.New(dErrors.CodeConflict, "submission in progress")
	}
	if err := s.store.Delete(ctx, wizardID); err != nil {
		return translate(err)
	}
	s.metrics.IncAbandoned(string(sess.Type))
	s.emit(ctx, audit.EventWizardAbandoned, wizardID.String(), string(sess.Current))
	return nil
}

// BeginSubmission marks the session as submitting and returns a snapshot to
// build the application from. It fails while another submission is in
// flight or when any step on the path is invalid.
func (s *Service) BeginSubmission(ctx context.Context, wizardID id.WizardID) (*Session, Env, error) {
	env := s.env(ctx)
	sess, err := s.store.Update(ctx, wizardID, func(sess *Session) error {
		if err := authorize(ctx, sess); err != nil {
			return err
		}
		if sess.InFlight(env.Now) {
			return dErrors.New(dErrors.CodeConflict, "submission already in progress")
		}
		g, err := FlowFor(sess.Type)
		if err != nil {
			return err
		}
		if v := ReadyToSubmit(g, sess, env); !v.Valid {
			return dErrors.New(dErrors.CodeValidation, strings.Join(v.Messages, "; "))
		}
		sess.Submitting = true
		sess.SubmittingSince = env.Now
		sess.Banner = ""
		sess.UpdatedAt = env.Now
		return nil
	})
	if err != nil {
		return nil, Env{}, translate(err)
	}
	return sess, env, nil
}

// FailSubmission clears the submitting flag and shows banner. The wizard stays on review.
func (s *Service) FailSubmission(ctx context.Context, wizardID id.WizardID, banner string) (View, error) {
	return s.mutate(ctx, wizardID, func(sess *Session, _ Env) error {
		sess.Submitting = false
		sess.SubmittingSince = time.Time{}
		sess.Banner = banner
		return nil
	})
}

// CompleteSubmission discards the session after a successful submission.
func (s *Service) CompleteSubmission(ctx context.Context, wizardID id.WizardID) error {
	if err := s.store.Delete(ctx, wizardID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to discard wizard")
	}
	return nil
}

func (s *Service) navigate(ctx context.Context, wizardID id.WizardID, action string, move func(Graph, *Session, Env) (Outcome, error)) (NavigationResult, error) {
	var out Outcome
	view, err := s.mutate(ctx, wizardID, func(sess *Session, env Env) error {
		if sess.InFlight(env.Now) {
			return dErrors.New(dErrors.CodeConflict, "submission in progress")
		}
		g, err := FlowFor(sess.Type)
		if err != nil {
			return err
		}
		out, err = move(g, sess, env)
		return err
	})
	if err != nil {
		return NavigationResult{}, err
	}

	result := "noop"
	switch {
	case out.Moved:
		result = "moved"
	case out.BlockedAt != "":
		result = "blocked"
	}
	s.metrics.IncNavigation(action, result)
	return NavigationResult{Outcome: out, View: view}, nil
}

func (s *Service) mutate(ctx context.Context, wizardID id.WizardID, fn func(*Session, Env) error) (View, error) {
	env := s.env(ctx)
	sess, err := s.store.Update(ctx, wizardID, func(sess *Session) error {
		if err := authorize(ctx, sess); err != nil {
			return err
		}
		if err := fn(sess, env); err != nil {
			return err
		}
		sess.UpdatedAt = env.Now
		return nil
	})
	if err != nil {
		return View{}, translate(err)
	}
	return s.describe(sess, env)
}

func (s *Service) describe(sess *Session, env Env) (View, error) {
	g, err := FlowFor(sess.Type)
	if err != nil {
		return View{}, err
	}
	return Describe(g, sess, env), nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		OfficerID: requestcontext.OfficerID(ctx),
		Subject:   subject,
		Action:    string(action),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(action),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// authorize rejects access to another officer's session.
func authorize(ctx context.Context, sess *Session) error {
	officer := requestcontext.OfficerID(ctx)
	if officer.IsNil() || sess.OfficerID.IsNil() || officer == sess.OfficerID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "wizard belongs to another officer")
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "wizard not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "wizard was modified concurrently")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "wizard store failure")
}
