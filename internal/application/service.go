package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dladmin/internal/application/metrics"
	"dladmin/internal/backend"
	"dladmin/internal/wizard"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/audit"
	"dladmin/pkg/requestcontext"
)

// Sessions is the wizard side of a submission.
type Sessions interface {
	BeginSubmission(ctx context.Context, wizardID id.WizardID) (*wizard.Session, wizard.Env, error)
	FailSubmission(ctx context.Context, wizardID id.WizardID, banner string) (wizard.View, error)
	CompleteSubmission(ctx context.Context, wizardID id.WizardID) error
}

// Backend is the licensing backend as seen by submission.
type Backend interface {
	CreateApplication(ctx context.Context, key string, in backend.ApplicationCreate) (*backend.Application, error)
	StoreBiometricData(ctx context.Context, appID id.ApplicationID, data backend.BiometricData) error
	UploadPoliceDocument(ctx context.Context, appID id.ApplicationID, doc backend.PoliceDocument) error
}

// Attachment kinds uploaded after the application is created.
const (
	AttachmentBiometrics     = "biometrics"
	AttachmentPoliceDocument = "police_document"
)

// Result is a created application. FailedAttachments lists uploads that
// did not reach the backend; the application itself stands.
type Result struct {
	Application       backend.Application `json:"application"`
	FailedAttachments []string            `json:"failed_attachments,omitempty"`
}

type Service struct {
	sessions Sessions
	backend  Backend
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  audit.Publisher
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a audit.Publisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(sessions Sessions, be Backend, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		backend:  be,
		logger:   slog.Default(),
		tracer:   otel.Tracer("dladmin/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the wizard's application to the backend. On success the
// session is discarded; on failure the reason is left on the session banner
// and the officer stays on the review step.
func (s *Service) Submit(ctx context.Context, wizardID id.WizardID) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit",
		trace.WithAttributes(attribute.String("wizard.id", wizardID.String())))
	defer span.End()
	started := time.Now()

	sess, env, err := s.sessions.BeginSubmission(ctx, wizardID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin submission")
		return nil, err
	}
	span.SetAttributes(attribute.String("application.type", string(sess.Type)))

	// The session is released even when the officer's request is cancelled.
	detached := context.WithoutCancel(ctx)

	payload, err := BuildCreate(sess, env)
	if err != nil {
		return nil, s.reject(detached, span, sess, err)
	}
	app, err := s.backend.CreateApplication(ctx, wizardID.String(), payload)
	s.metrics.ObserveSubmissionDuration(time.Since(started).Seconds())
	if err != nil {
		return nil, s.reject(detached, span, sess, err)
	}
	span.SetAttributes(attribute.String("application.id", app.ID.String()))

	failed := s.attach(detached, sess, app.ID)

	if err := s.sessions.CompleteSubmission(detached, wizardID); err != nil {
		s.logger.WarnContext(ctx, "failed to discard submitted wizard",
			"wizard_id", wizardID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	s.metrics.IncSubmission(string(sess.Type), "created")
	s.emit(detached, audit.EventApplicationSubmitted, app.ID.String(), "created", app.Reference)
	s.logger.InfoContext(ctx, "application submitted",
		"wizard_id", wizardID.String(),
		"application_id", app.ID.String(),
		"reference", app.Reference,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Result{Application: *app, FailedAttachments: failed}, nil
}

// reject records a failed submission on the session and returns the error
// the caller sees.
func (s *Service) reject(ctx context.Context, span trace.Span, sess *wizard.Session, cause error) error {
	msg := SubmissionMessage(cause)
	span.RecordError(cause)
	span.SetStatus(codes.Error, msg)

	if _, err := s.sessions.FailSubmission(ctx, sess.ID, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to record submission failure",
			"wizard_id", sess.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	s.metrics.IncSubmission(string(sess.Type), "rejected")
	s.emit(ctx, audit.EventSubmissionRejected, sess.ID.String(), "rejected", msg)
	s.logger.WarnContext(ctx, "application submission failed",
		"wizard_id", sess.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", cause,
	)
	return dErrors.Wrap(cause, rejectionCode(cause), msg)
}

func rejectionCode(err error) dErrors.Code {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code()
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return dErrors.CodeUnprocessable
}

// attach uploads the biometric capture and police document in parallel.
// Failures are logged and audited; they never undo the application.
func (s *Service) attach(ctx context.Context, sess *wizard.Session, appID id.ApplicationID) []string {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []string
	)
	run := func(kind string, action audit.AuditEvent, upload func() error) {
		g.Go(func() error {
			if err := upload(); err != nil {
				s.logger.ErrorContext(ctx, "attachment upload failed",
					"kind", kind,
					"application_id", appID.String(),
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				s.metrics.IncAttachmentFailure(kind)
				s.emit(ctx, action, appID.String(), "failed", err.Error())
				mu.Lock()
				failed = append(failed, kind)
				mu.Unlock()
			}
			return nil
		})
	}

	if b := sess.Biometric; b != nil {
		run(AttachmentBiometrics, audit.EventBiometricUploadFailed, func() error {
			return s.backend.StoreBiometricData(ctx, appID, backend.BiometricData{
				PhotoRef:        b.PhotoRef,
				SignatureRef:    b.SignatureRef,
				FingerprintRefs: b.FingerprintRefs,
				CapturedAt:      b.CapturedAt,
			})
		})
	}
	if ref := sess.Fields.String(wizard.FieldPoliceDocumentRef); ref != "" && sess.PoliceClearanceRequired() {
		run(AttachmentPoliceDocument, audit.EventPoliceUploadFailed, func() error {
			return s.backend.UploadPoliceDocument(ctx, appID, backend.PoliceDocument{
				DocumentRef:       ref,
				CertificateNumber: sess.Fields.String(wizard.FieldPoliceCertificateNumber),
			})
		})
	}
	_ = g.Wait()

	slices.Sort(failed)
	return failed
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		OfficerID: requestcontext.OfficerID(ctx),
		Subject:   subject,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
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
