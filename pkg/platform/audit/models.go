package audit

import (
	"context"
	"time"

	id "dladmin/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance, such as
	// lodging an application on a person's behalf.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers authentication and access failures.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	OfficerID id.OfficerID  `json:"officer_id"`
	// Subject is the entity acted on: a wizard, application, or person id.
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	// Wizard events
	EventWizardStarted   AuditEvent = "wizard_started"
	EventPersonSelected  AuditEvent = "person_selected"
	EventWizardAbandoned AuditEvent = "wizard_abandoned"

	// Submission events
	EventApplicationSubmitted  AuditEvent = "application_submitted"
	EventSubmissionRejected    AuditEvent = "submission_rejected"
	EventBiometricUploadFailed AuditEvent = "biometric_upload_failed"
	EventPoliceUploadFailed    AuditEvent = "police_document_upload_failed"

	// Access events
	EventAuthFailed AuditEvent = "auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationSubmitted: CategoryCompliance,
	EventSubmissionRejected:   CategoryCompliance,
	EventPersonSelected:       CategoryCompliance,

	EventAuthFailed: CategorySecurity,

	EventWizardStarted:         CategoryOperations,
	EventWizardAbandoned:       CategoryOperations,
	EventBiometricUploadFailed: CategoryOperations,
	EventPoliceUploadFailed:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Publisher emits audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events for later query.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
