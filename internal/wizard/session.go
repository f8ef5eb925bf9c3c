package wizard

import (
	"slices"
	"strings"
	"time"

	"dladmin/internal/form"
	"dladmin/internal/person"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

// ApplicationType selects the wizard flow.
type ApplicationType string

const (
	TypeNewLicense        ApplicationType = "new_license"
	TypeProfessional      ApplicationType = "professional_license"
	TypeForeignConversion ApplicationType = "foreign_conversion"
	TypeTemporary         ApplicationType = "temporary_license"
)

// ParseApplicationType validates an application type string.
func ParseApplicationType(s string) (ApplicationType, error) {
	t := ApplicationType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := flows[t]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported application type: "+s)
	}
	return t, nil
}

// Biometric is the output of the biometric capture sub-form. The capture
// component validates the images; only references travel here.
type Biometric struct {
	PhotoRef        string    `json:"photo_ref"`
	SignatureRef    string    `json:"signature_ref"`
	FingerprintRefs []string  `json:"fingerprint_refs,omitempty"`
	CapturedAt      time.Time `json:"captured_at"`
}

// Session is one wizard instance. It is owned by a single officer and lives
// only until submission succeeds or it is abandoned.
type Session struct {
	ID        id.WizardID     `json:"id"`
	Type      ApplicationType `json:"type"`
	OfficerID id.OfficerID    `json:"officer_id"`

	Current StepID `json:"current_step"`
	// History holds the steps left behind by forward moves, oldest first.
	// Back pops from it, so skipped steps are never revisited.
	History []StepID `json:"history"`

	Person    *person.Person           `json:"person,omitempty"`
	Existing  []person.ExistingLicense `json:"existing_licenses"`
	Fields    form.Values              `json:"fields"`
	Biometric *Biometric               `json:"biometric,omitempty"`

	// Submitting is set while a submission call is outstanding.
	Submitting      bool      `json:"submitting"`
	SubmittingSince time.Time `json:"submitting_since,omitempty"`
	// Banner is the dismissible submission error.
	Banner string `json:"banner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionStaleAfter bounds how long a submitting flag blocks the session.
// A flag older than this was left by a process that died mid-submission.
const SubmissionStaleAfter = 5 * time.Minute

// InFlight reports whether a submission is outstanding at now.
func (s *Session) InFlight(now time.Time) bool {
	return s.Submitting && now.Sub(s.SubmittingSince) < SubmissionStaleAfter
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = slices.Clone(s.History)
	c.Existing = slices.Clone(s.Existing)
	if s.Fields != nil {
		c.Fields = make(form.Values, len(s.Fields))
		for k, v := range s.Fields {
			c.Fields[k] = v
		}
	}
	if s.Person != nil {
		p := *s.Person
		p.Aliases = slices.Clone(s.Person.Aliases)
		c.Person = &p
	}
	if s.Biometric != nil {
		b := *s.Biometric
		b.FingerprintRefs = slices.Clone(s.Biometric.FingerprintRefs)
		c.Biometric = &b
	}
	return &c
}

// NewSession starts a session of type t at the flow's first step.
func NewSession(t ApplicationType, officer id.OfficerID, now time.Time) (*Session, error) {
	g, err := FlowFor(t)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id.NewWizardID(),
		Type:      t,
		OfficerID: officer,
		Current:   g.Start(),
		History:   []StepID{},
		Fields:    form.Values{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
