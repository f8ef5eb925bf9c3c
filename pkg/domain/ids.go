package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "dladmin/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a person id from being passed where
// a wizard or location id is expected.
type (
	PersonID      uuid.UUID
	WizardID      uuid.UUID
	ApplicationID uuid.UUID
	LocationID    uuid.UUID
	OfficerID     uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID("person id", s)
	return PersonID(u), err
}

func ParseWizardID(s string) (WizardID, error) {
	u, err := parseUUID("wizard id", s)
	return WizardID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID("application id", s)
	return ApplicationID(u), err
}

func ParseLocationID(s string) (LocationID, error) {
	u, err := parseUUID("location id", s)
	return LocationID(u), err
}

func ParseOfficerID(s string) (OfficerID, error) {
	u, err := parseUUID("officer id", s)
	return OfficerID(u), err
}

// NewWizardID returns a random wizard id.
func NewWizardID() WizardID { return WizardID(uuid.New()) }

func (id PersonID) String() string { return uuid.UUID(id).String() }
func (id WizardID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id LocationID) String() string { return uuid.UUID(id).String() }
func (id OfficerID) String() string { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id WizardID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id LocationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OfficerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id PersonID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *PersonID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id WizardID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *WizardID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ApplicationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id LocationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *LocationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id OfficerID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *OfficerID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
