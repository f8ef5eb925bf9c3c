package wizard

import (
	"context"

	id "dladmin/pkg/domain"
)

// Store persists wizard sessions between requests. Get and Update return
// sentinel.ErrNotFound for missing or expired sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, wizardID id.WizardID) (*Session, error)
	// Update applies fn atomically. The session passed to fn is a private copy;
	// it is stored only when fn returns nil.
	Update(ctx context.Context, wizardID id.WizardID, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, wizardID id.WizardID) error
}
