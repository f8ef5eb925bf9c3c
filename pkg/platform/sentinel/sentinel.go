package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: wizard session or cache entry does not exist or has expired
// - ErrConflict: concurrent update lost an optimistic transaction
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
