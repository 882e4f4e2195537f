package store

import (
	"context"
	"fmt"

	"budgetbuddy/internal/core"
)

// Unavailable is the degraded store used when the real one cannot be
// opened (state directory not creatable, migrations failing). Loads report
// no session, so login and the ledger flows keep working; the session just
// does not survive a restart. Writes fail with a StorageError for the
// caller to log and absorb.
type Unavailable struct {
	reason error
}

func NewUnavailable(reason error) *Unavailable {
	return &Unavailable{reason: reason}
}

func (u *Unavailable) Load(ctx context.Context) (*core.Session, error) {
	return nil, nil
}

func (u *Unavailable) Save(ctx context.Context, session core.Session) error {
	return &core.StorageError{Op: "save", Err: fmt.Errorf("session store unavailable: %w", u.reason)}
}

func (u *Unavailable) Clear(ctx context.Context) error {
	return &core.StorageError{Op: "clear", Err: fmt.Errorf("session store unavailable: %w", u.reason)}
}
