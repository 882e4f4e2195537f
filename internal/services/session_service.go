package services

import (
	"context"
	"strings"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"

	"golang.org/x/sync/singleflight"
)

type SessionState string

const (
	StateRestoring       SessionState = "restoring"
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticated   SessionState = "authenticated"
)

// SessionStore persists a session across restarts.
type SessionStore interface {
	Load(ctx context.Context) (*core.Session, error)
	Save(ctx context.Context, session core.Session) error
	Clear(ctx context.Context) error
}

// AuthGateway exchanges credentials for sessions and serves profile calls.
type AuthGateway interface {
	Login(ctx context.Context, identifier, password string) (core.Session, error)
	Signup(ctx context.Context, name, email, password string) (core.Session, error)
	FetchUser(ctx context.Context, token string) (core.UserProfile, error)
	SaveUser(ctx context.Context, token string, profile core.UserProfile) error
}

// SessionService owns the single active session for the running process.
// In-memory state is authoritative; the store is a best-effort cache whose
// failures are logged and absorbed, never propagated to the caller.
type SessionService struct {
	store   SessionStore
	gateway AuthGateway
	logger  *log.Logger

	// Collapses concurrent re-submissions of the same credentials. Keyed by
	// the request payload so distinct attempts never join each other.
	group singleflight.Group

	mu      sync.RWMutex
	state   SessionState
	session core.Session
}

func NewSessionService(store SessionStore, gateway AuthGateway, logger *log.Logger) *SessionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SessionService{
		store:   store,
		gateway: gateway,
		logger:  logger.WithComponent(log.ComponentSession),
		state:   StateRestoring,
	}
}

// Restore loads the persisted session, if any. A store failure is treated
// as "no session": the user just logs in again.
func (s *SessionService) Restore(ctx context.Context) SessionState {
	session, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Session restore failed, continuing unauthenticated",
			log.FieldOperation, log.OpRestore,
			log.FieldError, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session != nil && !session.IsZero() {
		s.session = *session
		s.state = StateAuthenticated
		s.logger.InfoContext(ctx, "Session restored",
			log.FieldOperation, log.OpRestore,
			log.FieldUserName, session.User.DisplayName())
	} else {
		s.state = StateUnauthenticated
	}
	return s.state
}

// Login authenticates and commits the returned session. Concurrent
// duplicate calls while one is in flight join the outstanding request.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (core.Session, error) {
	v, err, _ := s.group.Do(submissionKey("login", identifier, password), func() (any, error) {
		session, err := s.gateway.Login(ctx, identifier, password)
		if err != nil {
			return nil, err
		}
		s.commit(ctx, session)
		return session, nil
	})
	if err != nil {
		return core.Session{}, err
	}
	return v.(core.Session), nil
}

// Signup registers and commits the account's first session. The same
// in-flight guard prevents a double tap from creating two accounts.
func (s *SessionService) Signup(ctx context.Context, name, email, password string) (core.Session, error) {
	v, err, _ := s.group.Do(submissionKey("signup", name, email, password), func() (any, error) {
		session, err := s.gateway.Signup(ctx, name, email, password)
		if err != nil {
			return nil, err
		}
		s.commit(ctx, session)
		return session, nil
	})
	if err != nil {
		return core.Session{}, err
	}
	return v.(core.Session), nil
}

// commit makes the session active and writes it through to the store.
// Persistence is best effort: the in-memory transition stands even when
// the write fails, leaving the store stale until the next login.
func (s *SessionService) commit(ctx context.Context, session core.Session) {
	s.mu.Lock()
	s.session = session
	s.state = StateAuthenticated
	s.mu.Unlock()

	if err := s.store.Save(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist session, it will not survive a restart",
			log.FieldError, err)
	}
}

// Logout drops the session unconditionally. The in-memory clear happens
// even when the store refuses to, because the running process is what
// decides who is logged in.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = core.Session{}
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear persisted session",
			log.FieldOperation, log.OpLogout,
			log.FieldError, err)
	}
	s.logger.InfoContext(ctx, "Logged out", log.FieldOperation, log.OpLogout)
}

// RefreshProfile replaces the cached profile with the authoritative one.
// The token is untouched and the session is not re-entered. All failures
// are absorbed: the cached copy keeps being shown.
func (s *SessionService) RefreshProfile(ctx context.Context) {
	token := s.Token()
	if token == "" {
		return
	}

	profile, err := s.gateway.FetchUser(ctx, token)
	if err != nil {
		s.logger.WarnContext(ctx, "Profile refresh failed, keeping cached copy",
			log.FieldOperation, log.OpRefresh,
			log.FieldError, err)
		return
	}

	s.mu.Lock()
	// The session may have been logged out while the fetch was in flight;
	// a result with no target state is simply dropped.
	if s.state != StateAuthenticated || s.session.Token != token {
		s.mu.Unlock()
		return
	}
	s.session.User = &profile
	updated := s.session
	s.mu.Unlock()

	// Best-effort write-through, outside the lock like commit.
	if err := s.store.Save(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist refreshed profile",
			log.FieldError, err)
	}
}

// UpdateProfile pushes a profile edit to the service and, on success,
// mirrors it into the active session.
func (s *SessionService) UpdateProfile(ctx context.Context, profile core.UserProfile) error {
	token := s.Token()
	if token == "" {
		return &core.ValidationError{Err: core.ErrNotAuthenticated}
	}

	if err := s.gateway.SaveUser(ctx, token, profile); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != StateAuthenticated || s.session.Token != token {
		s.mu.Unlock()
		return nil
	}
	s.session.User = &profile
	updated := s.session
	s.mu.Unlock()

	if err := s.store.Save(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist updated profile",
			log.FieldError, err)
	}
	return nil
}

// submissionKey builds the in-flight guard key from the request fields.
// The separator cannot appear in any field, so two different requests
// never collide.
func submissionKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

// Current returns the active session and whether one exists.
func (s *SessionService) Current() (core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.state == StateAuthenticated
}

// Token returns the active bearer token, or "" for anonymous access.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// State reports where the controller is in its lifecycle.
func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
