// Package store persists the session token and cached user profile across
// process restarts. Every operation opens the database, does its work, and
// closes it again, so a half-finished run never holds the file open.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"budgetbuddy/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyAuthToken   = "auth_token"
	keyUserProfile = "user_profile"
)

// SessionStore is a two-key store on top of a local SQLite database.
// The token is persisted as-is, with no encryption or integrity check.
type SessionStore struct {
	dbPath string
}

func NewSessionStore(dbPath string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StorageError{Op: "init", Err: fmt.Errorf("create state directory: %w", err)}
	}
	if err := runMigrations(dbPath); err != nil {
		return nil, &core.StorageError{Op: "init", Err: err}
	}
	return &SessionStore{dbPath: dbPath}, nil
}

// Load returns the persisted session, or (nil, nil) when none is stored.
// A missing cached profile is not an error; the session then carries a nil
// User to be refreshed from the service.
func (s *SessionStore) Load(ctx context.Context) (*core.Session, error) {
	var session *core.Session

	err := s.withDB(func(db *sql.DB) error {
		token, err := getEntry(ctx, db, keyAuthToken)
		if err != nil {
			return err
		}
		if token == "" {
			return nil
		}

		session = &core.Session{Token: token}

		raw, err := getEntry(ctx, db, keyUserProfile)
		if err != nil {
			return err
		}
		if raw != "" {
			var profile core.UserProfile
			if err := json.Unmarshal([]byte(raw), &profile); err == nil {
				session.User = &profile
			}
		}
		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: err}
	}
	return session, nil
}

// Save writes the session through to disk, replacing whatever was there.
func (s *SessionStore) Save(ctx context.Context, session core.Session) error {
	if session.IsZero() {
		return &core.StorageError{Op: "save", Err: errors.New("refusing to persist empty session")}
	}

	err := s.withDB(func(db *sql.DB) error {
		if err := putEntry(ctx, db, keyAuthToken, session.Token); err != nil {
			return err
		}
		if session.User == nil {
			return deleteEntry(ctx, db, keyUserProfile)
		}
		raw, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		return putEntry(ctx, db, keyUserProfile, string(raw))
	})
	if err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes both entries. Clearing an already-empty store succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	err := s.withDB(func(db *sql.DB) error {
		if err := deleteEntry(ctx, db, keyAuthToken); err != nil {
			return err
		}
		return deleteEntry(ctx, db, keyUserProfile)
	})
	if err != nil {
		return &core.StorageError{Op: "clear", Err: err}
	}
	return nil
}

func (s *SessionStore) withDB(fn func(*sql.DB) error) error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	return fn(db)
}

func getEntry(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM session_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func putEntry(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func deleteEntry(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM session_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
