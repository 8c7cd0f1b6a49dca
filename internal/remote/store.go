package remote

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/and161185/barkcard/internal/model"
)

// ErrNoSession is returned when nothing usable is persisted.
var ErrNoSession = errors.New("no valid session (login required)")

// Session is what survives a client restart.
type Session struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Identity    model.Identity `json:"identity"`
}

// SessionStore persists the session as JSON in a private file.
type SessionStore struct {
	dir string
	now func() time.Time
}

// DefaultConfigDir honours XDG_CONFIG_HOME and falls back to ~/.config/barkcard.
func DefaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "barkcard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "barkcard")
}

// NewSessionStore stores sessions under dir; empty dir means DefaultConfigDir.
func NewSessionStore(dir string) *SessionStore {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &SessionStore{dir: dir, now: time.Now}
}

func (s *SessionStore) path() string { return filepath.Join(s.dir, "session.json") }

// Save writes the session with 0600 permissions.
func (s *SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), b, 0o600)
}

// Load returns the persisted session; a missing, empty or expired one yields ErrNoSession.
func (s *SessionStore) Load() (Session, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, err
	}
	if sess.AccessToken == "" || sess.Identity.UserID == "" || s.now().After(sess.ExpiresAt) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Clear removes the persisted session.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
