// Package client is the Tickify client application core: the session, the
// checklist stores for guest and signed-in use, and the HTTP API client.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionFile = "session.json"

// Session is the client's auth state and UI preferences. It is the only
// place the token is read from or written to.
type Session struct {
	Token       string  `json:"token,omitempty"`
	AccountID   string  `json:"accountId,omitempty"`
	Email       string  `json:"email,omitempty"`
	AccountName *string `json:"accountName,omitempty"`
	DarkMode    bool    `json:"darkMode"`
}

type tokenClaims struct {
	Email       string  `json:"email"`
	AccountName *string `json:"accountName"`
	jwt.RegisteredClaims
}

// Authenticated reports whether the session holds a token that has not
// expired at now. The signature is the server's business; only the payload
// is read here.
func (s *Session) Authenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	claims, err := s.claims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return now.Before(claims.ExpiresAt.Time)
}

func (s *Session) claims() (*tokenClaims, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &claims, nil
}

// SignIn replaces the auth state with the account carried by token.
func (s *Session) SignIn(token string) error {
	next := Session{Token: token, DarkMode: s.DarkMode}
	claims, err := next.claims()
	if err != nil {
		return err
	}
	if claims.Subject == "" {
		return errors.New("token has no subject")
	}
	next.AccountID = claims.Subject
	next.Email = claims.Email
	next.AccountName = claims.AccountName
	*s = next
	return nil
}

// SignOut forgets the account. Tokens are stateless, so nothing is sent to
// the server.
func (s *Session) SignOut() {
	*s = Session{DarkMode: s.DarkMode}
}

// DisplayName is the account name, or the email for a primary account.
func (s *Session) DisplayName() string {
	if s.AccountName != nil {
		return fmt.Sprintf("%s (%s)", *s.AccountName, s.Email)
	}
	return s.Email
}

// SessionStore keeps the session in session.json under the state directory.
type SessionStore struct {
	dir string
	now func() time.Time
}

func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir, now: time.Now}
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, sessionFile)
}

// Load returns the stored session. A missing file is an anonymous session,
// and so is a stored token that has expired.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path(), err)
	}
	if session.Token != "" && !session.Authenticated(s.now()) {
		session.SignOut()
	}
	return &session, nil
}

func (s *SessionStore) Save(session *Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path())
}
