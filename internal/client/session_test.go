package client_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, account *domain.Account, ttl time.Duration) string {
	t.Helper()
	token, err := service.NewTokenIssuer("session-test-secret", ttl).Issue(account)
	require.NoError(t, err)
	return token
}

func TestSession_SignIn(t *testing.T) {
	name := "Work"
	account := &domain.Account{ID: uuid.New(), Email: "ana@example.com", AccountName: &name}
	token := issueToken(t, account, time.Hour)

	session := &client.Session{DarkMode: true}
	require.NoError(t, session.SignIn(token))

	assert.Equal(t, account.ID.String(), session.AccountID)
	assert.Equal(t, "ana@example.com", session.Email)
	require.NotNil(t, session.AccountName)
	assert.Equal(t, "Work", *session.AccountName)
	assert.True(t, session.DarkMode)
	assert.True(t, session.Authenticated(time.Now()))
	assert.False(t, session.Authenticated(time.Now().Add(2*time.Hour)))
	assert.Equal(t, "Work (ana@example.com)", session.DisplayName())

	session.SignOut()
	assert.Equal(t, &client.Session{DarkMode: true}, session)
	assert.False(t, session.Authenticated(time.Now()))
}

func TestSession_SignInRejectsGarbage(t *testing.T) {
	session := &client.Session{Email: "keep@example.com"}
	assert.Error(t, session.SignIn("not-a-token"))
	assert.Equal(t, "keep@example.com", session.Email)
}

func TestSessionStore(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Email: "ana@example.com"}

	t.Run("missing file is anonymous", func(t *testing.T) {
		store := client.NewSessionStore(t.TempDir())
		session, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, &client.Session{}, session)
	})

	t.Run("round trip", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested")
		store := client.NewSessionStore(dir)

		session := &client.Session{DarkMode: true}
		require.NoError(t, session.SignIn(issueToken(t, account, time.Hour)))
		require.NoError(t, store.Save(session))

		info, err := os.Stat(filepath.Join(dir, "session.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, session, loaded)
	})

	t.Run("expired token loads as anonymous", func(t *testing.T) {
		store := client.NewSessionStore(t.TempDir())

		session := &client.Session{DarkMode: true}
		require.NoError(t, session.SignIn(issueToken(t, account, time.Millisecond)))
		require.NoError(t, store.Save(session))
		time.Sleep(1100 * time.Millisecond)

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, &client.Session{DarkMode: true}, loaded)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{"), 0o600))

		_, err := client.NewSessionStore(dir).Load()
		assert.Error(t, err)
	})
}
