package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHub_PersistsAndRestoresSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	hub := NewAuthHub(path)
	hub.SignedIn(&domain.User{UserID: "u1", Email: "u1@example.com", PasswordHash: "secret"})

	// A new hub reading the same file restores the session synchronously,
	// before any listener registers.
	restored := NewAuthHub(path)
	cur := restored.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "u1", cur.UserID)

	var delivered *domain.User
	unsub := restored.OnAuthStateChanged(func(u *domain.User) { delivered = u })
	defer unsub()
	require.NotNil(t, delivered)
	assert.Equal(t, "u1", delivered.UserID)
}

func TestAuthHub_PasswordHashNeverPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	hub := NewAuthHub(path)
	hub.SignedIn(&domain.User{UserID: "u1", Email: "u1@example.com", PasswordHash: "secret"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestAuthHub_SignedOutRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	hub := NewAuthHub(path)
	hub.SignedIn(&domain.User{UserID: "u1"})
	hub.SignedOut("u1")

	assert.Nil(t, hub.Current())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAuthHub_SignedOutIgnoresMismatchedUser(t *testing.T) {
	hub := NewAuthHub("")
	hub.SignedIn(&domain.User{UserID: "u1"})
	hub.SignedOut("u2")
	require.NotNil(t, hub.Current())
	assert.Equal(t, "u1", hub.Current().UserID)
}

func TestAuthHub_ListenerReceivesTransitions(t *testing.T) {
	hub := NewAuthHub("")
	var got []*domain.User
	unsub := hub.OnAuthStateChanged(func(u *domain.User) { got = append(got, u) })
	defer unsub()

	require.Len(t, got, 1) // immediate delivery of signed-out state
	assert.Nil(t, got[0])

	hub.SignedIn(&domain.User{UserID: "u1"})
	hub.SignedOut("u1")
	require.Len(t, got, 3)
	assert.Equal(t, "u1", got[1].UserID)
	assert.Nil(t, got[2])
}
