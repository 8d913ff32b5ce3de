package user

import (
	"context"
	"testing"

	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   Service
	users *memory.UserStore
}

const currentPassword = "Old-Password-11!"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{users: memory.NewUserStore()}
	f.svc = NewService(ServiceDeps{
		UserStore:    f.users,
		SessionStore: memory.NewSessionStore(),
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(currentPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Put(context.Background(), &domain.User{
		UserID:       "u1",
		Email:        "dev@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAttendee,
		Enable:       true,
	}))
	return f
}

func (f *fixture) storedHash(t *testing.T, userID string) string {
	t.Helper()
	u, err := f.users.Get(context.Background(), userID)
	require.NoError(t, err)
	return u.PasswordHash
}

func TestChangePassword_Success(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ChangePassword(context.Background(), "u1", currentPassword, "Fresh-Secret-42!")
	require.NoError(t, err)

	hash := f.storedHash(t, "u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Fresh-Secret-42!")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPassword)))
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	f := newFixture(t)
	before := f.storedHash(t, "u1")
	err := f.svc.ChangePassword(context.Background(), "u1", "not-the-password", "Fresh-Secret-42!")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, before, f.storedHash(t, "u1"))
}

func TestChangePassword_WeakNew(t *testing.T) {
	f := newFixture(t)
	before := f.storedHash(t, "u1")
	err := f.svc.ChangePassword(context.Background(), "u1", currentPassword, "short")
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeWeakPassword, got)
	assert.Equal(t, before, f.storedHash(t, "u1"))
}

func TestChangePassword_UnknownUser(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ChangePassword(context.Background(), "ghost", currentPassword, "Fresh-Secret-42!")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
