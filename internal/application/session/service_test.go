package session

import (
	"context"
	"testing"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID string, role domain.Role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type fixture struct {
	svc      Service
	users    *memory.UserStore
	sessions *memory.SessionStore
	authHub  *memory.AuthHub
	jwt      *mockJWTSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserStore(),
		sessions: memory.NewSessionStore(),
		authHub:  memory.NewAuthHub(""),
		jwt:      &mockJWTSigner{},
	}
	f.jwt.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("jwt-token", nil)
	f.svc = NewService(ServiceDeps{
		SessionStore:    f.sessions,
		UserStore:       f.users,
		JWTProvider:     f.jwt,
		Notifier:        f.authHub,
		RefreshTokenDur: 7 * 24 * time.Hour,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("Correct-Horse-9!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Put(context.Background(), &domain.User{
		UserID:       "u1",
		Email:        "u1@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAttendee,
		FirstName:    "Uma",
		LastName:     "One",
		Enable:       true,
	}))
	return f
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "Correct-Horse-9!"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "u1", result.Session.UserID)

	// Login publishes the signed-in user to the auth hub.
	cur := f.authHub.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "u1", cur.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, f.authHub.Current())
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.users.Update(context.Background(), "u1", map[string]interface{}{"enable": false}))
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "Correct-Horse-9!"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogout_DisablesSessionAndSignsOut(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "Correct-Horse-9!"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), result.Session.SessionID))
	assert.Nil(t, f.authHub.Current())

	_, err = f.svc.GetCurrent(context.Background(), result.Session.SessionID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetCurrent_AttachesUser(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "Correct-Horse-9!"})
	require.NoError(t, err)

	sess, err := f.svc.GetCurrent(context.Background(), result.Session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1@example.com", sess.User.Email)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Login(context.Background(), LoginRequest{Email: "u1@example.com", Password: "Correct-Horse-9!"})
	require.NoError(t, err)

	bearer, newToken, err := f.svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", bearer)
	assert.NotEqual(t, result.RefreshToken, newToken)

	// The old token is no longer accepted.
	_, _, err = f.svc.Refresh(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = f.svc.Refresh(context.Background(), newToken)
	assert.NoError(t, err)
}

func TestRefresh_UnknownToken(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Refresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
