package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/flowgatex/identity-api/internal/application/otp"
	"github.com/flowgatex/identity-api/internal/application/session"
	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type stubSigner struct{}

func (stubSigner) Sign(userID string, role domain.Role, sessionID string) (string, error) {
	return "jwt-token", nil
}

type fixture struct {
	svc           Service
	sessionSvc    session.Service
	users         *memory.UserStore
	verifications *memory.VerificationStore
	mailer        *mockMailer
	now           time.Time
}

const oldPassword = "Old-Password-11!"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:         memory.NewUserStore(),
		verifications: memory.NewVerificationStore(),
		mailer:        &mockMailer{},
		now:           time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC),
	}
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:  f.verifications,
		Mailer: f.mailer,
		SMS:    &mockSMSSender{},
		Config: otp.Config{TTL: 300 * time.Second, ResendCooldown: 60 * time.Second, MaxAttempts: 5},
		Now:    func() time.Time { return f.now },
	})
	f.sessionSvc = session.NewService(session.ServiceDeps{
		SessionStore:    memory.NewSessionStore(),
		UserStore:       f.users,
		JWTProvider:     stubSigner{},
		RefreshTokenDur: 7 * 24 * time.Hour,
	})
	f.svc = NewService(ServiceDeps{
		UserStore: f.users,
		OTP:       otpSvc,
		Sessions:  f.sessionSvc,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(oldPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Put(context.Background(), &domain.User{
		UserID:       "u1",
		Email:        "rita@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAttendee,
		FirstName:    "Rita",
		LastName:     "Varma",
		Enable:       true,
	}))
	return f
}

func (f *fixture) mailedCode(t *testing.T, target string) string {
	t.Helper()
	v, err := f.verifications.Get(context.Background(), target)
	require.NoError(t, err)
	return v.Code
}

func TestRequest_MailsCode(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 300, result.ExpiresIn)
	assert.NotEmpty(t, f.mailedCode(t, "rita@example.com"))
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestRequest_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequest_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.users.Put(context.Background(), &domain.User{
		UserID: "u2",
		Email:  "gone@example.com",
		Enable: false,
	}))
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "gone@example.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequest_InvalidEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// A user who forgot their password regains access: request a code, redeem it
// with a new password, and the new credentials work while the old ones stop.
func TestReset_RestoresAccess(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	code := f.mailedCode(t, "rita@example.com")

	result, err := f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "Fresh-Secret-42!",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "u1", result.Session.UserID)

	_, err = f.sessionSvc.Login(context.Background(), session.LoginRequest{Email: "rita@example.com", Password: "Fresh-Secret-42!"})
	require.NoError(t, err)
	_, err = f.sessionSvc.Login(context.Background(), session.LoginRequest{Email: "rita@example.com", Password: oldPassword})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Redeeming the mailed code also proved the mailbox.
	u, err := f.users.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
}

func TestReset_WrongCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	code := f.mailedCode(t, "rita@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        wrong,
		NewPassword: "Fresh-Secret-42!",
	})
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPInvalid, got)

	// The password is untouched.
	_, err = f.sessionSvc.Login(context.Background(), session.LoginRequest{Email: "rita@example.com", Password: oldPassword})
	assert.NoError(t, err)
}

func TestReset_WeakPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	code := f.mailedCode(t, "rita@example.com")

	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "short",
	})
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeWeakPassword, got)

	// The rejection did not consume the code; a strong retry succeeds.
	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "Fresh-Secret-42!",
	})
	assert.NoError(t, err)
}

func TestReset_ExpiredCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	code := f.mailedCode(t, "rita@example.com")

	f.now = f.now.Add(301 * time.Second)
	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "Fresh-Secret-42!",
	})
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPExpired, got)
}

func TestReset_CodeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), RequestInput{Email: "rita@example.com"})
	require.NoError(t, err)
	code := f.mailedCode(t, "rita@example.com")

	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "Fresh-Secret-42!",
	})
	require.NoError(t, err)

	_, err = f.svc.Reset(context.Background(), ResetInput{
		Email:       "rita@example.com",
		Code:        code,
		NewPassword: "Another-Secret-7!",
	})
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPExpired, got)
}
