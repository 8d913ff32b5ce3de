package otp

import (
	"context"
	"testing"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- builder ---

type fixture struct {
	svc    Service
	store  *memory.VerificationStore
	mailer *mockMailer
	sms    *mockSMSSender
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewVerificationStore(),
		mailer: &mockMailer{},
		sms:    &mockSMSSender{},
		now:    time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(ServiceDeps{
		Store:  f.store,
		Mailer: f.mailer,
		SMS:    f.sms,
		Config: Config{TTL: 300 * time.Second, ResendCooldown: 60 * time.Second, MaxAttempts: 5},
		Now:    func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) pendingCode(t *testing.T, target string) string {
	t.Helper()
	v, err := f.store.Get(context.Background(), target)
	require.NoError(t, err)
	return v.Code
}

// --- Send ---

func TestSend_Email(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", "user@example.com", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Send(context.Background(), "User@Example.com", domain.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, 300, result.ExpiresIn)

	// Target is normalized before storage.
	code := f.pendingCode(t, "user@example.com")
	assert.Len(t, code, 6)
	f.mailer.AssertExpectations(t)
}

func TestSend_SMS(t *testing.T) {
	f := newFixture(t)
	f.sms.On("SendSMS", mock.Anything, "+919876543210", mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "+919876543210", domain.ChannelSMS)
	require.NoError(t, err)
	f.sms.AssertExpectations(t)
}

func TestSend_ResendCooldown(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)

	f.now = f.now.Add(30 * time.Second)
	_, err = f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeRateLimited, code)

	// Cooldown elapsed: a fresh code replaces the pending one.
	f.now = f.now.Add(31 * time.Second)
	_, err = f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
}

func TestSend_DeliveryFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.Error(t, err)

	// The failed send must not start the cooldown.
	_, err = f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
}

// --- Verify ---

func TestVerify_RoundTripSingleUse(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
	code := f.pendingCode(t, "user@example.com")

	require.NoError(t, f.svc.Verify(context.Background(), "USER@example.com", code))

	// Second use of the same code fails: the entry was consumed.
	err = f.svc.Verify(context.Background(), "user@example.com", code)
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPExpired, got)
}

func TestVerify_CodeIssuedOverSMS(t *testing.T) {
	f := newFixture(t)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "+919876543210", domain.ChannelSMS)
	require.NoError(t, err)
	code := f.pendingCode(t, "+919876543210")

	// Redemption needs only the target and the code, whatever channel
	// delivered it.
	require.NoError(t, f.svc.Verify(context.Background(), "+919876543210", code))
}

func TestVerify_NoPendingCode(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Verify(context.Background(), "nobody@example.com", "123456")
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPExpired, got)
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
	code := f.pendingCode(t, "user@example.com")

	f.now = f.now.Add(301 * time.Second)
	err = f.svc.Verify(context.Background(), "user@example.com", code)
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPExpired, got)

	// The expired entry was evicted, even with the right code.
	_, err = f.store.Get(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerify_Mismatch(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
	code := f.pendingCode(t, "user@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = f.svc.Verify(context.Background(), "user@example.com", wrong)
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPInvalid, got)

	// A mismatch does not consume the code.
	require.NoError(t, f.svc.Verify(context.Background(), "user@example.com", code))
}

func TestVerify_MaxAttempts(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Send(context.Background(), "user@example.com", domain.ChannelEmail)
	require.NoError(t, err)
	code := f.pendingCode(t, "user@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 5; i++ {
		err = f.svc.Verify(context.Background(), "user@example.com", wrong)
		got, ok := domain.CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, domain.CodeOTPInvalid, got)
	}

	// Sixth attempt exceeds the budget and locks the code out, even correct.
	err = f.svc.Verify(context.Background(), "user@example.com", code)
	got, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeOTPMaxAttempts, got)
}
