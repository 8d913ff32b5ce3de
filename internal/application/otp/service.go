package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/infrastructure/smtp"
	"github.com/flowgatex/identity-api/internal/infrastructure/sns"
	pkgtoken "github.com/flowgatex/identity-api/internal/pkg/token"
)

const codeLength = 6

// SendResult reports a successful send and its expiry window.
type SendResult struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type Service interface {
	Send(ctx context.Context, target string, channel domain.Channel) (*SendResult, error)
	Verify(ctx context.Context, target, code string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.Verification) error
	Get(ctx context.Context, target string) (*domain.Verification, error)
	Delete(ctx context.Context, target string) error
}

type Config struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

type service struct {
	store  verificationStore
	mailer smtp.Mailer
	sms    sns.SMSSender
	cfg    Config
	now    func() time.Time
}

type ServiceDeps struct {
	Store  verificationStore
	Mailer smtp.Mailer
	SMS    sns.SMSSender
	Config Config
	Now    func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:  deps.Store,
		mailer: deps.Mailer,
		sms:    deps.SMS,
		cfg:    deps.Config,
		now:    now,
	}
}

// Send issues a fresh code for the target, replacing any pending one. The
// resend cooldown is measured from the previous issuance regardless of
// whether that code was since consumed or expired.
func (s *service) Send(ctx context.Context, target string, channel domain.Channel) (*SendResult, error) {
	target = normalizeTarget(target)
	if target == "" {
		return nil, fmt.Errorf("target required: %w", domain.ErrBadRequest)
	}
	now := s.now()

	if prev, err := s.store.Get(ctx, target); err == nil {
		elapsed := now.Unix() - prev.IssuedAt
		if wait := int64(s.cfg.ResendCooldown.Seconds()) - elapsed; wait > 0 {
			return nil, fmt.Errorf("resend available in %ds: %w", wait,
				domain.NewError(domain.CodeRateLimited, domain.ErrRateLimited))
		}
	}

	code, err := pkgtoken.NewOTP(codeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	v := &domain.Verification{
		Target:    target,
		Channel:   channel,
		Code:      code,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.cfg.TTL).Unix(),
	}
	if err := s.store.Put(ctx, v); err != nil {
		return nil, err
	}

	expiresIn := int(s.cfg.TTL.Seconds())
	msg := fmt.Sprintf("Your FlowGateX verification code is %s. Valid for %d minutes.", code, expiresIn/60)
	switch channel {
	case domain.ChannelSMS:
		err = s.sms.SendSMS(ctx, target, msg)
	case domain.ChannelEmail:
		err = s.mailer.SendEmail(target, "Your FlowGateX verification code", msg)
	default:
		return nil, fmt.Errorf("unknown channel %q: %w", channel, domain.ErrBadRequest)
	}
	if err != nil {
		// Roll back so the next send is not blocked by the cooldown.
		if delErr := s.store.Delete(ctx, target); delErr != nil {
			slog.Warn("failed to roll back verification after send failure", "target", target, "err", delErr)
		}
		return nil, fmt.Errorf("deliver code: %w", err)
	}

	return &SendResult{
		Message:   fmt.Sprintf("Verification code sent to %s.", target),
		ExpiresIn: expiresIn,
	}, nil
}

// Verify consumes a pending code. Lookup is by target alone, matching how
// codes are issued. Failure modes are distinguishable: absent or past-expiry
// entries report OTP_EXPIRED, mismatches OTP_INVALID, and exceeding the
// attempt budget OTP_MAX_ATTEMPTS. A matching code is deleted before
// returning, so it is accepted exactly once.
func (s *service) Verify(ctx context.Context, target, code string) error {
	target = normalizeTarget(target)

	v, err := s.store.Get(ctx, target)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.CodeOTPExpired, domain.ErrNotFound)
		}
		return err
	}

	if s.now().Unix() > v.ExpiresAt {
		s.evict(ctx, target)
		return domain.NewError(domain.CodeOTPExpired, domain.ErrUnauthorized)
	}

	v.Attempts++
	if v.Attempts > s.cfg.MaxAttempts {
		s.evict(ctx, target)
		return domain.NewError(domain.CodeOTPMaxAttempts, domain.ErrRateLimited)
	}

	if v.Code != code {
		if err := s.store.Put(ctx, v); err != nil {
			slog.Warn("failed to record verification attempt", "target", target, "err", err)
		}
		return domain.NewError(domain.CodeOTPInvalid, domain.ErrUnauthorized)
	}

	s.evict(ctx, target)
	return nil
}

func (s *service) evict(ctx context.Context, target string) {
	if err := s.store.Delete(ctx, target); err != nil {
		slog.Warn("failed to delete verification entry", "target", target, "err", err)
	}
}

func normalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}
