package recovery

import (
	"context"
	"fmt"

	"github.com/flowgatex/identity-api/internal/application/otp"
	"github.com/flowgatex/identity-api/internal/application/session"
	"github.com/flowgatex/identity-api/internal/domain"
	"github.com/flowgatex/identity-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// RequestInput asks for a recovery code to be mailed to an account.
type RequestInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetInput redeems a recovery code for a new password.
type ResetInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Service restores access to accounts whose password was forgotten. Request
// mails a one-time code to the account's address; Reset redeems that code,
// stores the new password, and signs the user in.
type Service interface {
	Request(ctx context.Context, in RequestInput) (*otp.SendResult, error)
	Reset(ctx context.Context, in ResetInput) (*session.LoginResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	users    userStore
	otps     otp.Service
	sessions session.Service
}

type ServiceDeps struct {
	UserStore userStore
	OTP       otp.Service
	Sessions  session.Service
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserStore,
		otps:     deps.OTP,
		sessions: deps.Sessions,
	}
}

func (s *service) Request(ctx context.Context, in RequestInput) (*otp.SendResult, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return s.otps.Send(ctx, u.Email, domain.ChannelEmail)
}

func (s *service) Reset(ctx context.Context, in ResetInput) (*session.LoginResult, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if !validate.PasswordValid(in.NewPassword) {
		return nil, domain.NewError(domain.CodeWeakPassword, domain.ErrBadRequest)
	}
	if err := s.otps.Verify(ctx, u.Email, in.Code); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	// Redeeming a mailed code also proves the mailbox is reachable.
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"password_hash":  string(hash),
		"email_verified": true,
	}); err != nil {
		return nil, err
	}

	return s.sessions.Login(ctx, session.LoginRequest{Email: u.Email, Password: in.NewPassword})
}
