package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	googleinfra "github.com/flowgatex/identity-api/internal/infrastructure/google"
	"github.com/flowgatex/identity-api/internal/pkg/id"
	"github.com/flowgatex/identity-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// authCodeValidity is advisory only; nothing else enforces it.
const authCodeValidity = 24 * time.Hour

// CreateUserResult is the successful registration response body.
type CreateUserResult struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	Message string      `json:"message"`
}

// AuthCodeResult reports an accepted authorization code.
type AuthCodeResult struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service interface {
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*CreateUserResult, error)
	CreateUserWithGoogle(ctx context.Context, idToken string) (*CreateUserResult, error)
	ValidateAuthCode(ctx context.Context, code string, role domain.Role) (*AuthCodeResult, error)
	CreateAuthCode(ctx context.Context, in domain.AuthCodeInput) (*domain.AuthCode, error)
	DeleteAuthCode(ctx context.Context, code string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type authCodeStore interface {
	Get(ctx context.Context, code string) (*domain.AuthCode, error)
	Put(ctx context.Context, ac *domain.AuthCode) error
	Delete(ctx context.Context, code string) error
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*googleinfra.Payload, error)
}

type service struct {
	users     userStore
	authCodes authCodeStore
	google    googleVerifier
	now       func() time.Time
}

type ServiceDeps struct {
	UserStore     userStore
	AuthCodeStore authCodeStore
	Google        googleVerifier // optional; Google signup fails when nil
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:     deps.UserStore,
		authCodes: deps.AuthCodeStore,
		google:    deps.Google,
		now:       now,
	}
}

func (s *service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*CreateUserResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleSuperAdmin {
		return nil, fmt.Errorf("superadmin accounts cannot self-register: %w", domain.ErrForbidden)
	}
	if !req.Consents.Terms {
		return nil, fmt.Errorf("terms consent required: %w", domain.ErrBadRequest)
	}

	if err := validate.DobAt(req.DOB, s.now()); err != nil {
		if errors.Is(err, validate.ErrDOBUnderage) {
			return nil, domain.NewError(domain.CodeDOBUnderage, domain.ErrBadRequest)
		}
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if !validate.PasswordValid(req.Password) {
		return nil, domain.NewError(domain.CodeWeakPassword, domain.ErrBadRequest)
	}

	var phone *string
	if req.Mobile != nil && strings.TrimSpace(*req.Mobile) != "" {
		dial := req.MobileDial
		if dial == "" {
			dial = "+91"
		}
		if err := validate.Mobile(dial, *req.Mobile); err != nil {
			return nil, domain.NewError(domain.CodeInvalidMobile, domain.ErrBadRequest)
		}
		e164 := validate.ToE164(dial, *req.Mobile)
		phone = &e164
	}

	if role.Elevated() {
		if _, err := s.ValidateAuthCode(ctx, req.AuthorizationCode, role); err != nil {
			return nil, err
		}
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.NewError(domain.CodeEmailAlreadyExists, domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	birthday, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return nil, fmt.Errorf("dob must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        strings.ToLower(req.Email),
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		Birthday:     birthday,
		Organization: req.Organization,
		Department:   req.Department,
		Consents:     req.Consents,
		LiveLocation: req.LiveLocation,
		AuthProvider: "local",
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}

	return &CreateUserResult{
		UserID:  u.UserID,
		Email:   u.Email,
		Role:    u.Role,
		Message: "Account created successfully.",
	}, nil
}

// CreateUserWithGoogle registers (or recognizes) an account from a verified
// Google ID token. Google signups are always attendees.
func (s *service) CreateUserWithGoogle(ctx context.Context, idToken string) (*CreateUserResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google signup not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if u, err := s.users.GetByGoogleSub(ctx, payload.Sub); err == nil {
		return &CreateUserResult{UserID: u.UserID, Email: u.Email, Role: u.Role, Message: "Signed up with Google."}, nil
	}
	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return nil, domain.NewError(domain.CodeEmailAlreadyExists, domain.ErrConflict)
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:        id.New(),
		Email:         strings.ToLower(payload.Email),
		Role:          domain.RoleAttendee,
		FirstName:     payload.FirstName,
		LastName:      payload.LastName,
		PhotoURL:      payload.Picture,
		EmailVerified: payload.EmailVerified,
		AuthProvider:  "google",
		GoogleSub:     payload.Sub,
		Enable:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return &CreateUserResult{UserID: u.UserID, Email: u.Email, Role: u.Role, Message: "Signed up with Google."}, nil
}

// ValidateAuthCode checks an authorization code against the code table.
// The code must exist, be enabled, and grant the requested role.
func (s *service) ValidateAuthCode(ctx context.Context, code string, role domain.Role) (*AuthCodeResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, domain.NewError(domain.CodeInvalidAuthCode, domain.ErrUnauthorized)
	}
	entry, err := s.authCodes.Get(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.CodeInvalidAuthCode, domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !entry.Enable {
		return nil, domain.NewError(domain.CodeAuthCodeExpired, domain.ErrUnauthorized)
	}
	if entry.Role != role {
		return nil, domain.NewError(domain.CodeInvalidAuthCode, domain.ErrUnauthorized)
	}
	return &AuthCodeResult{
		Message:   fmt.Sprintf("Authorization code accepted: %s", entry.Label),
		ExpiresAt: s.now().Add(authCodeValidity),
	}, nil
}

// CreateAuthCode registers a new authorization code. Only organizer and admin
// codes make sense; parse enforces the role set.
func (s *service) CreateAuthCode(ctx context.Context, in domain.AuthCodeInput) (*domain.AuthCode, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !role.Elevated() {
		return nil, fmt.Errorf("authorization codes only grant organizer or admin: %w", domain.ErrBadRequest)
	}
	ac := &domain.AuthCode{
		Code:      strings.ToUpper(strings.TrimSpace(in.Code)),
		Role:      role,
		Label:     in.Label,
		Enable:    true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.authCodes.Put(ctx, ac); err != nil {
		return nil, err
	}
	return ac, nil
}

func (s *service) DeleteAuthCode(ctx context.Context, code string) error {
	return s.authCodes.Delete(ctx, strings.ToUpper(strings.TrimSpace(code)))
}
