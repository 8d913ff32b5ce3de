package user

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
	s3infra "github.com/flowgatex/identity-api/internal/infrastructure/s3"
	"github.com/flowgatex/identity-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldPhone        = "phone"
	fieldGender       = "gender"
	fieldOrganization = "organization"
	fieldDepartment   = "department"
	fieldRole         = "role"
	fieldEnable       = "enable"
	fieldPhotoURL     = "photo_url"
	fieldPasswordHash = "password_hash"
)

const avatarURLTTL = 24 * time.Hour

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo     userStore
	sessions sessionStore
	avatars  objectStore
}

type ServiceDeps struct {
	UserStore    userStore
	SessionStore sessionStore
	Avatars      objectStore // optional; avatar upload fails when nil
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.UserStore,
		sessions: deps.SessionStore,
		avatars:  deps.Avatars,
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Gender != nil {
		updates[fieldGender] = *req.Gender
	}
	if req.Organization != nil {
		updates[fieldOrganization] = *req.Organization
	}
	if req.Department != nil {
		updates[fieldDepartment] = *req.Department
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		updates[fieldRole] = role
	}
	if req.Enable != nil {
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessions.SoftDeleteByUser(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	if !validate.PasswordValid(newPassword) {
		return domain.NewError(domain.CodeWeakPassword, domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// UploadAvatar stores the image under avatars/{userID}/{filename}, records a
// presigned URL on the user record, and returns that URL.
func (s *service) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if s.avatars == nil {
		return "", fmt.Errorf("avatar storage not configured: %w", domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return "", err
	}
	key := fmt.Sprintf("avatars/%s/%s", userID, filename)
	if _, err := s.avatars.Upload(ctx, key, r, s3infra.ContentTypeFor(filename)); err != nil {
		return "", err
	}
	url, err := s.avatars.PresignedURL(ctx, key, avatarURLTTL)
	if err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldPhotoURL: url}); err != nil {
		return "", err
	}
	return url, nil
}
