package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
)

// UserStore is the in-memory mock of the users table. Emails are indexed
// lowercased so the duplicate check is case-insensitive, matching the
// DynamoDB repo. Safe for concurrent use.
type UserStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.User
	byEmail   map[string]string // lowercased email -> user_id
	onProfile func(*domain.Profile)
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// OnProfileChange registers a hook invoked after every write with the user's
// projected profile document. Used in mock mode to feed the profile hub.
func (s *UserStore) OnProfileChange(fn func(*domain.Profile)) {
	s.mu.Lock()
	s.onProfile = fn
	s.mu.Unlock()
}

func (s *UserStore) Put(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	u.Email = strings.ToLower(u.Email)
	cp := *u
	s.byID[u.UserID] = &cp
	s.byEmail[u.Email] = u.UserID
	hook := s.onProfile
	s.mu.Unlock()

	if hook != nil {
		hook(domain.ProfileOf(u))
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *UserStore) GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.GoogleSub == sub {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func (s *UserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	s.mu.Lock()
	u, ok := s.byID[userID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	for k, v := range updates {
		applyUserField(u, k, v)
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	hook := s.onProfile
	s.mu.Unlock()

	if hook != nil {
		hook(domain.ProfileOf(&cp))
	}
	return nil
}

func (s *UserStore) SoftDelete(ctx context.Context, userID string) error {
	return s.Update(ctx, userID, map[string]interface{}{"enable": false})
}

// ScanPage returns enabled users ordered by user_id (ULIDs sort by creation
// time), with the same base64 user_id cursor contract as the DynamoDB repo.
func (s *UserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.byID))
	for id, u := range s.byID {
		if u.Enable {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	sortStrings(ids)
	start := 0
	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		for i, id := range ids {
			if id > after {
				start = i
				break
			}
			start = i + 1
		}
	}

	var users []domain.User
	next := ""
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := start; i < len(ids) && len(users) < int(limit); i++ {
		users = append(users, *s.byID[ids[i]])
		if len(users) == int(limit) && i+1 < len(ids) {
			next = encodeCursor(ids[i])
		}
	}
	return users, next, nil
}

// applyUserField mirrors the DynamoDB partial-update attribute names onto the
// in-memory struct. Unknown fields are ignored, as DynamoDB would simply add
// an attribute the model never reads.
func applyUserField(u *domain.User, field string, value interface{}) {
	switch field {
	case "first_name":
		if v, ok := value.(string); ok {
			u.FirstName = v
		}
	case "last_name":
		if v, ok := value.(string); ok {
			u.LastName = v
		}
	case "phone":
		if v, ok := value.(string); ok {
			u.Phone = &v
		}
	case "gender":
		if v, ok := value.(string); ok {
			u.Gender = v
		}
	case "organization":
		if v, ok := value.(string); ok {
			u.Organization = v
		}
	case "department":
		if v, ok := value.(string); ok {
			u.Department = v
		}
	case "role":
		if v, ok := value.(domain.Role); ok {
			u.Role = v
		}
	case "photo_url":
		if v, ok := value.(string); ok {
			u.PhotoURL = v
		}
	case "password_hash":
		if v, ok := value.(string); ok {
			u.PasswordHash = v
		}
	case "email_verified":
		if v, ok := value.(bool); ok {
			u.EmailVerified = v
		}
	case "enable":
		if v, ok := value.(bool); ok {
			u.Enable = v
		}
	}
}
