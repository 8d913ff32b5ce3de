package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowgatex/identity-api/internal/domain"
)

// SessionStore is the in-memory mock of the sessions table.
type SessionStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Session
	byToken map[string]string // refresh token -> session_id
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:    make(map[string]*domain.Session),
		byToken: make(map[string]string),
	}
}

func (s *SessionStore) Put(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	cp.User = nil
	s.byID[sess.SessionID] = &cp
	s.byToken[sess.RefreshToken] = sess.SessionID
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (s *SessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	sess := s.byID[id]
	if !sess.Enable {
		return nil, fmt.Errorf("session disabled: %w", domain.ErrUnauthorized)
	}
	cp := *sess
	return &cp, nil
}

func (s *SessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	for k, v := range updates {
		switch k {
		case "enable":
			if b, ok := v.(bool); ok {
				sess.Enable = b
			}
		case "refresh_token":
			if t, ok := v.(string); ok {
				delete(s.byToken, sess.RefreshToken)
				sess.RefreshToken = t
				s.byToken[t] = sessionID
			}
		case "refresh_expires_at":
			if e, ok := v.(int64); ok {
				sess.RefreshExpiresAt = e
			}
		}
	}
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return s.Update(ctx, sessionID, map[string]interface{}{
		"refresh_token":      newToken,
		"refresh_expires_at": newExpiry,
	})
}

func (s *SessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.byID {
		if sess.UserID == userID {
			sess.Enable = false
		}
	}
	return nil
}
