package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/flowgatex/identity-api/internal/domain"
)

// AuthCodeStore is the in-memory mock of the authorization-code table.
type AuthCodeStore struct {
	mu    sync.RWMutex
	codes map[string]*domain.AuthCode
}

func NewAuthCodeStore() *AuthCodeStore {
	return &AuthCodeStore{codes: make(map[string]*domain.AuthCode)}
}

func (s *AuthCodeStore) Put(ctx context.Context, c *domain.AuthCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Code = strings.ToUpper(cp.Code)
	s.codes[cp.Code] = &cp
	return nil
}

func (s *AuthCodeStore) Get(ctx context.Context, code string) (*domain.AuthCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.codes[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("auth code not found: %w", domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *AuthCodeStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, strings.ToUpper(code))
	return nil
}
