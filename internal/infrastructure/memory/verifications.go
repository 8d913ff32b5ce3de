package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowgatex/identity-api/internal/domain"
)

// VerificationStore is the in-memory mock of the verifications table:
// one pending code per target, overwritten on Put. There is no background
// eviction; expiry is detected at verify time, same as the DynamoDB TTL
// contract only guarantees eventual deletion.
type VerificationStore struct {
	mu      sync.Mutex
	entries map[string]*domain.Verification
}

func NewVerificationStore() *VerificationStore {
	return &VerificationStore{entries: make(map[string]*domain.Verification)}
}

func (s *VerificationStore) Put(ctx context.Context, v *domain.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.entries[v.Target] = &cp
	return nil
}

func (s *VerificationStore) Get(ctx context.Context, target string) (*domain.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[target]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (s *VerificationStore) Delete(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, target)
	return nil
}
