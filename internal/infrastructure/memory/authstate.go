package memory

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/flowgatex/identity-api/internal/domain"
)

// AuthHub tracks the current signed-in user in mock mode and fans
// authentication-state transitions out to listeners. The current user is
// persisted to a single file so a restart restores the session before any
// listener is registered; the password hash is excluded from the file by the
// User JSON tags.
type AuthHub struct {
	mu        sync.Mutex
	path      string
	current   *domain.User
	listeners map[int]func(*domain.User)
	nextID    int
}

// NewAuthHub creates a hub, synchronously restoring any persisted session
// from path. path may be empty to disable persistence.
func NewAuthHub(path string) *AuthHub {
	h := &AuthHub{
		path:      path,
		listeners: make(map[int]func(*domain.User)),
	}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var u domain.User
			if err := json.Unmarshal(data, &u); err == nil {
				h.current = &u
			} else {
				slog.Warn("failed to parse persisted session", "path", path, "err", err)
			}
		}
	}
	return h
}

// SignedIn replaces the current user and notifies listeners.
func (h *AuthHub) SignedIn(u *domain.User) {
	cp := *u
	h.mu.Lock()
	h.current = &cp
	h.persistLocked()
	cbs := h.snapshotLocked()
	h.mu.Unlock()
	for _, cb := range cbs {
		cb(&cp)
	}
}

// SignedOut clears the current user when it matches userID.
func (h *AuthHub) SignedOut(userID string) {
	h.mu.Lock()
	if h.current == nil || h.current.UserID != userID {
		h.mu.Unlock()
		return
	}
	h.current = nil
	if h.path != "" {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove persisted session", "path", h.path, "err", err)
		}
	}
	cbs := h.snapshotLocked()
	h.mu.Unlock()
	for _, cb := range cbs {
		cb(nil)
	}
}

// Current returns the signed-in user, or nil.
func (h *AuthHub) Current() *domain.User {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	cp := *h.current
	return &cp
}

// OnAuthStateChanged registers a listener and immediately delivers the
// current state to it. The returned func removes the listener.
func (h *AuthHub) OnAuthStateChanged(cb func(*domain.User)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = cb
	current := h.current
	h.mu.Unlock()

	cb(current)

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *AuthHub) persistLocked() {
	if h.path == "" {
		return
	}
	data, err := json.Marshal(h.current)
	if err != nil {
		slog.Warn("failed to serialize session", "err", err)
		return
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		slog.Warn("failed to persist session", "path", h.path, "err", err)
	}
}

func (h *AuthHub) snapshotLocked() []func(*domain.User) {
	cbs := make([]func(*domain.User), 0, len(h.listeners))
	for _, cb := range h.listeners {
		cbs = append(cbs, cb)
	}
	return cbs
}
