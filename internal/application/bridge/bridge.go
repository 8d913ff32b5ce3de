// Package bridge derives a single application session from two event
// sources: the authentication state stream and the per-user profile
// document stream. The profile subscription is nested inside the auth
// subscription and is replaced on every auth transition.
package bridge

import (
	"log/slog"
	"sync"

	"github.com/flowgatex/identity-api/internal/domain"
)

// Session is the merged view handed to listeners. A signed-out state is
// represented by a nil *Session.
type Session struct {
	UserID        string      `json:"user_id"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"display_name"`
	PhotoURL      string      `json:"photo_url,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Role          domain.Role `json:"role"`
	EmailVerified bool        `json:"email_verified"`
}

// AuthSource delivers the current authenticated user, nil when signed out.
// Subscribing delivers the current state immediately; the returned func
// cancels the subscription.
type AuthSource interface {
	OnAuthStateChanged(cb func(u *domain.User)) func()
}

// ProfileSource delivers the profile document for a user. exists is false
// when no document is present. onError reports a failed watch; the watch
// stays cancelled after an error until replaced.
type ProfileSource interface {
	Watch(userID string, onChange func(p *domain.Profile, exists bool), onError func(err error)) func()
}

type Bridge struct {
	auth     AuthSource
	profiles ProfileSource
	log      *slog.Logger

	mu        sync.Mutex
	unsubAuth func()
	unwatch   func()
	gen       uint64
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
	closed    bool
}

func New(auth AuthSource, profiles ProfileSource, log *slog.Logger) *Bridge {
	return &Bridge{
		auth:      auth,
		profiles:  profiles,
		log:       log,
		listeners: map[int]func(*Session){},
	}
}

// Start subscribes to the auth source. The current auth state is delivered
// synchronously, so Current is valid as soon as Start returns.
func (b *Bridge) Start() {
	unsub := b.auth.OnAuthStateChanged(b.handleAuth)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		unsub()
		return
	}
	b.unsubAuth = unsub
	b.mu.Unlock()
}

// Close cancels the auth subscription and any active profile watch.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	b.gen++
	unsubAuth := b.unsubAuth
	unwatch := b.unwatch
	b.unsubAuth = nil
	b.unwatch = nil
	b.current = nil
	b.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if unsubAuth != nil {
		unsubAuth()
	}
}

// Current returns the latest merged session, nil when signed out.
func (b *Bridge) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// OnSession registers a listener. The current session is delivered
// immediately; the returned func removes the listener.
func (b *Bridge) OnSession(cb func(*Session)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = cb
	cur := b.current
	b.mu.Unlock()

	cb(cur)

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// handleAuth runs on every auth transition. The previous profile watch is
// always cancelled before anything else so deliveries for the old user can
// never reach the new state.
func (b *Bridge) handleAuth(u *domain.User) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	oldWatch := b.unwatch
	b.unwatch = nil
	b.mu.Unlock()

	if oldWatch != nil {
		oldWatch()
	}

	if u == nil {
		b.setSession(gen, nil)
		return
	}

	// Emit a default-role session right away; the watch upgrades it when
	// the profile document arrives.
	b.setSession(gen, sessionFromUser(u, nil, false))

	userID := u.UserID
	unwatch := b.profiles.Watch(userID,
		func(p *domain.Profile, exists bool) {
			b.setSession(gen, sessionFromUser(u, p, exists))
		},
		func(err error) {
			b.log.Warn("profile watch failed, keeping default-role session",
				"user_id", userID, "error", err)
			b.setSession(gen, sessionFromUser(u, nil, false))
		},
	)

	b.mu.Lock()
	if b.gen != gen || b.closed {
		b.mu.Unlock()
		unwatch()
		return
	}
	b.unwatch = unwatch
	b.mu.Unlock()
}

// setSession stores s as the current session and notifies listeners, unless
// a newer auth transition has superseded gen.
func (b *Bridge) setSession(gen uint64, s *Session) {
	b.mu.Lock()
	if b.gen != gen || b.closed {
		b.mu.Unlock()
		return
	}
	b.current = s
	cbs := make([]func(*Session), 0, len(b.listeners))
	for _, cb := range b.listeners {
		cbs = append(cbs, cb)
	}
	b.mu.Unlock()

	for _, cb := range cbs {
		cb(s)
	}
}

// sessionFromUser merges the auth user with an optional profile document.
// The document wins for every field it carries; absent documents yield the
// default attendee role.
func sessionFromUser(u *domain.User, p *domain.Profile, exists bool) *Session {
	s := &Session{
		UserID:        u.UserID,
		Email:         u.Email,
		DisplayName:   u.DisplayName(),
		PhotoURL:      u.PhotoURL,
		Role:          domain.DefaultRole,
		EmailVerified: u.EmailVerified,
	}
	if u.Phone != nil {
		s.Phone = *u.Phone
	}
	if !exists || p == nil {
		return s
	}
	if p.DisplayName != "" {
		s.DisplayName = p.DisplayName
	}
	if p.PhotoURL != "" {
		s.PhotoURL = p.PhotoURL
	}
	if p.Phone != "" {
		s.Phone = p.Phone
	}
	if p.Role.Valid() {
		s.Role = p.Role
	}
	return s
}
