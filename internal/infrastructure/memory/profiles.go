package memory

import (
	"sync"

	"github.com/flowgatex/identity-api/internal/domain"
)

type profileWatcher struct {
	onChange func(*domain.Profile, bool)
	onError  func(error)
}

// ProfileHub holds profile documents and delivers every change to active
// watchers. A watch is long-lived: it fires once with the current state at
// registration (exists=false when the document has not been written yet) and
// again on every Publish until unsubscribed.
type ProfileHub struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	watchers map[string]map[int]profileWatcher
	nextID   int
}

func NewProfileHub() *ProfileHub {
	return &ProfileHub{
		profiles: make(map[string]*domain.Profile),
		watchers: make(map[string]map[int]profileWatcher),
	}
}

// Publish stores the profile document and notifies that user's watchers.
func (h *ProfileHub) Publish(p *domain.Profile) {
	cp := *p
	h.mu.Lock()
	h.profiles[p.UserID] = &cp
	ws := h.watchersFor(p.UserID)
	h.mu.Unlock()
	for _, w := range ws {
		w.onChange(&cp, true)
	}
}

// Remove deletes the document and notifies watchers with exists=false.
func (h *ProfileHub) Remove(userID string) {
	h.mu.Lock()
	delete(h.profiles, userID)
	ws := h.watchersFor(userID)
	h.mu.Unlock()
	for _, w := range ws {
		w.onChange(nil, false)
	}
}

// Watch subscribes to a user's profile document. The current state is
// delivered synchronously before Watch returns. The returned func cancels
// the subscription.
func (h *ProfileHub) Watch(userID string, onChange func(*domain.Profile, bool), onError func(error)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.watchers[userID] == nil {
		h.watchers[userID] = make(map[int]profileWatcher)
	}
	h.watchers[userID][id] = profileWatcher{onChange: onChange, onError: onError}
	current := h.profiles[userID]
	h.mu.Unlock()

	if current != nil {
		cp := *current
		onChange(&cp, true)
	} else {
		onChange(nil, false)
	}

	return func() {
		h.mu.Lock()
		if ws, ok := h.watchers[userID]; ok {
			delete(ws, id)
			if len(ws) == 0 {
				delete(h.watchers, userID)
			}
		}
		h.mu.Unlock()
	}
}

func (h *ProfileHub) watchersFor(userID string) []profileWatcher {
	ws := make([]profileWatcher, 0, len(h.watchers[userID]))
	for _, w := range h.watchers[userID] {
		ws = append(ws, w)
	}
	return ws
}
