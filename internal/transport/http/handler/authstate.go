package handler

import (
	"net/http"

	"github.com/flowgatex/identity-api/internal/application/bridge"
)

// AuthStateHandler exposes the merged session derived by the bridge. Only
// mounted in mock mode, where the in-process auth hub tracks a single
// signed-in user.
type AuthStateHandler struct {
	bridge *bridge.Bridge
}

func NewAuthStateHandler(b *bridge.Bridge) *AuthStateHandler {
	return &AuthStateHandler{bridge: b}
}

func (h *AuthStateHandler) Current(w http.ResponseWriter, _ *http.Request) {
	s := h.bridge.Current()
	if s == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"signed_in": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"signed_in": true, "session": s})
}
