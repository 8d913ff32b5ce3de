package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flowgatex/identity-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper. ErrorCode carries one of
// the fixed machine-readable codes; Error carries the user-facing message.
type MessageEnvelope struct {
	Message   string           `json:"message,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorCode domain.ErrorCode `json:"error_code,omitempty"`
}

// AuthEnvelope wraps login/refresh responses.
type AuthEnvelope struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	User         *domain.User    `json:"user,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session,omitempty"`
	User    *domain.User    `json:"user,omitempty"`
}

// PaginatedUsersEnvelope wraps paginated user list responses.
type PaginatedUsersEnvelope struct {
	Data       []domain.User `json:"data"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError translates a service error into an HTTP response. Errors carrying
// one of the fixed codes surface that code plus its canned user message; bare
// sentinels fall back to their generic status text. Anything unrecognized is
// reported as SERVER_ERROR without leaking internals.
func httpError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if code, ok := domain.CodeOf(err); ok {
		writeJSON(w, status, MessageEnvelope{Error: domain.MessageFor(code), ErrorCode: code})
		return
	}
	if status == http.StatusInternalServerError {
		writeJSON(w, status, MessageEnvelope{
			Error:     domain.MessageFor(domain.CodeServerError),
			ErrorCode: domain.CodeServerError,
		})
		return
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// toSafeUser strips server-side fields before a user record leaves the API.
func toSafeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.GoogleSub = ""
	return &cp
}

// toSafeSession strips the refresh token and nests a safe user copy.
func toSafeSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.RefreshToken = ""
	cp.User = toSafeUser(s.User)
	return &cp
}
