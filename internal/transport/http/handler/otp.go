package handler

import (
	"encoding/json"
	"net/http"

	"github.com/flowgatex/identity-api/internal/application/otp"
	"github.com/flowgatex/identity-api/internal/domain"
)

// OTPHandler handles one-time-passcode send and verify endpoints.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

type otpRequest struct {
	Target  string `json:"target"`
	Channel string `json:"channel"`
	Code    string `json:"code,omitempty"`
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Target == "" {
		writeError(w, http.StatusBadRequest, "target required")
		return
	}
	channel, err := domain.ParseChannel(req.Channel)
	if err != nil {
		httpError(w, err)
		return
	}
	result, err := h.svc.Send(r.Context(), req.Target, channel)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Target == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "target and code required")
		return
	}
	if _, err := domain.ParseChannel(req.Channel); err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.Verify(r.Context(), req.Target, req.Code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code verified"})
}
