package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/credit-risk-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenEnvelope wraps responses that issue a session token.
type TokenEnvelope struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// MFAChallengeEnvelope is returned when login leaves a challenge pending.
type MFAChallengeEnvelope struct {
	MFARequired bool   `json:"mfaRequired"`
	UserID      string `json:"userId"`
	MFAType     string `json:"mfaType"`
}

// AnalysisEnvelope carries a scoring result back to the caller.
type AnalysisEnvelope struct {
	EstimatedScore int      `json:"estimatedScore"`
	RiskLevel      string   `json:"riskLevel"`
	Suggestions    []string `json:"suggestions"`
}

// MFASettingsEnvelope echoes updated MFA flags.
type MFASettingsEnvelope struct {
	Message    string `json:"message"`
	MFAEnabled bool   `json:"mfaEnabled"`
	MFAType    string `json:"mfaType"`
}

// ProvisionEnvelope carries TOTP provisioning material.
type ProvisionEnvelope struct {
	QRCodeURL string `json:"qrCodeUrl"`
	Secret    string `json:"secret"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// respondError maps domain sentinel errors onto HTTP status codes. Anything
// unrecognised becomes a 500 with minimal detail.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
