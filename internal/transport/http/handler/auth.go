package handler

import (
	"encoding/json"
	"net/http"

	"github.com/credit-risk-api/internal/application/auth"
	"github.com/credit-risk-api/internal/domain"
	"github.com/credit-risk-api/internal/pkg/validate"
	"github.com/credit-risk-api/internal/transport/http/middleware"
)

// AuthHandler handles signup, login, MFA and account endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenEnvelope{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	if res.MFARequired {
		writeJSON(w, http.StatusOK, MFAChallengeEnvelope{
			MFARequired: true,
			UserID:      res.UserID,
			MFAType:     res.MFAType,
		})
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: res.Token, User: res.User})
}

func (h *AuthHandler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, user, err := h.svc.VerifyChallenge(r.Context(), req.UserID, req.Code)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: token, User: user})
}

func (h *AuthHandler) UpdateMFA(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.UpdateMFASettings(r.Context(), claims.UserID, req.MFAEnabled, req.MFAType)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MFASettingsEnvelope{
		Message:    "MFA settings updated",
		MFAEnabled: u.MFAEnabled,
		MFAType:    u.MFAType,
	})
}

func (h *AuthHandler) SetupAppMFA(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.svc.ProvisionAppMFA(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProvisionEnvelope{QRCodeURL: res.QRCodeURL, Secret: res.Secret})
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
