package domain

import "time"

// MFA modes accepted on an account.
const (
	MFATypeNone  = "none"
	MFATypeEmail = "email"
	MFATypeApp   = "app"
)

type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	FullName     string `json:"fullName" dynamodbav:"full_name"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	MFAEnabled   bool   `json:"mfaEnabled" dynamodbav:"mfa_enabled"`
	MFAType      string `json:"mfaType" dynamodbav:"mfa_type"` // "none" | "email" | "app"
	// TOTPSecret is set once on first app-MFA provisioning and reused thereafter.
	TOTPSecret string `json:"-" dynamodbav:"totp_secret"`
	// PendingMFACode holds the emailed one-time code between login and verification.
	PendingMFACode string    `json:"-" dynamodbav:"pending_mfa_code"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyMFARequest struct {
	UserID string `json:"userId" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

type UpdateMFARequest struct {
	MFAEnabled bool   `json:"mfaEnabled"`
	MFAType    string `json:"mfaType" validate:"omitempty,oneof=none email app"`
}
