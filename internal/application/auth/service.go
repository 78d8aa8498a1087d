// Package auth implements the signup/login/MFA-challenge/token flow. Each
// login attempt is a short-lived state machine: credential check, optional
// challenge issuance, challenge verification, session-token issuance.
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/credit-risk-api/internal/domain"
	"github.com/credit-risk-api/internal/infrastructure/smtp"
	totpinfra "github.com/credit-risk-api/internal/infrastructure/totp"
	"github.com/credit-risk-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult is either an issued token or a pending MFA challenge.
type LoginResult struct {
	Token       string
	User        *domain.User
	MFARequired bool
	MFAType     string
	UserID      string
}

// ProvisionResult carries the scannable QR and the (possibly reused) secret.
type ProvisionResult struct {
	QRCodeURL string
	Secret    string
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (token string, user *domain.User, err error)
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	VerifyChallenge(ctx context.Context, userID, code string) (token string, user *domain.User, err error)
	UpdateMFASettings(ctx context.Context, userID string, enabled bool, mfaType string) (*domain.User, error)
	ProvisionAppMFA(ctx context.Context, userID string) (*ProvisionResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenSigner interface {
	Sign(userID string) (string, error)
}

type service struct {
	userRepo   userStore
	mailer     smtp.Mailer
	signer     tokenSigner
	issuer     string
	masterCode string
	now        func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   smtp.Mailer
	Signer   tokenSigner
	// Issuer labels TOTP provisioning URIs.
	Issuer string
	// MasterCode always passes challenge verification when non-empty.
	MasterCode string
	// Now defaults to time.Now; injectable for TOTP window tests.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:   deps.UserRepo,
		mailer:     deps.Mailer,
		signer:     deps.Signer,
		issuer:     deps.Issuer,
		masterCode: deps.MasterCode,
		now:        now,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (string, *domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return "", nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		// New accounts start with MFA on; an unset mode falls into the
		// email branch at login.
		MFAEnabled: true,
		MFAType:    domain.MFATypeNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return "", nil, err
	}
	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same error whether the account is absent or the password is
		// wrong, to avoid account enumeration.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if u.MFAEnabled {
		switch u.MFAType {
		case domain.MFATypeApp:
			// Secret is pre-provisioned; nothing to generate or send.
			return &LoginResult{MFARequired: true, MFAType: domain.MFATypeApp, UserID: u.UserID}, nil
		default:
			// "email", "none" and unset all take the email challenge.
			code, err := newNumericCode()
			if err != nil {
				return nil, err
			}
			if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"pending_mfa_code": code}); err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Your credit risk analysis verification code is: %s", code)
			if err := s.mailer.SendEmail(u.Email, "Your Verification Code", body); err != nil {
				// Best-effort: the challenge is still pending, the user
				// can retry login to get a fresh code.
				slog.Warn("failed to send MFA code email", "user_id", u.UserID, "err", err)
			}
			return &LoginResult{MFARequired: true, MFAType: domain.MFATypeEmail, UserID: u.UserID}, nil
		}
	}

	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *service) VerifyChallenge(ctx context.Context, userID, code string) (string, *domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("invalid user: %w", domain.ErrUnauthorized)
	}

	override := s.masterCode != "" && code == s.masterCode

	if u.MFAType == domain.MFATypeApp {
		if !override && !totpinfra.ValidateAt(code, u.TOTPSecret, s.now()) {
			return "", nil, fmt.Errorf("invalid authenticator code: %w", domain.ErrUnauthorized)
		}
	} else {
		if !override && (u.PendingMFACode == "" || code != u.PendingMFACode) {
			return "", nil, fmt.Errorf("invalid verification code: %w", domain.ErrUnauthorized)
		}
		if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"pending_mfa_code": ""}); err != nil {
			slog.Warn("failed to clear pending MFA code", "user_id", userID, "err", err)
		}
	}

	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) UpdateMFASettings(ctx context.Context, userID string, enabled bool, mfaType string) (*domain.User, error) {
	updates := map[string]interface{}{"mfa_enabled": enabled}
	if mfaType != "" {
		updates["mfa_type"] = mfaType
	}
	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.Get(ctx, userID)
}

func (s *service) ProvisionAppMFA(ctx context.Context, userID string) (*ProvisionResult, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	if u.TOTPSecret == "" {
		k, err := totpinfra.GenerateKey(s.issuer, u.Email)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"totp_secret": k.Secret()}); err != nil {
			return nil, err
		}
		slog.Info("generated new TOTP secret", "user_id", userID)
		qr, err := totpinfra.QRDataURL(k)
		if err != nil {
			return nil, err
		}
		return &ProvisionResult{QRCodeURL: qr, Secret: k.Secret()}, nil
	}

	// Reuse the existing secret; rotating it would invalidate
	// already-configured authenticator apps.
	k, err := totpinfra.KeyFromSecret(s.issuer, u.Email, u.TOTPSecret)
	if err != nil {
		return nil, err
	}
	qr, err := totpinfra.QRDataURL(k)
	if err != nil {
		return nil, err
	}
	return &ProvisionResult{QRCodeURL: qr, Secret: u.TOTPSecret}, nil
}

func (s *service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, nil
}

// newNumericCode generates a random 6-digit challenge code.
func newNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
