// Package totp wraps the pquerna/otp primitives behind the app-MFA flow.
// Validation tolerates one time step of clock drift in either direction.
package totp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	otplib "github.com/pquerna/otp/totp"
)

const (
	period = 30
	// skew allows the previous and next time step, absorbing up to 30s of
	// clock drift between server and authenticator app.
	skew = 1
)

// GenerateKey provisions a fresh TOTP secret wrapped in an otpauth key.
func GenerateKey(issuer, accountName string) (*otp.Key, error) {
	return otplib.Generate(otplib.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      period,
	})
}

// KeyFromSecret rebuilds the otpauth key for an already-provisioned secret so
// the same QR can be re-issued without rotating the secret.
func KeyFromSecret(issuer, accountName, secret string) (*otp.Key, error) {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", fmt.Sprintf("%d", period))
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + accountName,
		RawQuery: v.Encode(),
	}
	return otp.NewKeyFromURL(u.String())
}

// ValidateAt reports whether code is a valid 6-digit TOTP for secret within
// ±1 time step of t.
func ValidateAt(code, secret string, t time.Time) bool {
	ok, err := otplib.ValidateCustom(code, secret, t, otplib.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// QRDataURL renders the key's provisioning URI as a PNG QR code wrapped in a
// data URL, ready for direct embedding in an <img> tag.
func QRDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(256, 256)
	if err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode qr png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
