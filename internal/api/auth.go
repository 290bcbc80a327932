package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for authentication.
var (
	ErrAuthCookieNotFound = errors.New("auth cookie not found")
	ErrAuthTokenInvalid   = errors.New("auth token invalid")
)

// Cookie configuration.
const (
	AuthCookieName = "uid"          // Generic name, doesn't leak tech stack
	AuthCookieAge  = 30 * 24 * 3600 // 30 days in seconds

	// MinSecretLength is the minimum HMAC secret size for SHA-256 security.
	MinSecretLength = 32
)

// Auth signs and verifies the user-identity cookie.
//
// The cookie value is "base64url(userID).base64url(hmac-sha256(userID))";
// verification recomputes the signature, so there is no server-side session
// state and no lookup on the hot path.
type Auth struct {
	secret []byte
	isDev  bool // When true, Secure cookie flag is disabled for HTTP dev servers
}

// NewAuth creates an Auth with the given HMAC secret.
// The secret must be at least MinSecretLength bytes.
func NewAuth(secret []byte, isDev bool) (*Auth, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("auth secret must be at least 32 bytes")
	}
	return &Auth{secret: secret, isDev: isDev}, nil
}

// UserID extracts and verifies the user ID from the request cookie.
// Returns ErrAuthCookieNotFound if the cookie is missing and
// ErrAuthTokenInvalid if the value is malformed or the signature does not
// match.
func (a *Auth) UserID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrAuthCookieNotFound
	}

	parts := strings.SplitN(cookie.Value, ".", 2)
	if len(parts) != 2 {
		return "", ErrAuthTokenInvalid
	}

	uid, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(uid) == 0 {
		return "", ErrAuthTokenInvalid
	}

	// Constant-time comparison of the recomputed signature.
	expected := a.sign(uid)
	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
		return "", ErrAuthTokenInvalid
	}

	return string(uid), nil
}

// SetCookie issues a signed identity cookie for the given user ID.
func (a *Auth) SetCookie(w http.ResponseWriter, userID string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(userID)) + "." + a.sign([]byte(userID))
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    value,
		Path:     "/",
		Secure:   !a.isDev, // HTTPS only in production; HTTP allowed in dev mode
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   AuthCookieAge,
		Expires:  time.Now().Add(AuthCookieAge * time.Second),
	})
}

func (a *Auth) sign(msg []byte) string {
	h := hmac.New(sha256.New, a.secret)
	h.Write(msg)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
