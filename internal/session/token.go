package session

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Tokens reads the persisted bearer token. It is deliberately separate
// from Store so a real credential scheme can replace the current
// opaque-token arrangement without touching the survey or notification
// layers.
type Tokens struct {
	kv KV
}

// NewTokens builds a token source over local storage.
func NewTokens(kv KV) Tokens {
	return Tokens{kv: kv}
}

// Token returns the stored bearer token, or "" when nobody is logged in.
// Absence is not an error; some endpoints are anonymous.
func (t Tokens) Token() (string, error) {
	value, ok, err := t.kv.Get(tokenKey)
	if err != nil || !ok {
		return "", nil
	}
	return value, nil
}

// Expiry reports the expiry claim when the stored token is a JWT. The
// current backend issues opaque tokens, so callers must treat a false
// result as "no expiry known", not "expired".
func (t Tokens) Expiry() (time.Time, bool) {
	raw, err := t.Token()
	if err != nil || raw == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
