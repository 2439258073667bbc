package api

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the bearer token for one dashboard session. It is created
// when the session starts and closed when it ends; a closed credential
// stops sending the Authorization header.
type Credential struct {
	mu      sync.RWMutex
	token   string
	expires time.Time // zero when the token carries no exp claim
	closed  bool
}

// NewCredential wraps token. Opaque tokens are accepted as-is; JWTs have
// their exp claim read (without signature verification) so an expired
// session fails fast instead of round-tripping to the server.
func NewCredential(token string) *Credential {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	return &Credential{token: token, expires: tokenExpiry(token)}
}

// Header returns the Authorization header value, or "" when no token is set.
func (c *Credential) Header(now time.Time) (string, error) {
	if c == nil {
		return "", nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.token == "" {
		return "", nil
	}
	if !c.expires.IsZero() && !now.Before(c.expires) {
		return "", ErrCredentialExpired
	}
	return "Bearer " + c.token, nil
}

// ExpiresAt reports the token's exp claim, if any.
func (c *Credential) ExpiresAt() (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expires, !c.expires.IsZero()
}

// Close ends the session; subsequent requests go out unauthenticated.
func (c *Credential) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.token = ""
	c.mu.Unlock()
}

func tokenExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
