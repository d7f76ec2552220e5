package tenant

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the credential presented to the tenant directory.
// An empty or expired token means only the public listing is available.
type Session struct {
	// AccessToken is a JWT bearer token for the directory service.
	AccessToken string
}

// Valid reports whether the session carries a usable credential.
//
// The token is parsed without signature verification - the directory
// service is the verifier; this check only avoids sending a token that
// is structurally broken or already expired.
func (s *Session) Valid() bool {
	return s.ValidAt(time.Now())
}

// ValidAt reports whether the session credential is usable at the given
// instant. Split out from Valid for deterministic testing.
func (s *Session) ValidAt(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, &claims); err != nil {
		return false
	}

	// No expiry claim means the token never expires locally.
	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.After(now)
}
