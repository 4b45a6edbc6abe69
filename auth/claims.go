package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims the client cares about. The token is
// parsed without signature verification: the client does not hold the
// server's signing key, the server re-validates every request anyway.
type Claims struct {
	Subject   string
	Username  string
	Roles     []string
	ExpiresAt time.Time
}

// IsExpired reports whether the token's exp has passed. Tokens without
// exp never expire client-side.
func (c *Claims) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// HasRole reports whether the claims carry the role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseToken extracts claims from a raw access token.
func ParseToken(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, ErrTokenMalformed.Wrap(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if rawRoles, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, role)
			}
		}
	}
	return claims, nil
}
