package auth

import (
	"context"
	"errors"
)

// Roles carried in the "role" custom claim
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// SessionCookieName is the cookie holding the session credential
const SessionCookieName = "session"

// ErrInvalidSession means the credential is absent, expired or not signed
// by a known key. Callers treat it as unauthenticated.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the decoded identity of a session
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// IsAdmin reports whether the claims carry the admin role
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Verifier decodes and validates a session credential
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Claims, error)
}

func claimsFromMap(uid string, m map[string]interface{}) *Claims {
	c := &Claims{UID: uid}
	if email, ok := m["email"].(string); ok {
		c.Email = email
	}
	if name, ok := m["name"].(string); ok {
		c.Name = name
	}
	if role, ok := m["role"].(string); ok {
		c.Role = role
	}
	return c
}
