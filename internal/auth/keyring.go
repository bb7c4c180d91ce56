package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// KeyringVerifier verifies HS256 session tokens against a set of signing
// keys. The first key signs; every key verifies, so keys can be rotated.
type KeyringVerifier struct {
	keys [][]byte
	now  func() time.Time
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// NewKeyringVerifier builds a verifier from one or more keys
func NewKeyringVerifier(keys ...string) (*KeyringVerifier, error) {
	var ring [][]byte
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			ring = append(ring, []byte(k))
		}
	}
	if len(ring) == 0 {
		return nil, errors.New("at least one signing key is required")
	}
	return &KeyringVerifier{keys: ring, now: time.Now}, nil
}

// ParseKeyList splits a comma separated SESSION_SIGNING_KEYS value
func ParseKeyList(value string) []string {
	var keys []string
	for _, k := range strings.Split(value, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Sign issues a session token for claims valid for ttl
func (v *KeyringVerifier) Sign(c Claims, ttl time.Duration) (string, error) {
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.keys[0])
}

func (v *KeyringVerifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	if credential == "" {
		return nil, ErrInvalidSession
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var lastErr error
	for _, key := range v.keys {
		var sc sessionClaims
		_, err := parser.ParseWithClaims(credential, &sc, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			lastErr = err
			continue
		}
		if sc.Subject == "" {
			return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
		}
		return &Claims{UID: sc.Subject, Email: sc.Email, Name: sc.Name, Role: sc.Role}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidSession, lastErr)
}

// IssueSession exchanges a short-lived keyring token, as printed by
// cmd/mint_session, for a session token valid for expiresIn.
func (v *KeyringVerifier) IssueSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, *Claims, error) {
	claims, err := v.Verify(ctx, idToken)
	if err != nil {
		return "", nil, err
	}
	session, err := v.Sign(*claims, expiresIn)
	if err != nil {
		return "", nil, err
	}
	return session, claims, nil
}
