package auth

import (
	"context"
	"fmt"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// firebaseClient is the part of the Firebase auth client used here
type firebaseClient interface {
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*fbauth.Token, error)
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseVerifier verifies Firebase session cookies
type FirebaseVerifier struct {
	client firebaseClient
}

// NewFirebaseVerifier wraps a Firebase auth client
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify rejects cookies issued before the user's tokens were revoked,
// so a role change takes effect on the next request
func (v *FirebaseVerifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	if credential == "" {
		return nil, ErrInvalidSession
	}
	token, err := v.client.VerifySessionCookieAndCheckRevoked(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claimsFromMap(token.UID, token.Claims), nil
}

// UserRecord is the identity-provider view of an account
type UserRecord struct {
	UID   string
	Email string
	Name  string
	Role  string
}

// RoleManager changes the role claim of an account
type RoleManager interface {
	GetUser(ctx context.Context, uid string) (*UserRecord, error)
	// SetRole sets the role claim; an empty role removes it.
	SetRole(ctx context.Context, uid, role string) error
}

// FirebaseRoleManager manages role claims through Firebase custom claims
type FirebaseRoleManager struct {
	client firebaseClient
}

// NewFirebaseRoleManager wraps a Firebase auth client
func NewFirebaseRoleManager(client *fbauth.Client) *FirebaseRoleManager {
	return &FirebaseRoleManager{client: client}
}

func (m *FirebaseRoleManager) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	user, err := m.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	record := &UserRecord{UID: user.UID, Email: user.Email, Name: user.DisplayName}
	if role, ok := user.CustomClaims["role"].(string); ok {
		record.Role = role
	}
	return record, nil
}

// SetRole writes the role claim and revokes the user's refresh tokens.
// Existing session cookies still carry the old role, so they must fail
// the revocation check in Verify.
func (m *FirebaseRoleManager) SetRole(ctx context.Context, uid, role string) error {
	user, err := m.client.GetUser(ctx, uid)
	if err != nil {
		return err
	}

	// Keep unrelated custom claims intact
	claims := make(map[string]interface{}, len(user.CustomClaims)+1)
	for k, v := range user.CustomClaims {
		claims[k] = v
	}
	if role == "" {
		delete(claims, "role")
	} else {
		claims["role"] = role
	}
	if err := m.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return err
	}
	if err := m.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", uid, err)
	}
	return nil
}

// SessionIssuer exchanges a sign-in ID token for a session cookie value
type SessionIssuer interface {
	IssueSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, *Claims, error)
}

// IssueSession verifies the ID token and mints a Firebase session cookie
func (v *FirebaseVerifier) IssueSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, *Claims, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	cookie, err := v.client.SessionCookie(ctx, idToken, expiresIn)
	if err != nil {
		return "", nil, err
	}
	return cookie, claimsFromMap(token.UID, token.Claims), nil
}
