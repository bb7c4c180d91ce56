package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// fakeFirebase issues the session cookie "cookie-{uid}" and rejects it once
// the user's tokens have been revoked
type fakeFirebase struct {
	claims  map[string]map[string]interface{}
	revoked map[string]bool
}

func newFakeFirebase() *fakeFirebase {
	return &fakeFirebase{
		claims: map[string]map[string]interface{}{
			"staff-1": {"role": RoleCashier, "tenant": "main"},
		},
		revoked: map[string]bool{},
	}
}

func (f *fakeFirebase) VerifySessionCookieAndCheckRevoked(ctx context.Context, cookie string) (*fbauth.Token, error) {
	uid := cookie[len("cookie-"):]
	if f.revoked[uid] {
		return nil, errors.New("session cookie has been revoked")
	}
	return &fbauth.Token{UID: uid, Claims: f.claims[uid]}, nil
}

func (f *fakeFirebase) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return &fbauth.Token{UID: idToken, Claims: f.claims[idToken]}, nil
}

func (f *fakeFirebase) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	delete(f.revoked, idToken)
	return "cookie-" + idToken, nil
}

func (f *fakeFirebase) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	claims, ok := f.claims[uid]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &fbauth.UserRecord{
		UserInfo:     &fbauth.UserInfo{UID: uid, Email: uid + "@gym.test", DisplayName: "Staff"},
		CustomClaims: claims,
	}, nil
}

func (f *fakeFirebase) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	f.claims[uid] = claims
	return nil
}

func (f *fakeFirebase) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked[uid] = true
	return nil
}

func TestFirebaseRoleChangeEndsOldSessions(t *testing.T) {
	fb := newFakeFirebase()
	verifier := &FirebaseVerifier{client: fb}
	roles := &FirebaseRoleManager{client: fb}
	ctx := context.Background()

	cookie, claims, err := verifier.IssueSession(ctx, "staff-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueSession() error = %v", err)
	}
	if claims.Role != RoleCashier {
		t.Fatalf("IssueSession() role = %q; want cashier", claims.Role)
	}

	user, err := roles.GetUser(ctx, "staff-1")
	if err != nil || user.Role != RoleCashier || user.Email != "staff-1@gym.test" {
		t.Fatalf("GetUser() = %+v, %v", user, err)
	}

	if err := roles.SetRole(ctx, "staff-1", ""); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if _, ok := fb.claims["staff-1"]["role"]; ok {
		t.Error("role claim still set")
	}
	if fb.claims["staff-1"]["tenant"] != "main" {
		t.Error("unrelated claims were dropped")
	}

	if _, err := verifier.Verify(ctx, cookie); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Verify(old cookie) error = %v; want ErrInvalidSession", err)
	}

	// signing in again yields a session without the role
	cookie, _, err = verifier.IssueSession(ctx, "staff-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := verifier.Verify(ctx, cookie)
	if err != nil {
		t.Fatalf("Verify(new cookie) error = %v", err)
	}
	if fresh.Role != "" {
		t.Errorf("Verify(new cookie) role = %q; want none", fresh.Role)
	}
}
