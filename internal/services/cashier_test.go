package services

import (
	"context"
	"errors"
	"testing"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
)

type fakeRoles struct {
	users map[string]*auth.UserRecord
	roles map[string]string
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		users: map[string]*auth.UserRecord{
			"admin-1": {UID: "admin-1", Email: "admin@example.com", Name: "Admin"},
			"staff-1": {UID: "staff-1", Email: "staff@example.com", Name: "Staff"},
		},
		roles: map[string]string{"admin-1": auth.RoleAdmin},
	}
}

func (f *fakeRoles) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, errors.New("user not found")
	}
	record := *u
	record.Role = f.roles[uid]
	return &record, nil
}

func (f *fakeRoles) SetRole(ctx context.Context, uid, role string) error {
	if role == "" {
		delete(f.roles, uid)
		return nil
	}
	f.roles[uid] = role
	return nil
}

func TestCashierGrantAndRevoke(t *testing.T) {
	roles := newFakeRoles()
	svc := NewCashierService(docstore.NewMemoryStore(), roles)
	ctx := context.Background()

	cashier, err := svc.Grant(ctx, adminClaims, "staff-1")
	if err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if cashier.Email != "staff@example.com" || cashier.GrantedBy != "admin-1" {
		t.Errorf("Grant() = %+v", cashier)
	}
	if roles.roles["staff-1"] != auth.RoleCashier {
		t.Errorf("role = %q; want cashier", roles.roles["staff-1"])
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UID != "staff-1" {
		t.Errorf("List() = %+v; want staff-1", list)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Revoke(ctx, adminClaims, "staff-1"); err != nil {
			t.Fatalf("Revoke() #%d error = %v", i, err)
		}
	}
	if _, ok := roles.roles["staff-1"]; ok {
		t.Error("cashier role still set after Revoke()")
	}
	list, _ = svc.List(ctx)
	if len(list) != 0 {
		t.Errorf("List() after revoke = %+v; want empty", list)
	}
}

func TestCashierRejects(t *testing.T) {
	svc := NewCashierService(docstore.NewMemoryStore(), newFakeRoles())
	ctx := context.Background()

	if _, err := svc.Grant(ctx, cashierClaims, "staff-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Grant() by cashier error = %v; want ErrForbidden", err)
	}
	if err := svc.Revoke(ctx, cashierClaims, "staff-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Revoke() by cashier error = %v; want ErrForbidden", err)
	}
	var verr *ValidationError
	if _, err := svc.Grant(ctx, adminClaims, "admin-1"); !errors.As(err, &verr) {
		t.Errorf("Grant() to self error = %v; want ValidationError", err)
	}
	if _, err := svc.Grant(ctx, adminClaims, "ghost"); err == nil {
		t.Error("Grant() to unknown user error = nil")
	}
}

func TestCashierRevokeClearsClaimWithoutRecord(t *testing.T) {
	roles := newFakeRoles()
	// a grant that set the claim but failed to write the index record
	roles.roles["staff-1"] = auth.RoleCashier
	svc := NewCashierService(docstore.NewMemoryStore(), roles)

	if err := svc.Revoke(context.Background(), adminClaims, "staff-1"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if role, ok := roles.roles["staff-1"]; ok {
		t.Errorf("staff-1 still holds role %q after Revoke()", role)
	}
}

func TestCashierRevokeKeepsAdmins(t *testing.T) {
	roles := newFakeRoles()
	roles.users["admin-2"] = &auth.UserRecord{UID: "admin-2", Email: "second@example.com"}
	roles.roles["admin-2"] = auth.RoleAdmin
	svc := NewCashierService(docstore.NewMemoryStore(), roles)
	ctx := context.Background()

	tests := []struct {
		name string
		uid  string
	}{
		{"other admin", "admin-2"},
		{"self", "admin-1"},
		{"empty uid", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if err := svc.Revoke(ctx, adminClaims, tt.uid); !errors.As(err, &verr) {
				t.Errorf("Revoke(%q) error = %v; want ValidationError", tt.uid, err)
			}
		})
	}
	if roles.roles["admin-2"] != auth.RoleAdmin || roles.roles["admin-1"] != auth.RoleAdmin {
		t.Errorf("admin roles changed: %v", roles.roles)
	}
}
