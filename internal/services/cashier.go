package services

import (
	"context"
	"fmt"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
)

// CashierService grants and revokes the cashier role. The claim is the
// source of truth; the cashiers collection only lists current holders.
type CashierService struct {
	roles    auth.RoleManager
	cashiers *docstore.Collection[models.Cashier]
}

func NewCashierService(store docstore.Store, roles auth.RoleManager) *CashierService {
	return &CashierService{
		roles:    roles,
		cashiers: docstore.NewCollection[models.Cashier](store, models.CashiersCollection),
	}
}

// Grant gives uid the cashier role
func (s *CashierService) Grant(ctx context.Context, by *auth.Claims, uid string) (*models.Cashier, error) {
	if !by.IsAdmin() {
		return nil, ErrForbidden
	}
	if s.roles == nil {
		return nil, fmt.Errorf("role management not configured")
	}
	if uid == by.UID {
		return nil, NewValidationError("uid", "admins cannot demote themselves")
	}

	user, err := s.roles.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", uid, err)
	}
	if err := s.roles.SetRole(ctx, uid, auth.RoleCashier); err != nil {
		return nil, fmt.Errorf("grant cashier to %s: %w", uid, err)
	}

	cashier := &models.Cashier{
		UID:       user.UID,
		Email:     user.Email,
		Name:      user.Name,
		GrantedBy: by.UID,
	}
	if err := s.cashiers.Set(ctx, user.UID, cashier); err != nil {
		return nil, err
	}
	return cashier, nil
}

// Revoke removes the cashier role from uid and drops the index record.
// The claim is cleared even when the record is missing, since a partial
// grant can leave the claim without one. Revoking a user without the
// role succeeds.
func (s *CashierService) Revoke(ctx context.Context, by *auth.Claims, uid string) error {
	if !by.IsAdmin() {
		return ErrForbidden
	}
	if s.roles == nil {
		return fmt.Errorf("role management not configured")
	}
	if uid == "" {
		return NewValidationError("uid", "is required")
	}
	if uid == by.UID {
		return NewValidationError("uid", "admins cannot demote themselves")
	}

	user, err := s.roles.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", uid, err)
	}
	if user.Role == auth.RoleAdmin {
		return NewValidationError("uid", "user is an admin, not a cashier")
	}
	if user.Role != "" {
		if err := s.roles.SetRole(ctx, uid, ""); err != nil {
			return fmt.Errorf("revoke cashier from %s: %w", uid, err)
		}
	}
	return s.cashiers.Remove(ctx, uid)
}

// List returns the current cashiers ordered by name
func (s *CashierService) List(ctx context.Context) ([]models.Cashier, error) {
	return s.cashiers.Query(ctx, docstore.Query{OrderBy: "name"})
}
