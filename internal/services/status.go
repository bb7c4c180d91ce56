package services

import (
	"context"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
)

// toggleable lists the collections whose isActive flag admins may flip
var toggleable = map[string]bool{
	models.ApparelsCollection:        true,
	models.CoachesCollection:         true,
	models.ClassesCollection:         true,
	models.MembershipPlansCollection: true,
}

// StatusService flips visibility flags on storefront documents
type StatusService struct {
	store   docstore.Store
	catalog *Catalog
}

func NewStatusService(store docstore.Store, catalog *Catalog) *StatusService {
	return &StatusService{store: store, catalog: catalog}
}

// SetActive sets isActive on collection/id. Only admins may call it.
func (s *StatusService) SetActive(ctx context.Context, claims *auth.Claims, collection, id string, active bool) error {
	if !claims.IsAdmin() {
		return ErrForbidden
	}
	if !toggleable[collection] {
		return NewValidationError("collection", "unknown collection")
	}
	if id == "" {
		return NewValidationError("id", "required")
	}

	err := s.store.Update(ctx, collection, id, map[string]interface{}{
		"isActive":  active,
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	s.catalog.Invalidate(ctx, collection)
	return nil
}

// SoftDelete hides a membership plan for good while keeping it for
// payment history
func (s *StatusService) SoftDelete(ctx context.Context, claims *auth.Claims, planID string) error {
	if !claims.IsAdmin() {
		return ErrForbidden
	}

	err := s.catalog.Plans.Update(ctx, planID, map[string]interface{}{
		"isDeleted": true,
		"isActive":  false,
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	s.catalog.Invalidate(ctx, models.MembershipPlansCollection)
	return nil
}
