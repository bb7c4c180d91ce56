package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

// PlanForm is the create and update body of a membership plan
type PlanForm struct {
	Name          string   `json:"name" form:"name" validate:"required,max=120"`
	Description   string   `json:"description" form:"description" validate:"max=2000"`
	Duration      int      `json:"duration" form:"duration" validate:"required,gt=0"`
	PriceRegular  float64  `json:"priceRegular" form:"priceRegular" validate:"gte=0"`
	PriceStudent  *float64 `json:"priceStudent" form:"priceStudent" validate:"omitempty,gte=0"`
	PriceDiscount *float64 `json:"priceDiscount" form:"priceDiscount" validate:"omitempty,gte=0"`
	PlanType      string   `json:"planType" form:"planType" validate:"required,oneof=individual package walk-in"`
	IsActive      bool     `json:"isActive" form:"isActive"`
}

func (f PlanForm) price() models.PlanPrice {
	return models.PlanPrice{Regular: f.PriceRegular, Student: f.PriceStudent, Discount: f.PriceDiscount}
}

type PlanHandler struct {
	catalog *services.Catalog
	status  *services.StatusService
}

func NewPlanHandler(catalog *services.Catalog, status *services.StatusService) *PlanHandler {
	return &PlanHandler{catalog: catalog, status: status}
}

// ListPlans returns every plan that has not been deleted
func (h *PlanHandler) ListPlans(c echo.Context) error {
	plans, err := h.catalog.Plans.Query(c.Request().Context(), docstore.Query{
		Filters: []docstore.Filter{docstore.Where("isDeleted", docstore.OpEqual, false)},
		OrderBy: "name",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

// StorePlan handles the creation of a new plan
func (h *PlanHandler) StorePlan(c echo.Context) error {
	var form PlanForm
	if err := bindForm(c, &form); err != nil {
		return err
	}

	plan := &models.MembershipPlan{
		Name:        form.Name,
		Description: form.Description,
		Duration:    form.Duration,
		Price:       form.price(),
		PlanType:    models.PlanType(form.PlanType),
		IsActive:    form.IsActive,
	}
	ctx := c.Request().Context()
	id, err := h.catalog.Plans.Add(ctx, plan)
	if err != nil {
		return err
	}

	h.catalog.Invalidate(ctx, models.MembershipPlansCollection)
	return writeOK(c, id)
}

// UpdatePlan replaces the editable fields of a plan
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	var form PlanForm
	if err := bindForm(c, &form); err != nil {
		return err
	}

	id := c.Param("id")
	ctx := c.Request().Context()
	err := h.catalog.Plans.Update(ctx, id, map[string]interface{}{
		"name":        form.Name,
		"description": form.Description,
		"duration":    form.Duration,
		"price":       form.price(),
		"planType":    form.PlanType,
		"isActive":    form.IsActive,
		"updatedAt":   docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	h.catalog.Invalidate(ctx, models.MembershipPlansCollection)
	return writeOK(c, id)
}

// DeletePlan hides the plan; payments keep their snapshot
func (h *PlanHandler) DeletePlan(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := h.status.SoftDelete(c.Request().Context(), claims, id); err != nil {
		return err
	}
	return writeOK(c, id)
}
