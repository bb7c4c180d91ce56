package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

// PublicHandler serves the storefront. Only active documents are visible;
// deleted membership plans never are.
type PublicHandler struct {
	catalog *services.Catalog
}

func NewPublicHandler(catalog *services.Catalog) *PublicHandler {
	return &PublicHandler{catalog: catalog}
}

// CoachView is a coach with the bio rendered to HTML
type CoachView struct {
	models.Coach
	BioHTML string `json:"bioHtml"`
}

func coachView(coach models.Coach) CoachView {
	return CoachView{Coach: coach, BioHTML: renderMarkdown(coach.Bio)}
}

func notFound() error {
	return echo.NewHTTPError(http.StatusNotFound)
}

func (h *PublicHandler) ListApparels(c echo.Context) error {
	items, err := h.catalog.ActiveApparels(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PublicHandler) GetApparel(c echo.Context) error {
	item, err := h.catalog.Apparels.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !item.IsActive {
		return notFound()
	}
	return c.JSON(http.StatusOK, item)
}

func (h *PublicHandler) ListCoaches(c echo.Context) error {
	coaches, err := h.catalog.ActiveCoaches(c.Request().Context())
	if err != nil {
		return err
	}
	views := make([]CoachView, len(coaches))
	for i, coach := range coaches {
		views[i] = coachView(coach)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *PublicHandler) GetCoach(c echo.Context) error {
	coach, err := h.catalog.Coaches.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !coach.IsActive {
		return notFound()
	}
	return c.JSON(http.StatusOK, coachView(*coach))
}

func (h *PublicHandler) ListClasses(c echo.Context) error {
	items, err := h.catalog.ActiveClasses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PublicHandler) GetClass(c echo.Context) error {
	item, err := h.catalog.Classes.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !item.IsActive {
		return notFound()
	}
	return c.JSON(http.StatusOK, item)
}

func (h *PublicHandler) ListMembershipPlans(c echo.Context) error {
	plans, err := h.catalog.ActivePlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *PublicHandler) GetMembershipPlan(c echo.Context) error {
	plan, err := h.catalog.Plans.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !plan.Available() {
		return notFound()
	}
	return c.JSON(http.StatusOK, plan)
}
