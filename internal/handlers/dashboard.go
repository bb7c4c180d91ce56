package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/middleware"
	"gym_app_echo/internal/services"
)

// DashboardHandler serves sales reports and customer lists
type DashboardHandler struct {
	kpi *services.KPIService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(kpi *services.KPIService) *DashboardHandler {
	return &DashboardHandler{kpi: kpi}
}

// Dashboard is the admin landing: today against yesterday
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	summary, err := h.kpi.DailySummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  getStringFromContext(c, middleware.ContextUserEmail),
		"daily": summary,
	})
}

func (h *DashboardHandler) SalesDaily(c echo.Context) error {
	summary, err := h.kpi.DailySummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// SalesYearly returns monthly revenue for ?year=, the current year by default
func (h *DashboardHandler) SalesYearly(c echo.Context) error {
	year := h.kpi.Now().Year()
	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = y
	}

	summary, err := h.kpi.YearlySummary(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// StoredKPIs returns the persisted rollup of a year
func (h *DashboardHandler) StoredKPIs(c echo.Context) error {
	year, err := intParam(c, "year")
	if err != nil {
		return err
	}
	report, err := h.kpi.StoredKPI(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Rollup recomputes the stored KPI documents of one month
func (h *DashboardHandler) Rollup(c echo.Context) error {
	year, err := intParam(c, "year")
	if err != nil {
		return err
	}
	month, err := intParam(c, "month")
	if err != nil {
		return err
	}
	result, err := h.kpi.RollupMonth(c.Request().Context(), year, time.Month(month))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *DashboardHandler) ActiveCustomers(c echo.Context) error {
	rows, err := h.kpi.ActiveCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) InactiveCustomers(c echo.Context) error {
	rows, err := h.kpi.InactiveCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
