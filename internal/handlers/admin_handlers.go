package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/services"
)

// StatusForm flips the storefront visibility of a document
type StatusForm struct {
	Collection string `json:"collection" form:"collection" validate:"required"`
	ID         string `json:"id" form:"id" validate:"required"`
	IsActive   bool   `json:"isActive" form:"isActive"`
}

type CashierForm struct {
	UID string `json:"uid" form:"uid" validate:"required"`
}

// AdminHandler serves admin-only mutations that are not tied to one
// collection
type AdminHandler struct {
	status   *services.StatusService
	cashiers *services.CashierService
}

func NewAdminHandler(status *services.StatusService, cashiers *services.CashierService) *AdminHandler {
	return &AdminHandler{status: status, cashiers: cashiers}
}

func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	var form StatusForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	if err := h.status.SetActive(c.Request().Context(), claims, form.Collection, form.ID, form.IsActive); err != nil {
		return err
	}
	return writeOK(c, form.ID)
}

func (h *AdminHandler) ListCashiers(c echo.Context) error {
	cashiers, err := h.cashiers.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cashiers)
}

func (h *AdminHandler) GrantCashier(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	var form CashierForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	cashier, err := h.cashiers.Grant(c.Request().Context(), claims, form.UID)
	if err != nil {
		return err
	}
	return writeOK(c, cashier.UID)
}

func (h *AdminHandler) RevokeCashier(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	uid := c.Param("uid")
	if err := h.cashiers.Revoke(c.Request().Context(), claims, uid); err != nil {
		return err
	}
	return writeOK(c, uid)
}
