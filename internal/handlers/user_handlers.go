package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

// ProfileForm holds the fields a user, or staff on their behalf, may edit
type ProfileForm struct {
	Name        string `json:"name" form:"name" validate:"required,max=120"`
	Sex         string `json:"sex" form:"sex" validate:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"dateOfBirth" form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Type        string `json:"type" form:"type" validate:"omitempty,oneof=regular student senior"`
}

func (f ProfileForm) fields() (map[string]interface{}, error) {
	dob, err := timeFromForm(f.DateOfBirth)
	if err != nil {
		return nil, services.NewValidationError("dateOfBirth", "datetime")
	}
	userType := models.UserType(f.Type)
	if !userType.Valid() {
		userType = models.UserTypeRegular
	}
	return map[string]interface{}{
		"name":        f.Name,
		"sex":         f.Sex,
		"dateOfBirth": dob,
		"type":        string(userType),
		"updatedAt":   docstore.ServerTimestamp,
	}, nil
}

// CheckoutForm starts an online membership purchase
type CheckoutForm struct {
	PlanID string `json:"planId" form:"planId" validate:"required"`
	Tier   string `json:"tier" form:"tier" validate:"omitempty,oneof=regular student discount"`
}

// UserDetail is a user with their payment history, newest first
type UserDetail struct {
	User     models.User      `json:"user"`
	Payments []models.Payment `json:"payments"`
}

type UserHandler struct {
	users    *docstore.Collection[models.User]
	payments *services.PaymentService
}

func NewUserHandler(store docstore.Store, payments *services.PaymentService) *UserHandler {
	return &UserHandler{
		users:    docstore.NewCollection[models.User](store, models.UsersCollection),
		payments: payments,
	}
}

// ListUsers returns all users, or only customers with ?customers=true
func (h *UserHandler) ListUsers(c echo.Context) error {
	q := docstore.Query{OrderBy: "name"}
	if c.QueryParam("customers") == "true" {
		q.Filters = append(q.Filters, docstore.Where("isCustomer", docstore.OpEqual, true))
	}
	users, err := h.users.Query(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) detail(c echo.Context, uid string) (*UserDetail, error) {
	ctx := c.Request().Context()
	user, err := h.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	payments, err := h.payments.Payments.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("customerId", docstore.OpEqual, uid)},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: *user, Payments: payments}, nil
}

func (h *UserHandler) GetUser(c echo.Context) error {
	detail, err := h.detail(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	return h.updateProfile(c, c.Param("id"))
}

func (h *UserHandler) updateProfile(c echo.Context, uid string) error {
	var form ProfileForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	fields, err := form.fields()
	if err != nil {
		return err
	}
	if err := h.users.Update(c.Request().Context(), uid, fields); err != nil {
		return err
	}
	return writeOK(c, uid)
}

// Profile returns the signed-in user's profile and payments
func (h *UserHandler) Profile(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	detail, err := h.detail(c, claims.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	return h.updateProfile(c, claims.UID)
}

// Checkout starts a Midtrans payment for the signed-in user
func (h *UserHandler) Checkout(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}
	var form CheckoutForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	result, err := h.payments.StartCheckout(c.Request().Context(), claims.UID, form.PlanID, form.Tier)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
