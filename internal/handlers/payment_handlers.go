package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/services"
)

const defaultPaymentPageSize = 50

// RecordPaymentForm is a payment taken at the front desk
type RecordPaymentForm struct {
	CustomerID    string `json:"customerId" form:"customerId" validate:"required"`
	PlanID        string `json:"planId" form:"planId" validate:"required"`
	Tier          string `json:"tier" form:"tier" validate:"omitempty,oneof=regular student discount"`
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod" validate:"required,oneof=cash gcash card"`
	StartDate     string `json:"startDate" form:"startDate" validate:"omitempty,datetime=2006-01-02"`
}

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ListPayments returns the newest payments, optionally for one customer
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	limit := defaultPaymentPageSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	q := docstore.Query{OrderBy: "createdAt", Desc: true, Limit: limit}
	if customer := c.QueryParam("customerId"); customer != "" {
		q.Filters = append(q.Filters, docstore.Where("customerId", docstore.OpEqual, customer))
	}

	payments, err := h.payments.Payments.Query(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.payments.Payments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// RecordPayment stores a walk-in payment received by the signed-in staff
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	claims, err := claimsOrUnauthorized(c)
	if err != nil {
		return err
	}

	var form RecordPaymentForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	start, err := timeFromForm(form.StartDate)
	if err != nil {
		return services.NewValidationError("startDate", "datetime")
	}

	in := services.RecordPaymentInput{
		CustomerID:    form.CustomerID,
		PlanID:        form.PlanID,
		Tier:          form.Tier,
		PaymentMethod: form.PaymentMethod,
		ReceivedBy:    claims.UID,
	}
	if start != nil {
		in.StartDate = *start
	}

	payment, err := h.payments.Record(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return writeOK(c, payment.ID)
}

// MidtransCallback handles Midtrans HTTP notifications
func (h *PaymentHandler) MidtransCallback(c echo.Context) error {
	var n services.Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if n.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	if err := h.payments.HandleNotification(c.Request().Context(), n); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
