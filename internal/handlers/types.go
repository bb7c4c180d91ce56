package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/middleware"
)

// WriteResponse is the body of every successful write
type WriteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

func writeOK(c echo.Context, id string) error {
	return c.JSON(http.StatusOK, WriteResponse{Success: true, ID: id})
}

// bindForm binds a JSON or form body and runs the registered validator
func bindForm(c echo.Context, form interface{}) error {
	if err := c.Bind(form); err != nil {
		return err
	}
	return c.Validate(form)
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

// claimsOrUnauthorized returns the gate's claims, or a 401 when the
// route was reached without a session
func claimsOrUnauthorized(c echo.Context) (*auth.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized)
	}
	return claims, nil
}

func timeFromForm(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

// mdRenderer escapes raw HTML in its input
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}
