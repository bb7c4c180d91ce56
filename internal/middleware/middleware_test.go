package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/services"
)

func newGateServer(t *testing.T) (*echo.Echo, *auth.KeyringVerifier) {
	t.Helper()
	verifier, err := auth.NewKeyringVerifier("test-signing-key")
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(RoleGate(verifier, auth.DefaultPolicy()))

	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, fmt.Sprint(c.Get(ContextUserRole)))
	}
	e.GET("/login", ok)
	e.GET("/admin", ok)
	e.GET("/admin/sales/daily", ok)
	e.GET("/admin/payments", ok)
	e.GET("/api/apparels", ok)
	e.GET("/api/account/profile", ok)
	return e, verifier
}

func sessionFor(t *testing.T, v *auth.KeyringVerifier, role string) *http.Cookie {
	t.Helper()
	token, err := v.Sign(auth.Claims{UID: "u-" + role, Email: role + "@example.com", Role: role}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func TestRoleGate(t *testing.T) {
	e, verifier := newGateServer(t)

	tests := []struct {
		name     string
		path     string
		role     string // "-" for anonymous
		code     int
		location string
	}{
		{"anonymous storefront", "/api/apparels", "-", http.StatusOK, ""},
		{"anonymous admin page", "/admin", "-", http.StatusTemporaryRedirect, "/login"},
		{"anonymous account api", "/api/account/profile", "-", http.StatusUnauthorized, ""},
		{"admin sales", "/admin/sales/daily", auth.RoleAdmin, http.StatusOK, ""},
		{"admin on login", "/login", auth.RoleAdmin, http.StatusTemporaryRedirect, "/admin"},
		{"cashier payments", "/admin/payments", auth.RoleCashier, http.StatusOK, ""},
		{"cashier sales", "/admin/sales/daily", auth.RoleCashier, http.StatusTemporaryRedirect, "/admin/active-customer"},
		{"cashier on login", "/login", auth.RoleCashier, http.StatusTemporaryRedirect, "/admin/active-customer"},
		{"member admin", "/admin", "", http.StatusForbidden, ""},
		{"member account", "/api/account/profile", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.role != "-" {
				req.AddCookie(sessionFor(t, verifier, tt.role))
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("%s status = %d; want %d (body %s)", tt.path, rec.Code, tt.code, rec.Body.String())
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q; want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}
}

func TestRoleGateClearsInvalidCookie(t *testing.T) {
	e, _ := newGateServer(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d, Location = %q; want redirect to /login", rec.Code, rec.Header().Get("Location"))
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("invalid session cookie was not cleared")
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		fields bool
	}{
		{"not found", fmt.Errorf("get apparel: %w", docstore.ErrNotFound), http.StatusNotFound, false},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, false},
		{"validation", services.NewValidationError("name", "required"), http.StatusBadRequest, true},
		{"http error", echo.NewHTTPError(http.StatusBadRequest, "invalid year"), http.StatusBadRequest, false},
		{"unknown", fmt.Errorf("firestore: deadline exceeded"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("status = %d; want %d", rec.Code, tt.code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
			if (len(body.Fields) > 0) != tt.fields {
				t.Errorf("fields = %v; want present=%v", body.Fields, tt.fields)
			}
			if tt.code == http.StatusInternalServerError && body.Error != genericErrorMessage {
				t.Errorf("500 message = %q; leaks cause", body.Error)
			}
		})
	}
}

func TestRequestValidator(t *testing.T) {
	type form struct {
		Name  string  `json:"name" validate:"required"`
		Price float64 `json:"price" validate:"gte=0"`
	}

	v := NewRequestValidator()
	if err := v.Validate(&form{Name: "Shirt", Price: 10}); err != nil {
		t.Fatalf("Validate(valid) error = %v", err)
	}

	err := v.Validate(&form{Price: -1})
	code, body := mapError(err)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", code)
	}
	if body.Fields["name"] != "required" || body.Fields["price"] != "gte" {
		t.Errorf("fields = %v; want name=required price=gte", body.Fields)
	}
}
