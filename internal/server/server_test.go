package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

type testApp struct {
	e        *echo.Echo
	store    *docstore.MemoryStore
	keyring  *auth.KeyringVerifier
	sessions map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := docstore.NewMemoryStore()
	keyring, err := auth.NewKeyringVerifier("server-test-key")
	if err != nil {
		t.Fatal(err)
	}

	app := &testApp{
		e: New(Deps{
			Store:    store,
			Verifier: keyring,
			Issuer:   keyring,
			KPI:      services.NewKPIService(store, nil, time.UTC),
		}),
		store:    store,
		keyring:  keyring,
		sessions: make(map[string]*http.Cookie),
	}
	for _, role := range []string{auth.RoleAdmin, auth.RoleCashier, ""} {
		token, err := keyring.Sign(auth.Claims{UID: "uid-" + role, Email: role + "@gym.test", Role: role}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		app.sessions[role] = &http.Cookie{Name: auth.SessionCookieName, Value: token}
	}
	return app
}

// do sends a request as role; "-" sends no session
func (a *testApp) do(method, path, role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie, ok := a.sessions[role]; ok {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestCashierIsSentToActiveCustomers(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/admin", "/admin/sales/daily", "/admin/membership-plans", "/admin/cashiers"} {
		rec := app.do(http.MethodGet, path, auth.RoleCashier, "")
		if rec.Code != http.StatusTemporaryRedirect {
			t.Errorf("GET %s status = %d; want 307", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/active-customer" {
			t.Errorf("GET %s Location = %q; want /admin/active-customer", path, loc)
		}
	}

	rec := app.do(http.MethodPost, "/admin/status", auth.RoleCashier, `{"collection":"apparels","id":"x","isActive":false}`)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("POST /admin/status as cashier status = %d; want 307", rec.Code)
	}

	rec = app.do(http.MethodGet, "/admin/active-customer", auth.RoleCashier, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /admin/active-customer status = %d; want 200", rec.Code)
	}
}

func TestAccessByRole(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		path string
		role string
		code int
	}{
		{"anonymous storefront", "/api/apparels", "-", http.StatusOK},
		{"anonymous back office", "/admin/users", "-", http.StatusTemporaryRedirect},
		{"anonymous account", "/api/account/profile", "-", http.StatusUnauthorized},
		{"member back office", "/admin/users", "", http.StatusForbidden},
		{"cashier users", "/admin/users", auth.RoleCashier, http.StatusOK},
		{"admin yearly", "/admin/sales/yearly?year=2024", auth.RoleAdmin, http.StatusOK},
		{"admin bad year", "/admin/sales/yearly?year=abc", auth.RoleAdmin, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.role, "")
			if rec.Code != tt.code {
				t.Errorf("GET %s status = %d; want %d (%s)", tt.path, rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestDeleteMissingApparelSucceeds(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 2; i++ {
		rec := app.do(http.MethodPost, "/admin/apparels/does-not-exist/delete", auth.RoleAdmin, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("delete #%d status = %d; want 200 (%s)", i, rec.Code, rec.Body.String())
		}
		var body struct {
			Success bool `json:"success"`
		}
		decode(t, rec, &body)
		if !body.Success {
			t.Errorf("delete #%d success = false", i)
		}
	}
}

func TestApparelLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/admin/apparels", auth.RoleAdmin, `{"name":"","price":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d; want 400", rec.Code)
	}
	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &invalid)
	if invalid.Fields["name"] != "required" {
		t.Errorf("fields = %v; want name=required", invalid.Fields)
	}

	rec = app.do(http.MethodPost, "/admin/apparels", auth.RoleAdmin, `{"name":"Gym Shirt","price":450,"isActive":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d (%s)", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)

	var listed []models.Apparel
	decode(t, app.do(http.MethodGet, "/api/apparels", "-", ""), &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("storefront = %+v; want the new shirt", listed)
	}

	rec = app.do(http.MethodPost, "/admin/status", auth.RoleAdmin, `{"collection":"apparels","id":"`+created.ID+`","isActive":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status toggle = %d (%s)", rec.Code, rec.Body.String())
	}

	decode(t, app.do(http.MethodGet, "/api/apparels", "-", ""), &listed)
	if len(listed) != 0 {
		t.Errorf("storefront after deactivate = %+v; want empty", listed)
	}
	if rec := app.do(http.MethodGet, "/api/apparels/"+created.ID, "-", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET inactive apparel status = %d; want 404", rec.Code)
	}

	var all []models.Apparel
	decode(t, app.do(http.MethodGet, "/admin/apparels", auth.RoleAdmin, ""), &all)
	if len(all) != 1 {
		t.Errorf("admin list = %d items; want 1", len(all))
	}

	if rec := app.do(http.MethodPost, "/admin/status", auth.RoleAdmin, `{"collection":"payments","id":"p","isActive":true}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status on payments = %d; want 400", rec.Code)
	}
}

func TestCoachBioRendered(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/admin/coaches", auth.RoleAdmin, `{"name":"Coach Lee","bio":"**Strength** coach <script>x</script>","certifications":["NASM"," "],"isActive":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create coach status = %d (%s)", rec.Code, rec.Body.String())
	}

	var coaches []struct {
		Name           string   `json:"name"`
		BioHTML        string   `json:"bioHtml"`
		Certifications []string `json:"certifications"`
	}
	decode(t, app.do(http.MethodGet, "/api/coaches", "-", ""), &coaches)
	if len(coaches) != 1 {
		t.Fatalf("coaches = %+v", coaches)
	}
	if !strings.Contains(coaches[0].BioHTML, "<strong>Strength</strong>") {
		t.Errorf("bioHtml = %q; want rendered markdown", coaches[0].BioHTML)
	}
	if strings.Contains(coaches[0].BioHTML, "<script>") {
		t.Errorf("bioHtml = %q; raw HTML must not pass through", coaches[0].BioHTML)
	}
	if len(coaches[0].Certifications) != 1 {
		t.Errorf("certifications = %v; want blanks dropped", coaches[0].Certifications)
	}
}

func TestWalkInPaymentShowsAsActiveCustomer(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	users := docstore.NewCollection[models.User](app.store, models.UsersCollection)
	if err := users.Set(ctx, "member-1", &models.User{Name: "Ana", Email: "ana@example.com", Type: models.UserTypeRegular}); err != nil {
		t.Fatal(err)
	}
	rec := app.do(http.MethodPost, "/admin/membership-plans", auth.RoleAdmin, `{"name":"10 Days","duration":10,"priceRegular":500,"planType":"individual","isActive":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create plan status = %d (%s)", rec.Code, rec.Body.String())
	}
	var plan struct {
		ID string `json:"id"`
	}
	decode(t, rec, &plan)

	rec = app.do(http.MethodPost, "/admin/payments", auth.RoleCashier, `{"customerId":"member-1","planId":"`+plan.ID+`","paymentMethod":"cash"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("record payment status = %d (%s)", rec.Code, rec.Body.String())
	}

	var active []services.CustomerStatus
	decode(t, app.do(http.MethodGet, "/admin/active-customer", auth.RoleCashier, ""), &active)
	if len(active) != 1 || active[0].CustomerID != "member-1" || active[0].Name != "Ana" {
		t.Fatalf("active customers = %+v; want Ana", active)
	}
	if !strings.HasPrefix(active[0].RemainingTime, "9 days, 23 hours") && active[0].RemainingTime != "10 days" {
		t.Errorf("RemainingTime = %q; want about 10 days", active[0].RemainingTime)
	}

	var inactive []services.CustomerStatus
	decode(t, app.do(http.MethodGet, "/admin/inactive-customer", auth.RoleCashier, ""), &inactive)
	if len(inactive) != 0 {
		t.Errorf("inactive customers = %+v; want none", inactive)
	}

	var detail struct {
		User     models.User      `json:"user"`
		Payments []models.Payment `json:"payments"`
	}
	decode(t, app.do(http.MethodGet, "/admin/users/member-1", auth.RoleCashier, ""), &detail)
	if !detail.User.IsCustomer || len(detail.Payments) != 1 || detail.Payments[0].ReceivedBy != "uid-cashier" {
		t.Errorf("user detail = %+v", detail)
	}

	// soft deleting the plan keeps the payment and hides the plan
	if rec := app.do(http.MethodPost, "/admin/membership-plans/"+plan.ID+"/delete", auth.RoleAdmin, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete plan status = %d", rec.Code)
	}
	if rec := app.do(http.MethodGet, "/api/membership-plans/"+plan.ID, "-", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted plan status = %d; want 404", rec.Code)
	}
	decode(t, app.do(http.MethodGet, "/admin/active-customer", auth.RoleAdmin, ""), &active)
	if len(active) != 1 {
		t.Errorf("active after plan delete = %d; want 1", len(active))
	}
}

func TestLoginCreatesProfile(t *testing.T) {
	app := newTestApp(t)

	idToken, err := app.keyring.Sign(auth.Claims{UID: "new-user", Email: "new@example.com", Name: "New"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+idToken)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", rec.Code, rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("session cookie = %+v", session)
	}

	app.sessions["new"] = &http.Cookie{Name: auth.SessionCookieName, Value: session.Value}
	var profile struct {
		User models.User `json:"user"`
	}
	decode(t, app.do(http.MethodGet, "/api/account/profile", "new", ""), &profile)
	if profile.User.Email != "new@example.com" || profile.User.Type != models.UserTypeRegular {
		t.Errorf("profile = %+v", profile.User)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d; want 401", rec.Code)
	}
}

func TestDashboardShowsSignedInAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/admin", auth.RoleAdmin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /admin status = %d; want 200", rec.Code)
	}
	var body struct {
		User  string                 `json:"user"`
		Daily map[string]interface{} `json:"daily"`
	}
	decode(t, rec, &body)
	if body.User != "admin@gym.test" {
		t.Errorf("user = %q; want admin@gym.test", body.User)
	}
	if body.Daily == nil {
		t.Error("daily summary missing")
	}
}
