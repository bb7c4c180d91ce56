package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/handlers"
	gymMiddleware "gym_app_echo/internal/middleware"
	"gym_app_echo/internal/services"
)

// Deps are the collaborators the HTTP layer is built from. Optional
// services may be nil; their routes then answer with an error.
type Deps struct {
	Store    docstore.Store
	Verifier auth.Verifier
	Issuer   auth.SessionIssuer
	Roles    auth.RoleManager
	Cache    *services.RedisCache
	KPI      *services.KPIService
	Gateway  services.PaymentGateway
	Images   *services.ImageService

	WebConfig    handlers.FirebaseWebConfig
	AppURL       string
	SecureCookie bool
	AccessLog    bool
}

// New builds the echo instance with every route behind the role gate
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = gymMiddleware.ErrorHandler
	e.Validator = gymMiddleware.NewRequestValidator()

	if d.AccessLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(gymMiddleware.RoleGate(d.Verifier, auth.DefaultPolicy()))

	kpi := d.KPI
	if kpi == nil {
		kpi = services.NewKPIService(d.Store, d.Cache, nil)
	}
	catalog := services.NewCatalog(d.Store, d.Cache)
	status := services.NewStatusService(d.Store, catalog)
	payments := services.NewPaymentService(d.Store, d.Gateway, d.Cache, d.AppURL, kpi.Location())
	cashiers := services.NewCashierService(d.Store, d.Roles)

	authHandler := handlers.NewAuthHandler(d.Issuer, d.Store, d.WebConfig, d.SecureCookie)
	publicHandler := handlers.NewPublicHandler(catalog)
	dashboardHandler := handlers.NewDashboardHandler(kpi)
	paymentHandler := handlers.NewPaymentHandler(payments)
	userHandler := handlers.NewUserHandler(d.Store, payments)
	planHandler := handlers.NewPlanHandler(catalog, status)
	catalogHandler := handlers.NewCatalogHandler(catalog, d.Images)
	adminHandler := handlers.NewAdminHandler(status, cashiers)

	// Public routes
	e.GET("/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)
	e.POST("/payments/midtrans/callback", paymentHandler.MidtransCallback)

	api := e.Group("/api")
	api.GET("/apparels", publicHandler.ListApparels)
	api.GET("/apparels/:id", publicHandler.GetApparel)
	api.GET("/coaches", publicHandler.ListCoaches)
	api.GET("/coaches/:id", publicHandler.GetCoach)
	api.GET("/classes", publicHandler.ListClasses)
	api.GET("/classes/:id", publicHandler.GetClass)
	api.GET("/membership-plans", publicHandler.ListMembershipPlans)
	api.GET("/membership-plans/:id", publicHandler.GetMembershipPlan)

	// Member routes
	account := api.Group("/account")
	account.GET("/profile", userHandler.Profile)
	account.POST("/profile", userHandler.UpdateProfile)
	account.POST("/checkout", userHandler.Checkout)

	// Back office routes
	admin := e.Group("/admin")
	admin.GET("", dashboardHandler.Dashboard)
	admin.GET("/sales/daily", dashboardHandler.SalesDaily)
	admin.GET("/sales/yearly", dashboardHandler.SalesYearly)
	admin.GET("/kpis/:year", dashboardHandler.StoredKPIs)
	admin.POST("/kpis/:year/:month/rollup", dashboardHandler.Rollup)
	admin.GET("/active-customer", dashboardHandler.ActiveCustomers)
	admin.GET("/inactive-customer", dashboardHandler.InactiveCustomers)

	admin.GET("/payments", paymentHandler.ListPayments)
	admin.GET("/payments/:id", paymentHandler.GetPayment)
	admin.POST("/payments", paymentHandler.RecordPayment)

	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.POST("/users/:id/update", userHandler.UpdateUser)

	admin.GET("/membership-plans", planHandler.ListPlans)
	admin.POST("/membership-plans", planHandler.StorePlan)
	admin.POST("/membership-plans/:id/update", planHandler.UpdatePlan)
	admin.POST("/membership-plans/:id/delete", planHandler.DeletePlan)

	admin.GET("/apparels", catalogHandler.ListApparels)
	admin.POST("/apparels", catalogHandler.StoreApparel)
	admin.POST("/apparels/:id/update", catalogHandler.UpdateApparel)
	admin.POST("/apparels/:id/delete", catalogHandler.DeleteApparel)
	admin.POST("/apparels/:id/image", catalogHandler.UploadApparelImage)

	admin.GET("/coaches", catalogHandler.ListCoaches)
	admin.POST("/coaches", catalogHandler.StoreCoach)
	admin.POST("/coaches/:id/update", catalogHandler.UpdateCoach)
	admin.POST("/coaches/:id/delete", catalogHandler.DeleteCoach)
	admin.POST("/coaches/:id/image", catalogHandler.UploadCoachImage)

	admin.GET("/classes", catalogHandler.ListClasses)
	admin.POST("/classes", catalogHandler.StoreClass)
	admin.POST("/classes/:id/update", catalogHandler.UpdateClass)
	admin.POST("/classes/:id/delete", catalogHandler.DeleteClass)

	admin.POST("/status", adminHandler.UpdateStatus)

	admin.GET("/cashiers", adminHandler.ListCashiers)
	admin.POST("/cashiers", adminHandler.GrantCashier)
	admin.POST("/cashiers/:uid/revoke", adminHandler.RevokeCashier)

	// Storefront root lives outside this service
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}
