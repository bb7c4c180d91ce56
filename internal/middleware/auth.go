package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/auth"
)

// Context keys set for downstream handlers
const (
	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
	ContextUserRole  = "userRole"
	ContextClaims    = "claims"
)

// RoleGate runs every request through auth.Decide. The session cookie is
// verified first; a cookie that fails verification is cleared and the
// request continues as anonymous.
func RoleGate(verifier auth.Verifier, policy auth.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := sessionClaims(c, verifier)
			path := c.Request().URL.Path

			decision := auth.Decide(path, claims, policy)
			if claims != nil {
				c.Set(ContextClaims, claims)
				c.Set(ContextUserUID, claims.UID)
				c.Set(ContextUserEmail, claims.Email)
				c.Set(ContextUserName, claims.Name)
				c.Set(ContextUserRole, claims.Role)
			}

			switch decision.Outcome {
			case auth.Allow:
				return next(c)
			case auth.Redirect:
				if isAPIPath(path) && claims == nil {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Please log in to continue."})
				}
				return c.Redirect(http.StatusTemporaryRedirect, decision.Location)
			default:
				log.Printf("gate: %s %s denied (%s)", c.Request().Method, path, decision.State)
				if isAPIPath(path) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "You don't have permission to access this resource."})
				}
				return echo.NewHTTPError(http.StatusForbidden)
			}
		}
	}
}

func sessionClaims(c echo.Context, verifier auth.Verifier) *auth.Claims {
	if verifier == nil {
		return nil
	}
	cookie, err := c.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := verifier.Verify(c.Request().Context(), cookie.Value)
	if err != nil {
		// Invalid session, clear cookie
		ClearSessionCookie(c)
		return nil
	}
	return claims
}

// ClearSessionCookie expires the session cookie on the client
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// ClaimsFrom returns the verified claims of the request, or nil
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ContextClaims).(*auth.Claims)
	return claims
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
