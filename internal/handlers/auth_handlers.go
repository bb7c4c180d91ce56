package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/middleware"
	"gym_app_echo/internal/models"
)

const sessionLifetime = 5 * 24 * time.Hour

// FirebaseWebConfig is what the sign-in page needs to start the Firebase
// client SDK
type FirebaseWebConfig struct {
	APIKey     string `json:"apiKey"`
	AuthDomain string `json:"authDomain"`
	ProjectID  string `json:"projectId"`
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	issuer       auth.SessionIssuer
	users        *docstore.Collection[models.User]
	webConfig    FirebaseWebConfig
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(issuer auth.SessionIssuer, store docstore.Store, webConfig FirebaseWebConfig, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		issuer:       issuer,
		users:        docstore.NewCollection[models.User](store, models.UsersCollection),
		webConfig:    webConfig,
		secureCookie: secureCookie,
	}
}

// LoginPage returns the Firebase web configuration for the sign-in form
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.webConfig)
}

// HandleLogin exchanges the ID token in the Authorization header (or the
// idToken field) for a session cookie
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if h.issuer == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Authentication not configured",
		})
	}

	idToken := c.FormValue("idToken")
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		idToken = strings.TrimPrefix(authHeader, "Bearer ")
		if idToken == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid authorization format",
			})
		}
	}
	if idToken == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Missing authorization header",
		})
	}

	ctx := c.Request().Context()
	session, claims, err := h.issuer.IssueSession(ctx, idToken, sessionLifetime)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
		}
		return err
	}

	// First sign-in creates the profile document
	exists, err := h.users.Exists(ctx, claims.UID)
	if err != nil {
		return err
	}
	if !exists {
		user := &models.User{Name: claims.Name, Email: claims.Email, Type: models.UserTypeRegular}
		if err := h.users.Set(ctx, claims.UID, user); err != nil {
			return err
		}
		log.Printf("created profile for %s", claims.UID)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session,
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"status":   "success",
		"redirect": auth.DefaultPolicy().Landing(claims.Role),
	})
}

// HandleLogout clears the session cookie
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged out",
	})
}
