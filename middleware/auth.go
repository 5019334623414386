package middleware

import (
	"encoding/hex"
	"net/http"
	"pos_backoffice_go/config"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	// ClientCookieName identifies the browser whose session entries are used
	ClientCookieName = "pos_client"
	// ContextKeyClientID is the context key for the browser identity
	ContextKeyClientID = "client_id"
	// ContextKeySession is the context key for the back office session
	ContextKeySession = "session"

	// CSRFHeader carries the CSRF token on htmx requests
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField carries the CSRF token on plain form posts
	CSRFFormField = "_csrf"

	clientCookieMaxAge = 365 * 24 * time.Hour
)

// ClientIdentity makes sure every request carries a browser identity. The cookie holds no
// credential; it only scopes the stored session entries.
func ClientIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(ClientCookieName); err == nil && validClientID(cookie.Value) {
				c.Set(ContextKeyClientID, cookie.Value)
				return next(c)
			}

			clientID, err := services.GenerateClientID()
			if err != nil {
				logrus.WithError(err).Error("failed to generate client id")
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session")
			}

			c.SetCookie(&http.Cookie{
				Name:     ClientCookieName,
				Value:    clientID,
				Path:     "/",
				MaxAge:   int(clientCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   isProduction(c),
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(ContextKeyClientID, clientID)
			return next(c)
		}
	}
}

func validClientID(v string) bool {
	if len(v) != services.ClientIDLength {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}

// RequireSession loads the stored session and rejects the request when there is none
func RequireSession(sessions *services.SessionController) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := sessions.Current(c.Request().Context(), GetClientID(c))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read session")
			}
			if session == nil {
				if c.Request().Header.Get("HX-Request") == "true" {
					c.Response().Header().Set("HX-Redirect", "/")
					return c.NoContent(http.StatusUnauthorized)
				}
				if c.Request().Method == http.MethodGet {
					return c.Redirect(http.StatusSeeOther, "/")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

// GetClientID retrieves the browser identity from context
func GetClientID(c echo.Context) string {
	id, ok := c.Get(ContextKeyClientID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetCurrentSession retrieves the session loaded by RequireSession
func GetCurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// RequestMeta collects the caller details recorded with session events
func RequestMeta(c echo.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// CSRF checks the double-submit token on unsafe requests. The token is read from CSRFHeader
// first, then from CSRFFormField.
func CSRF(secureCookie bool) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:" + CSRFHeader + ",form:" + CSRFFormField,
		CookieSecure:   secureCookie,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
	})
}

// CSRFToken is the token CSRF issued for this request, empty when CSRF did not run
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.IsProduction()
}
