package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type nonceKey struct{}

// ContextKeyNonce is the echo context key holding the script nonce
const ContextKeyNonce = "csp_nonce"

// ContentSecurityPolicy lets scripts run only from self, from scriptOrigins, or with the nonce.
// Widgets are swapped in by htmx, so inline styles stay allowed.
func ContentSecurityPolicy(nonce string, scriptOrigins ...string) string {
	scripts := append([]string{"'self'", "'nonce-" + nonce + "'"}, scriptOrigins...)
	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + strings.Join(scripts, " "),
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"form-action 'self'",
	}, "; ")
}

// CSPNonce issues a fresh nonce per request and sends the matching policy. The page cannot be
// rendered safely without a nonce, so a failure to draw one fails the request.
func CSPNonce(scriptOrigins ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nonce, err := newNonce()
			if err != nil {
				logrus.WithError(err).Error("failed to generate CSP nonce")
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare page")
			}

			c.Set(ContextKeyNonce, nonce)
			c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), nonceKey{}, nonce)))
			c.Response().Header().Set("Content-Security-Policy", ContentSecurityPolicy(nonce, scriptOrigins...))

			return next(c)
		}
	}
}

// Nonce returns the request's script nonce, empty outside CSPNonce
func Nonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}

var randRead = rand.Read

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
