package middleware

import (
	"net/http"
	"pos_backoffice_go/config"
	"pos_backoffice_go/services/i18n"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Default ("es")
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.Supported(lang) {
					lang = i18n.DefaultLang
				}
				setLanguageCookie(c, lang, cfg.IsProduction())
			} else if cookie, err := c.Cookie("lang"); err == nil && i18n.Supported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

// fromAcceptLanguage picks the first supported primary tag, in the order the browser sent them
func fromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		primary := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if i18n.Supported(primary) {
			return primary
		}
	}
	return i18n.DefaultLang
}

// SetLanguageCookie sets the language cookie
func SetLanguageCookie(c echo.Context, lang string) {
	setLanguageCookie(c, lang, isProduction(c))
}

func setLanguageCookie(c echo.Context, lang string, secure bool) {
	cookie := new(http.Cookie)
	cookie.Name = "lang"
	cookie.Value = lang
	cookie.Expires = time.Now().Add(24 * 365 * time.Hour) // 1 year
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	cookie.Secure = secure
	c.SetCookie(cookie)
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return i18n.DefaultLang
}
