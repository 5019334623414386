package handlers

import (
	"net/http"
	"net/url"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/templates/pages"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPostHandler(t *testing.T) {
	credentials := url.Values{"email": {"a@b.com"}, "password": {"x"}}

	t.Run("Success", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(http.MethodPost, "/login", withForm(credentials))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.JSONEq(t, `{"email":"a@b.com","password":"x"}`, app.upstream.body("/api/login"))

		session := app.session(t)
		require.NotNil(t, session)
		assert.Equal(t, "s1", session.Token)
		assert.Equal(t, "Ana (admin)", session.Label())
		assertToast(t, app, models.NotificationSuccess, "Login exitoso")

		body := app.do(http.MethodGet, "/").Body.String()
		assert.Contains(t, body, "Ana (admin)")
		assert.Contains(t, body, `id="dashboardContent" style="display: block"`)

		var logs []models.AuditLog
		require.NoError(t, app.db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, models.AuditActionLogin, logs[0].Action)
		assert.Equal(t, "Ana", logs[0].UserName)
	})

	t.Run("HTMX", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(http.MethodPost, "/login", withForm(credentials), withHTMX())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	})

	t.Run("JSON", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(http.MethodPost, "/login", withJSON(`{"email":"a@b.com","password":"x"}`))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp models.LoginResponse
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "s1", resp.SessionID)
		assert.Equal(t, "Ana", resp.User.Name)
		assert.Equal(t, "admin", resp.User.Role)
	})

	t.Run("ProfileWithoutName", func(t *testing.T) {
		app := newTestApp(t)
		app.upstream.set("/api/login", http.StatusOK, `{"session_id":"s9","usuario":{"nombre":"","rol":"cajero"}}`)

		rec := app.do(http.MethodPost, "/login", withForm(credentials))
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		session := app.session(t)
		require.NotNil(t, session)
		assert.Equal(t, "s9", session.Token)
		assertToast(t, app, models.NotificationSuccess, "Login exitoso")

		body := app.do(http.MethodGet, "/").Body.String()
		assert.Contains(t, body, `id="dashboardContent" style="display: block"`)
		assert.Contains(t, body, `<span id="userName">cajero</span>`)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		app := newTestApp(t)
		app.upstream.set("/api/login", http.StatusUnauthorized, `{"detail":"Credenciales inválidas"}`)

		rec := app.do(http.MethodPost, "/login", withForm(credentials))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Nil(t, app.session(t))
		assertToast(t, app, models.NotificationError, "Credenciales inválidas")

		var logs []models.AuditLog
		require.NoError(t, app.db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, models.AuditActionLoginFailed, logs[0].Action)
	})

	t.Run("InvalidCredentialsKeepsExistingSession", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t)
		app.upstream.set("/api/login", http.StatusUnauthorized, `{}`)

		app.do(http.MethodPost, "/login", withForm(credentials))
		session := app.session(t)
		require.NotNil(t, session)
		assert.Equal(t, "s1", session.Token)
		assertToast(t, app, models.NotificationError, "Error en login")
	})

	t.Run("InvalidCredentialsJSON", func(t *testing.T) {
		app := newTestApp(t)
		app.upstream.set("/api/login", http.StatusUnauthorized, `{"detail":"Credenciales inválidas"}`)

		rec := app.do(http.MethodPost, "/login", withJSON(`{"email":"a@b.com","password":"x"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"detail":"Credenciales inválidas"}`, rec.Body.String())
	})

	t.Run("ConnectionError", func(t *testing.T) {
		app := newTestApp(t)
		app.upstream.server.Close()

		rec := app.do(http.MethodPost, "/login", withForm(credentials))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Nil(t, app.session(t))
		assertToast(t, app, models.NotificationError, "Error de conexión")
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Run("ClearsSession", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t)

		rec := app.do(http.MethodPost, "/logout")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Nil(t, app.session(t))
		assertToast(t, app, models.NotificationSuccess, "Sesión cerrada")

		body := app.do(http.MethodGet, "/").Body.String()
		assert.Contains(t, body, `<span id="userName">No autenticado</span>`)
		assert.Contains(t, body, `id="loginSection" style="display: block"`)
	})

	t.Run("Idempotent", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t)

		app.do(http.MethodPost, "/logout")
		before := len(app.pending(t))

		rec := app.do(http.MethodPost, "/logout")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Nil(t, app.session(t))
		assert.Len(t, app.pending(t), before)

		var count int64
		app.db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionLogout).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestLoginRateLimited(t *testing.T) {
	credentials := url.Values{"email": {"a@b.com"}, "password": {"x"}}
	limited := func(h *Handler) *middleware.RateLimiter {
		return middleware.NewRateLimiter(middleware.RateLimitConfig{
			Requests: 2,
			Window:   time.Minute,
			OnLimit:  h.LoginRateLimited,
		})
	}

	t.Run("Form", func(t *testing.T) {
		app := newTestAppWithLimiter(t, limited)

		for i := 0; i < 2; i++ {
			rec := app.do(http.MethodPost, "/login", withForm(credentials))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
		}

		rec := app.do(http.MethodPost, "/login", withForm(credentials))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assertToast(t, app, models.NotificationWarning, "Demasiados intentos de inicio de sesión. Espere un minuto.")
	})

	t.Run("JSON", func(t *testing.T) {
		app := newTestAppWithLimiter(t, limited)

		for i := 0; i < 2; i++ {
			app.do(http.MethodPost, "/login", withJSON(`{"email":"a@b.com","password":"x"}`))
		}

		rec := app.do(http.MethodPost, "/login", withJSON(`{"email":"a@b.com","password":"x"}`))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		var body map[string]string
		decodeJSON(t, rec, &body)
		assert.Contains(t, body["detail"], "Demasiados intentos")
	})
}

var csrfValue = regexp.MustCompile(`name="_csrf" type="hidden" value="([^"]+)"`)

// newCSRFTestApp runs the app behind the same CSRF and CSP middleware as the server
func newCSRFTestApp(t *testing.T) (*testApp, *http.Cookie, string) {
	app := newTestApp(t)
	app.e.Use(middleware.CSRF(false), middleware.CSPNonce(pages.HTMXOrigin))

	rec := app.do(http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	body := rec.Body.String()
	m := csrfValue.FindStringSubmatch(body)
	require.Len(t, m, 2, "login form carries no token")
	assert.Equal(t, cookie.Value, m[1])
	assert.Contains(t, body, `hx-headers="{&#34;X-CSRF-Token&#34;:&#34;`+cookie.Value+`&#34;}"`)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://unpkg.com")

	return app, cookie, cookie.Value
}

func TestCSRFProtection(t *testing.T) {
	credentials := url.Values{"email": {"a@b.com"}, "password": {"x"}}

	t.Run("FormField", func(t *testing.T) {
		app, cookie, token := newCSRFTestApp(t)
		form := url.Values{"email": credentials["email"], "password": credentials["password"], "_csrf": {token}}

		rec := app.do(http.MethodPost, "/login", withForm(form), withCookie(cookie))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotNil(t, app.session(t))
	})

	t.Run("HTMXHeader", func(t *testing.T) {
		app, cookie, token := newCSRFTestApp(t)

		rec := app.do(http.MethodPost, "/login", withForm(credentials), withCookie(cookie),
			withHTMX(), withHeader(middleware.CSRFHeader, token))
		assert.NotEqual(t, http.StatusForbidden, rec.Code)
		assert.NotNil(t, app.session(t))
	})

	t.Run("MissingToken", func(t *testing.T) {
		app, cookie, _ := newCSRFTestApp(t)

		rec := app.do(http.MethodPost, "/login", withForm(credentials), withCookie(cookie))
		assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
		assert.Nil(t, app.session(t))
		assert.Empty(t, app.upstream.body("/api/login"))
	})

	t.Run("WrongToken", func(t *testing.T) {
		app, cookie, _ := newCSRFTestApp(t)

		rec := app.do(http.MethodPost, "/login", withForm(credentials), withCookie(cookie),
			withHeader(middleware.CSRFHeader, "forged"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, app.session(t))
	})
}
