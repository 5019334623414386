package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"pos_backoffice_go/config"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testClientID = "0123456789abcdef0123456789abcdef"

const loginOK = `{"mensaje":"Login exitoso","session_id":"s1","usuario":{"id":1,"nombre":"Ana","rol":"admin","email":"a@b.com"}}`

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	err = testDB.AutoMigrate(&models.StorageEntry{}, &models.Notification{}, &models.AuditLog{})
	require.NoError(t, err)

	return testDB
}

type upstreamResponse struct {
	status int
	body   string
}

// fakeUpstream stands in for the back-office REST API
type fakeUpstream struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]upstreamResponse
	tokens    map[string]string
	queries   map[string]url.Values
	bodies    map[string]string
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	f := &fakeUpstream{
		responses: map[string]upstreamResponse{
			"/api/login":                          {http.StatusOK, loginOK},
			"/api/ventas/consolidado":             {http.StatusOK, `{"total_ventas":3,"monto_total":120.5}`},
			"/api/inventario/alertas":             {http.StatusOK, `[]`},
			"/api/reportes/productos-mas-vendidos": {http.StatusOK, `[]`},
			"/api/ventas":                         {http.StatusCreated, `{"venta_id":7,"total":25}`},
		},
		tokens:  map[string]string{},
		queries: map[string]url.Values{},
		bodies:  map[string]string{},
	}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.tokens[r.URL.Path] = r.Header.Get(services.SessionHeader)
		f.queries[r.URL.Path] = r.URL.Query()
		f.bodies[r.URL.Path] = string(body)
		resp, ok := f.responses[r.URL.Path]
		f.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		io.WriteString(w, resp.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = upstreamResponse{status, body}
}

func (f *fakeUpstream) token(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[path]
}

func (f *fakeUpstream) query(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func (f *fakeUpstream) body(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

type testApp struct {
	e        *echo.Echo
	db       *gorm.DB
	upstream *fakeUpstream
	store    *services.SessionStore
	notifier *services.Notifier
	audit    *services.AuditService
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithLimiter(t, nil)
}

// newTestAppWithLimiter mounts /login behind the limiter built by limiterFor
func newTestAppWithLimiter(t *testing.T, limiterFor func(h *Handler) *middleware.RateLimiter) *testApp {
	testDB := setupTestDB(t)
	upstream := newFakeUpstream(t)

	cfg := &config.Config{Environment: "development", APIBaseURL: upstream.server.URL, APITimeout: 5 * time.Second}
	client, err := services.NewHTTPBackofficeClient(cfg.APIBaseURL, cfg.APITimeout)
	require.NoError(t, err)
	cipher, err := services.NewTokenCipher(strings.Repeat("s", 32))
	require.NoError(t, err)

	store := services.NewSessionStore(testDB, cipher)
	notifier := services.NewNotifier(testDB)
	audit := services.NewAuditService(testDB)
	sessions := services.NewSessionController(store, client, notifier)
	sessions.Subscribe(audit.SessionListener())
	sales := services.NewSaleService(sessions, client, notifier, audit)

	h := New(cfg, sessions, services.NewDashboardLoader(client), notifier, sales, audit)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.ClientIdentity())
	e.Use(middleware.Locale(cfg))
	var limiter *middleware.RateLimiter
	if limiterFor != nil {
		limiter = limiterFor(h)
	}
	h.RegisterRoutes(e, limiter)

	return &testApp{e: e, db: testDB, upstream: upstream, store: store, notifier: notifier, audit: audit}
}

// login stores the canonical test session directly
func (a *testApp) login(t *testing.T) {
	err := a.store.Save(context.Background(), testClientID, &models.Session{
		Token: "s1",
		User:  models.UserProfile{ID: 1, Name: "Ana", Role: "admin", Email: "a@b.com"},
	})
	require.NoError(t, err)
}

type requestOption func(*http.Request)

func withHTMX() requestOption {
	return func(r *http.Request) { r.Header.Set("HX-Request", "true") }
}

func withForm(values url.Values) requestOption {
	return func(r *http.Request) {
		encoded := values.Encode()
		r.Body = io.NopCloser(strings.NewReader(encoded))
		r.ContentLength = int64(len(encoded))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
}

func withJSON(body string) requestOption {
	return func(r *http.Request) {
		r.Body = io.NopCloser(strings.NewReader(body))
		r.ContentLength = int64(len(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
}

func withHeader(name, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func withCookie(cookie *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func (a *testApp) do(method, path string, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.ClientCookieName, Value: testClientID})
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) session(t *testing.T) *models.Session {
	s, err := a.store.Load(context.Background(), testClientID)
	require.NoError(t, err)
	return s
}

func (a *testApp) pending(t *testing.T) []models.Notification {
	var pending []models.Notification
	require.NoError(t, a.db.Where("client_id = ? AND read_at IS NULL", testClientID).Order("created_at ASC").Find(&pending).Error)
	return pending
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func assertToast(t *testing.T, a *testApp, kind models.NotificationKind, message string) {
	t.Helper()
	pending := a.pending(t)
	require.NotEmpty(t, pending)
	last := pending[len(pending)-1]
	assert.Equal(t, kind, last.Kind)
	assert.Equal(t, message, last.Message)
}
