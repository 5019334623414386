package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"pos_backoffice_go/models"
	"strings"
	"time"
)

// SessionHeader carries the back-office token on every authenticated call
const SessionHeader = "session-id"

// ErrConnection marks failures where the back office never answered
var ErrConnection = errors.New("back office unreachable")

// APIError is a non-2xx answer from the back office
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("back office returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("back office returned %d", e.StatusCode)
}

// IsUnauthorized reports whether the back office rejected the token or credentials
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// BackofficeClient is the set of REST calls the dashboard makes
type BackofficeClient interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SalesSummary(ctx context.Context, token string) (*models.SalesSummary, error)
	InventoryAlerts(ctx context.Context, token string) ([]models.InventoryAlert, error)
	TopProducts(ctx context.Context, token string, period models.ReportPeriod) (*models.TopProductsReport, error)
	RegisterSale(ctx context.Context, token string, sale json.RawMessage) (map[string]any, error)
}

// HTTPBackofficeClient talks to the back office over its JSON REST API
type HTTPBackofficeClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewHTTPBackofficeClient builds a client for the API rooted at baseURL
func NewHTTPBackofficeClient(baseURL string, timeout time.Duration) (*HTTPBackofficeClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid back office URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid back office URL %q: scheme and host are required", baseURL)
	}

	return &HTTPBackofficeClient{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Login exchanges credentials for a session
func (c *HTTPBackofficeClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("login response has no session_id")
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login response has no usuario")
	}

	return &models.Session{Token: resp.SessionID, User: *resp.User}, nil
}

// SalesSummary fetches today's consolidated sales
func (c *HTTPBackofficeClient) SalesSummary(ctx context.Context, token string) (*models.SalesSummary, error) {
	var summary models.SalesSummary
	if err := c.do(ctx, http.MethodGet, "/api/ventas/consolidado", token, nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// InventoryAlerts fetches the under-stocked products
func (c *HTTPBackofficeClient) InventoryAlerts(ctx context.Context, token string) ([]models.InventoryAlert, error) {
	var alerts []models.InventoryAlert
	if err := c.do(ctx, http.MethodGet, "/api/inventario/alertas", token, nil, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// TopProducts fetches the best sellers ranking for the given period
func (c *HTTPBackofficeClient) TopProducts(ctx context.Context, token string, period models.ReportPeriod) (*models.TopProductsReport, error) {
	query := url.Values{}
	if period.From != "" {
		query.Set("fecha_inicio", period.From)
	}
	if period.To != "" {
		query.Set("fecha_fin", period.To)
	}

	var report models.TopProductsReport
	if err := c.do(ctx, http.MethodGet, "/api/reportes/productos-mas-vendidos", token, query, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RegisterSale posts a sale payload as-is and returns the created sale
func (c *HTTPBackofficeClient) RegisterSale(ctx context.Context, token string, sale json.RawMessage) (map[string]any, error) {
	var created map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/ventas", token, nil, sale, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// do runs one request. Transport failures wrap ErrConnection, non-2xx answers become *APIError.
func (c *HTTPBackofficeClient) do(ctx context.Context, method, path, token string, query url.Values, in, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		var payload []byte
		switch v := in.(type) {
		case json.RawMessage:
			payload = v
		default:
			encoded, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("failed to encode request: %w", err)
			}
			payload = encoded
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrConnection, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrConnection, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// errorDetail pulls the "detail" field from an error payload. FastAPI sends either a string
// or a list of validation errors there.
func errorDetail(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
