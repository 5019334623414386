package services

import (
	"context"
	"encoding/json"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	dsn := "file:svc_" + uuid.New().String() + "?mode=memory&cache=shared&_busy_timeout=5000"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.StorageEntry{}, &models.Notification{}, &models.AuditLog{}))
	return database
}

func newTestCipher(t *testing.T) *TokenCipher {
	cipher, err := NewTokenCipher(strings.Repeat("x", 32))
	require.NoError(t, err)
	return cipher
}

func i18nContext(lang string) context.Context {
	return i18n.WithLocale(context.Background(), lang)
}

var anaSession = &models.Session{
	Token: "s1",
	User:  models.UserProfile{ID: 1, Name: "Ana", Role: "admin", Email: "a@b.com"},
}

// fakeClient is an in-process BackofficeClient. Unset funcs return zero values.
type fakeClient struct {
	mu     sync.Mutex
	tokens []string

	login       func(email, password string) (*models.Session, error)
	sales       func() (*models.SalesSummary, error)
	alerts      func() ([]models.InventoryAlert, error)
	topProducts func(period models.ReportPeriod) (*models.TopProductsReport, error)
	registered  func(sale json.RawMessage) (map[string]any, error)
}

func (f *fakeClient) seen(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if f.login == nil {
		return anaSession, nil
	}
	return f.login(email, password)
}

func (f *fakeClient) SalesSummary(ctx context.Context, token string) (*models.SalesSummary, error) {
	f.seen(token)
	if f.sales == nil {
		return &models.SalesSummary{}, nil
	}
	return f.sales()
}

func (f *fakeClient) InventoryAlerts(ctx context.Context, token string) ([]models.InventoryAlert, error) {
	f.seen(token)
	if f.alerts == nil {
		return nil, nil
	}
	return f.alerts()
}

func (f *fakeClient) TopProducts(ctx context.Context, token string, period models.ReportPeriod) (*models.TopProductsReport, error) {
	f.seen(token)
	if f.topProducts == nil {
		return &models.TopProductsReport{}, nil
	}
	return f.topProducts(period)
}

func (f *fakeClient) RegisterSale(ctx context.Context, token string, sale json.RawMessage) (map[string]any, error) {
	f.seen(token)
	if f.registered == nil {
		return map[string]any{"venta_id": 1}, nil
	}
	return f.registered(sale)
}

func pendingToasts(t *testing.T, database *gorm.DB, clientID string) []models.Notification {
	var pending []models.Notification
	require.NoError(t, database.Where("client_id = ? AND read_at IS NULL", clientID).Order("created_at ASC").Find(&pending).Error)
	return pending
}
