package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotAuthenticated is returned when an action needs a session and the browser has none
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidSale is returned when the sale payload is not a JSON object
	ErrInvalidSale = errors.New("sale payload must be a JSON object")
)

// SaleService registers sales on behalf of the logged-in user
type SaleService struct {
	sessions *SessionController
	client   BackofficeClient
	notifier *Notifier
	audit    *AuditService
}

func NewSaleService(sessions *SessionController, client BackofficeClient, notifier *Notifier, audit *AuditService) *SaleService {
	return &SaleService{sessions: sessions, client: client, notifier: notifier, audit: audit}
}

// Register forwards the sale payload untouched. Every outcome is surfaced to the user as a toast.
func (s *SaleService) Register(ctx context.Context, clientID string, payload json.RawMessage, meta RequestMeta) (map[string]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidSale
	}

	session, err := s.sessions.Current(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		s.notify(ctx, clientID, i18n.T(ctx, "notify.not_authenticated"), models.NotificationError)
		return nil, ErrNotAuthenticated
	}

	created, err := s.client.RegisterSale(ctx, session.Token, trimmed)
	if err != nil {
		var apiErr *APIError
		message := i18n.T(ctx, "notify.sale_error")
		switch {
		case errors.As(err, &apiErr):
			if apiErr.Detail != "" {
				message = apiErr.Detail
			}
			if apiErr.IsUnauthorized() {
				s.sessions.Expire(ctx, clientID)
			}
		case errors.Is(err, ErrConnection):
			message = i18n.T(ctx, "notify.connection_error")
		}

		logrus.WithError(err).WithField("client_id", clientID).Warn("sale registration failed")
		s.notify(ctx, clientID, message, models.NotificationError)
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, AuditContext{
			ClientID:  clientID,
			UserName:  session.User.Name,
			UserRole:  session.User.Role,
			Email:     session.User.Email,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		}, models.AuditActionSaleRegistered, saleDescription(created))
	}

	s.notify(ctx, clientID, i18n.T(ctx, "notify.sale_success"), models.NotificationSuccess)
	return created, nil
}

func saleDescription(created map[string]any) string {
	if id, ok := created["venta_id"]; ok {
		return fmt.Sprintf("Sale %v registered", id)
	}
	if id, ok := created["id"]; ok {
		return fmt.Sprintf("Sale %v registered", id)
	}
	return "Sale registered"
}

func (s *SaleService) notify(ctx context.Context, clientID, message string, kind models.NotificationKind) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, clientID, message, kind); err != nil {
		logrus.WithError(err).WithField("client_id", clientID).Error("failed to queue notification")
	}
}
