package services

import (
	"context"
	"fmt"
	"pos_backoffice_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	ClientID  string
	UserName  string
	UserRole  string
	Email     string
	IPAddress string
	UserAgent string
}

// AuditService records session activity
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Record writes one audit row. Failures are logged and never reach the user.
func (s *AuditService) Record(ctx context.Context, actx AuditContext, action models.AuditAction, description string) {
	entry := models.AuditLog{
		ClientID:    actx.ClientID,
		UserName:    actx.UserName,
		UserRole:    actx.UserRole,
		Email:       actx.Email,
		Action:      action,
		Description: description,
		IPAddress:   actx.IPAddress,
		UserAgent:   actx.UserAgent,
	}

	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Error("failed to create audit log")
	}
}

// Recent returns the latest audit rows for a browser, newest first
func (s *AuditService) Recent(ctx context.Context, clientID string, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.DB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// SessionListener turns session events into audit rows
func (s *AuditService) SessionListener() SessionListener {
	return func(ctx context.Context, event SessionEvent) {
		actx := AuditContext{
			ClientID:  event.ClientID,
			Email:     event.Email,
			IPAddress: event.Meta.IPAddress,
			UserAgent: event.Meta.UserAgent,
		}
		if event.Session != nil {
			actx.UserName = event.Session.User.Name
			actx.UserRole = event.Session.User.Role
			if actx.Email == "" {
				actx.Email = event.Session.User.Email
			}
		}

		switch event.Kind {
		case SessionStarted:
			s.Record(ctx, actx, models.AuditActionLogin, "User logged in")
		case SessionRejected:
			s.Record(ctx, actx, models.AuditActionLoginFailed, event.Reason)
		case SessionEnded:
			description := "User logged out"
			if event.Reason != "" {
				description = "Session ended: " + event.Reason
			}
			s.Record(ctx, actx, models.AuditActionLogout, description)
		}
	}
}
