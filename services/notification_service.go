package services

import (
	"context"
	"fmt"
	"html"
	"pos_backoffice_go/models"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// MaxToasts is the most toasts handed out per drain; older extras wait for the next one
const MaxToasts = 5

// Notifier queues toasts per browser. Notify never blocks on the user.
type Notifier struct {
	DB     *gorm.DB
	policy *bluemonday.Policy
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db, policy: bluemonday.StrictPolicy()}
}

// Notify queues message for the browser. Upstream messages may carry markup; it is stripped.
func (n *Notifier) Notify(ctx context.Context, clientID, message string, kind models.NotificationKind) error {
	clean := strings.TrimSpace(html.UnescapeString(n.policy.Sanitize(message)))
	if clean == "" {
		return nil
	}

	notification := &models.Notification{
		ClientID: clientID,
		Kind:     models.ParseNotificationKind(string(kind)),
		Message:  clean,
	}
	if err := n.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return nil
}

// Drain returns the pending toasts oldest first and marks them shown
func (n *Notifier) Drain(ctx context.Context, clientID string) ([]models.Notification, error) {
	var pending []models.Notification

	err := n.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ? AND read_at IS NULL", clientID).
			Order("created_at ASC").
			Limit(MaxToasts).
			Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		ids := make([]string, len(pending))
		for i, p := range pending {
			ids[i] = p.ID
		}
		now := time.Now()
		return tx.Model(&models.Notification{}).
			Where("id IN ?", ids).
			Update("read_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain notifications: %w", err)
	}

	return pending, nil
}

// PendingCount returns how many toasts are still queued
func (n *Notifier) PendingCount(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := n.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("client_id = ? AND read_at IS NULL", clientID).
		Count(&count).Error
	return count, err
}

// CleanupShown deletes toasts shown more than olderThan ago
func (n *Notifier) CleanupShown(ctx context.Context, olderThan time.Duration) (int64, error) {
	result := n.DB.WithContext(ctx).
		Where("read_at IS NOT NULL AND read_at < ?", time.Now().Add(-olderThan)).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
