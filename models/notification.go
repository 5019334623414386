package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationKind is the severity of a toast
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// ParseNotificationKind maps free-form kinds onto the supported set, defaulting to info
func ParseNotificationKind(kind string) NotificationKind {
	switch NotificationKind(kind) {
	case NotificationSuccess, NotificationError, NotificationWarning, NotificationInfo:
		return NotificationKind(kind)
	default:
		return NotificationInfo
	}
}

// Notification is a queued toast waiting to be shown to one browser
type Notification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ClientID string           `gorm:"type:varchar(64);not null;index" json:"-"`
	Kind     NotificationKind `gorm:"type:varchar(16);not null" json:"kind"`
	Message  string           `gorm:"type:text" json:"message"`

	// Read tracking
	ReadAt *time.Time `json:"read_at,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
