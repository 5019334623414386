package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the session activity being recorded
type AuditAction string

const (
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionLoginFailed    AuditAction = "LOGIN_FAILED"
	AuditActionLogout         AuditAction = "LOGOUT"
	AuditActionSaleRegistered AuditAction = "SALE_REGISTERED"
)

// AuditLog is an immutable record of what a browser did against the back office
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	ClientID string `gorm:"type:varchar(64);index:idx_audit_client" json:"client_id"`
	// Denormalized from the profile at the time of the event
	UserName string `json:"user_name,omitempty"`
	UserRole string `json:"user_role,omitempty"`
	Email    string `json:"email,omitempty"`

	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit logs (immutability)
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of audit logs (immutability)
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
