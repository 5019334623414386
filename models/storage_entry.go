package models

import "time"

// Keys of the two durable entries that make up a stored session
const (
	StorageKeySessionID = "sessionId"
	StorageKeyUser      = "usuario"
)

// StorageEntry is one durable key-value pair scoped to a single browser.
type StorageEntry struct {
	ClientID  string    `gorm:"primaryKey;type:varchar(64)"`
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(32)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}
