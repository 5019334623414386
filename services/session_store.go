package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"pos_backoffice_go/models"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCorruptSession means the stored entries could not be turned back into a session.
// The store has already cleared them when this is returned.
var ErrCorruptSession = errors.New("stored session is corrupt")

// SessionStore persists a browser's session as two durable entries: the token and the profile.
type SessionStore struct {
	DB     *gorm.DB
	Cipher *TokenCipher
}

func NewSessionStore(db *gorm.DB, cipher *TokenCipher) *SessionStore {
	return &SessionStore{DB: db, Cipher: cipher}
}

// Load returns the stored session, or nil when the browser has none
func (s *SessionStore) Load(ctx context.Context, clientID string) (*models.Session, error) {
	var entries []models.StorageEntry
	err := s.DB.WithContext(ctx).
		Where("client_id = ? AND entry_key IN ?", clientID, []string{models.StorageKeySessionID, models.StorageKeyUser}).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read session entries: %w", err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}

	encryptedToken, hasToken := values[models.StorageKeySessionID]
	userJSON, hasUser := values[models.StorageKeyUser]
	if !hasToken || !hasUser {
		return nil, s.discard(ctx, clientID, "only one of the session entries is present")
	}

	token, err := s.Cipher.Decrypt(encryptedToken)
	if err != nil {
		return nil, s.discard(ctx, clientID, err.Error())
	}

	var user *models.UserProfile
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, s.discard(ctx, clientID, "profile is not a JSON object: "+err.Error())
	}
	if user == nil {
		return nil, s.discard(ctx, clientID, "profile is null")
	}

	session := &models.Session{Token: token, User: *user}
	if !session.IsComplete() {
		return nil, s.discard(ctx, clientID, "token is empty")
	}

	return session, nil
}

// Save writes both entries in one transaction so a reader never sees half a session
func (s *SessionStore) Save(ctx context.Context, clientID string, session *models.Session) error {
	if !session.IsComplete() {
		return fmt.Errorf("refusing to store an incomplete session")
	}

	encryptedToken, err := s.Cipher.Encrypt(session.Token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	now := time.Now()
	entries := []models.StorageEntry{
		{ClientID: clientID, Key: models.StorageKeySessionID, Value: encryptedToken, UpdatedAt: now},
		{ClientID: clientID, Key: models.StorageKeyUser, Value: string(userJSON), UpdatedAt: now},
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to write session entries: %w", err)
		}
		return nil
	})
}

// Clear removes both entries. Clearing an absent session is not an error.
func (s *SessionStore) Clear(ctx context.Context, clientID string) error {
	err := s.DB.WithContext(ctx).
		Where("client_id = ? AND entry_key IN ?", clientID, []string{models.StorageKeySessionID, models.StorageKeyUser}).
		Delete(&models.StorageEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session entries: %w", err)
	}
	return nil
}

func (s *SessionStore) discard(ctx context.Context, clientID, reason string) error {
	logrus.WithFields(logrus.Fields{
		"client_id": clientID,
		"reason":    reason,
	}).Warn("discarding corrupt stored session")

	if err := s.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("%w (cleanup failed: %v)", ErrCorruptSession, err)
	}
	return ErrCorruptSession
}
