package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"sync"

	"github.com/sirupsen/logrus"
)

// ClientIDLength is the length of the hex-encoded browser identifier (16 random bytes)
const ClientIDLength = 32

// GenerateClientID generates a cryptographically secure random browser identifier
func GenerateClientID() (string, error) {
	bytes := make([]byte, ClientIDLength/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate client id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// SessionEventKind says what happened to a browser's session
type SessionEventKind int

const (
	SessionStarted SessionEventKind = iota + 1
	SessionRejected
	SessionEnded
)

// RequestMeta describes the browser request that caused a session change
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// SessionEvent is published to subscribers after the store has been updated
type SessionEvent struct {
	Kind     SessionEventKind
	ClientID string
	Email    string
	Session  *models.Session
	Reason   string
	Meta     RequestMeta
}

// SessionListener is called synchronously, in subscription order
type SessionListener func(ctx context.Context, event SessionEvent)

// SessionController owns the session state of every browser. Handlers never touch the store
// directly; they go through the controller so subscribers hear about each change.
type SessionController struct {
	store    *SessionStore
	client   BackofficeClient
	notifier *Notifier

	mu        sync.RWMutex
	listeners []SessionListener
}

func NewSessionController(store *SessionStore, client BackofficeClient, notifier *Notifier) *SessionController {
	return &SessionController{store: store, client: client, notifier: notifier}
}

// Subscribe registers a listener for session changes
func (c *SessionController) Subscribe(listener SessionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

func (c *SessionController) publish(ctx context.Context, event SessionEvent) {
	c.mu.RLock()
	listeners := make([]SessionListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, event)
	}
}

// Current returns the browser's session, or nil when logged out.
// A corrupt stored session counts as logged out.
func (c *SessionController) Current(ctx context.Context, clientID string) (*models.Session, error) {
	session, err := c.store.Load(ctx, clientID)
	if errors.Is(err, ErrCorruptSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Login exchanges credentials for a session and stores it.
// Failures are queued as toasts and returned; the stored session is left as it was.
func (c *SessionController) Login(ctx context.Context, clientID, email, password string, meta RequestMeta) (*models.Session, error) {
	session, err := c.client.Login(ctx, email, password)
	if err != nil {
		c.reportLoginFailure(ctx, clientID, email, meta, err)
		return nil, err
	}

	if err := c.store.Save(ctx, clientID, session); err != nil {
		logrus.WithError(err).WithField("client_id", clientID).Error("failed to persist session")
		c.notify(ctx, clientID, i18n.T(ctx, "notify.login_error"), models.NotificationError)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"client_id": clientID,
		"user_role": session.User.Role,
	}).Info("session started")

	c.publish(ctx, SessionEvent{Kind: SessionStarted, ClientID: clientID, Email: email, Session: session, Meta: meta})
	c.notify(ctx, clientID, i18n.T(ctx, "notify.login_success"), models.NotificationSuccess)

	return session, nil
}

func (c *SessionController) reportLoginFailure(ctx context.Context, clientID, email string, meta RequestMeta, err error) {
	var apiErr *APIError
	var message, reason string

	switch {
	case errors.As(err, &apiErr):
		message = apiErr.Detail
		if message == "" {
			message = i18n.T(ctx, "notify.login_error")
		}
		reason = apiErr.Error()
	case errors.Is(err, ErrConnection):
		message = i18n.T(ctx, "notify.connection_error")
		reason = "back office unreachable"
	default:
		message = i18n.T(ctx, "notify.login_error")
		reason = err.Error()
	}

	logrus.WithError(err).WithField("client_id", clientID).Warn("login failed")
	c.publish(ctx, SessionEvent{Kind: SessionRejected, ClientID: clientID, Email: email, Reason: reason, Meta: meta})
	c.notify(ctx, clientID, message, models.NotificationError)
}

// Logout clears the browser's session. Logging out twice is a no-op.
func (c *SessionController) Logout(ctx context.Context, clientID string, meta RequestMeta) error {
	session, err := c.store.Load(ctx, clientID)
	if err != nil && !errors.Is(err, ErrCorruptSession) {
		return err
	}
	if session == nil {
		// Nothing stored (or the corrupt entries were just cleared)
		return nil
	}

	if err := c.store.Clear(ctx, clientID); err != nil {
		return err
	}

	c.publish(ctx, SessionEvent{Kind: SessionEnded, ClientID: clientID, Session: session, Meta: meta})
	c.notify(ctx, clientID, i18n.T(ctx, "notify.logout"), models.NotificationSuccess)
	return nil
}

// Expire drops a session the back office no longer accepts
func (c *SessionController) Expire(ctx context.Context, clientID string) {
	if err := c.store.Clear(ctx, clientID); err != nil {
		logrus.WithError(err).WithField("client_id", clientID).Error("failed to clear expired session")
		return
	}
	c.publish(ctx, SessionEvent{Kind: SessionEnded, ClientID: clientID, Reason: "expired"})
	c.notify(ctx, clientID, i18n.T(ctx, "notify.session_expired"), models.NotificationWarning)
}

func (c *SessionController) notify(ctx context.Context, clientID, message string, kind models.NotificationKind) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, clientID, message, kind); err != nil {
		logrus.WithError(err).WithField("client_id", clientID).Error("failed to queue notification")
	}
}
