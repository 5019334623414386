package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FailedLoginWindow is how far back rejected logins are counted
	FailedLoginWindow = 10 * time.Minute
	// FailedLoginThreshold rejected logins from one IP within the window raise an alert
	FailedLoginThreshold = 5
	// alertCooldown is the minimum gap between two alerts for the same IP
	alertCooldown = time.Hour
	maxAlerts     = 100
)

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

// SecurityEventMonitor watches rejected logins and raises an alert when one IP keeps failing
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time // IP -> failure timestamps
	alertedIPs   map[string]time.Time   // IP -> last alert time
	alerts       []SecurityAlert        // newest first
	now          func() time.Time
}

func NewSecurityEventMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// SessionListener feeds rejected logins into the monitor
func (m *SecurityEventMonitor) SessionListener() SessionListener {
	return func(ctx context.Context, event SessionEvent) {
		if event.Kind != SessionRejected || event.Meta.IPAddress == "" {
			return
		}
		m.TrackFailedLogin(event.Meta.IPAddress)
	}
}

// TrackFailedLogin records a failed login attempt and checks for threshold
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-FailedLoginWindow)

	validAttempts := []time.Time{now}
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			validAttempts = append(validAttempts, t)
		}
	}
	m.failedLogins[ip] = validAttempts

	if len(validAttempts) >= FailedLoginThreshold {
		m.triggerAlertLocked(ip, "Multiple failed logins detected", len(validAttempts))
	}
}

// triggerAlertLocked records and logs an alert. Called with mu held.
func (m *SecurityEventMonitor) triggerAlertLocked(ip, reason string, attempts int) {
	now := m.now()
	if lastAlert, alerted := m.alertedIPs[ip]; alerted && now.Sub(lastAlert) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{
		Timestamp: now,
		IP:        ip,
		Reason:    reason,
		Level:     "CRITICAL",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	logrus.WithFields(logrus.Fields{
		"ip":       ip,
		"attempts": attempts,
		"window":   FailedLoginWindow.String(),
	}).Error("[SECURITY ALERT] " + reason)
}

// GetRecentAlerts returns a copy of recent alerts
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Cleanup drops IPs whose attempts and alerts have aged out and returns how many were removed
func (m *SecurityEventMonitor) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(latest(attempts)) > FailedLoginWindow {
			delete(m.failedLogins, ip)
			removed++
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
	return removed
}

func latest(times []time.Time) time.Time {
	var last time.Time
	for _, t := range times {
		if t.After(last) {
			last = t
		}
	}
	return last
}
