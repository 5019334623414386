package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
	// DefaultAPITimeout bounds every call to the back-office API
	DefaultAPITimeout = 15 * time.Second
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	LogLevel    string
	// Back-office REST API
	APIBaseURL string
	APITimeout time.Duration
	// Other
	AllowedOrigins []string
	AppURL         string
	SessionSecret  string
}

// IsProduction reports whether cookies must be marked Secure
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the configuration from the environment and an optional .env file.
// A production config with an unusable session secret is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")

	if err := ValidateSessionSecret(sessionSecret, environment); err != nil {
		return nil, err
	}

	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		logrus.Info("generated a temporary session secret; stored sessions will not survive a restart, set SESSION_SECRET to keep them")
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "db/backoffice.db"),
		Environment:    environment,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		APITimeout:     getEnvDuration("API_TIMEOUT", DefaultAPITimeout),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:         getEnv("APP_URL", "http://localhost:8080"),
		SessionSecret:  sessionSecret,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		logrus.WithField("key", key).Debugf("using default value %q", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithFields(logrus.Fields{"key": key, "value": value}).Warnf("invalid duration, using %s", defaultValue)
		return defaultValue
	}
	return d
}

// ValidateSessionSecret rejects a known insecure or short secret in production.
// Elsewhere an insecure secret only logs a warning.
func ValidateSessionSecret(secret string, environment string) error {
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				return fmt.Errorf("SESSION_SECRET is set to an insecure default value; generate one with: openssl rand -base64 32")
			}
			logrus.Warn("SESSION_SECRET is set to an insecure default value, acceptable only in development")
			return nil
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in production (current: %d)", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		logrus.WithError(err).Warn("failed to generate a session secret")
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
