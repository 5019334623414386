package db

import (
	"fmt"
	"pos_backoffice_go/models"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open sets up the database connection with WAL mode for concurrency.
// SQL logging goes through logrus so it shares the service log format.
func Open(dbPath string, environment string) (*gorm.DB, error) {
	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.WithField("path", dbPath).Info("database connection established (WAL mode enabled)")
	return conn, nil
}

// AutoMigrate creates the tables the back office keeps locally
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}

	err := conn.AutoMigrate(
		&models.StorageEntry{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("database migrations completed")
	return nil
}

// Close closes the database connection
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
