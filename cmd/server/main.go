package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"pos_backoffice_go/config"
	"pos_backoffice_go/db"
	"pos_backoffice_go/handlers"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/services"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/services/jobs"
	"pos_backoffice_go/templates/pages"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg)

	if err := i18n.Load(); err != nil {
		logrus.WithError(err).Fatal("failed to load translations")
	}

	// Initialize database
	conn, err := db.Open(cfg.DBPath, cfg.Environment)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close(conn)

	if err := db.AutoMigrate(conn); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	// Services
	client, err := services.NewHTTPBackofficeClient(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		logrus.WithError(err).Fatal("invalid back office configuration")
	}
	cipher, err := services.NewTokenCipher(cfg.SessionSecret)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up token encryption")
	}

	store := services.NewSessionStore(conn, cipher)
	notifier := services.NewNotifier(conn)
	audit := services.NewAuditService(conn)
	sessions := services.NewSessionController(store, client, notifier)
	sessions.Subscribe(audit.SessionListener())
	monitor := services.NewSecurityEventMonitor()
	sessions.Subscribe(monitor.SessionListener())
	loader := services.NewDashboardLoader(client)
	sales := services.NewSaleService(sessions, client, notifier, audit)

	h := handlers.New(cfg, sessions, loader, notifier, sales, audit)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(echomiddleware.Secure())
	e.Use(middleware.CSRF(cfg.IsProduction()))
	e.Use(middleware.CSPNonce(pages.HTMXOrigin))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.ClientIdentity())
	e.Use(middleware.Locale(cfg))

	// Static files
	e.Static("/static", "static")

	// Login attempts: 5 per minute per IP
	loginLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests: 5,
		Window:   1 * time.Minute,
		OnLimit:  h.LoginRateLimited,
	})
	h.RegisterRoutes(e, loginLimiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background cleanup (runs every hour)
	scheduler, err := jobs.StartScheduler(ctx, notifier, loginLimiter, monitor)
	if err != nil {
		logrus.WithError(err).Fatal("failed to schedule cleanup")
	}
	defer scheduler.Stop()

	// Start server
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":     cfg.ServerPort,
			"back_end": cfg.APIBaseURL,
		}).Info("server starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
