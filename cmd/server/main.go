package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"gatherly/config"
	_ "gatherly/docs"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/email"
	delivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/delivery/ws"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const (
	serviceTimeout       = 5 * time.Second
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Hour
)

// @title Gatherly API
// @version 1.0
// @description Event registration platform with capacity-bounded sign-ups and live updates.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, serviceTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = postgres.EnsureSchema(schemaCtx, db)
	cancel()
	if err != nil {
		logger.Error("apply schema", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mailer := email.NewMailer(cfg.Email, logger)
	renderer := email.NewTemplateRenderer()
	emailService := services.NewEmailService(mailer, renderer)

	hub := ws.NewHub(logger)

	userService := services.NewUserService(userRepo, sessionRepo, hasher, issuer, cfg.TokenExpiry, cfg.SessionTTL)
	eventService := services.NewEventService(eventRepo, userRepo, serviceTimeout)
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, userRepo, hub, emailService, logger)

	if cfg.Environment != "production" {
		if err := seedDevData(ctx, logger, userRepo, eventRepo, hasher); err != nil {
			logger.Warn("dev seed failed", "err", err)
		}
	}

	authn := &middleware.Authenticator{Sessions: sessionRepo, Verifier: verifier}
	authController := controllers.NewAuthController(logger, userService, cfg.SessionTTL, cfg.Environment == "production")
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)

	mux := delivery.NewRouter(authController, eventController, registrationController, authn, hub)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logging(logger, middleware.CORS(cfg.CORSOrigins, mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Expired sessions are ignored by lookups immediately; the sweep just
	// keeps the table from growing without bound.
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
				if err := sessionRepo.DeleteExpired(sweepCtx); err != nil {
					logger.Warn("session sweep failed", "err", err)
				}
				cancel()
			}
		}
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
