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

	"kivuevent/config"
	"kivuevent/internal/adapters/auth"
	"kivuevent/internal/adapters/email"
	"kivuevent/internal/adapters/qrcode"
	delivery "kivuevent/internal/delivery/http"
	"kivuevent/internal/delivery/http/controllers"
	"kivuevent/internal/delivery/http/middleware"
	"kivuevent/internal/repository/postgres"
	"kivuevent/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// @title Kivu Event API
// @version 1.0
// @description REST backend for business event management: events, venues, participants, and QR check-in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	userRepo := postgres.NewUserRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	encoder := qrcode.NewPNGEncoder()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	eventService := services.NewEventService(eventRepo, cfg.RequestTimeout)
	participantService := services.NewParticipantService(eventRepo, participantRepo, userRepo, encoder, emailService)
	userService := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry)

	mux := delivery.NewRouter(delivery.RouterDeps{
		Events:       controllers.NewEventController(logger, eventService),
		Participants: controllers.NewParticipantController(logger, participantService),
		Users:        controllers.NewUserController(logger, userService),
		Venues:       controllers.NewVenueController(logger, venueRepo),
		Health:       controllers.NewHealthController(logger, db),
		Verifier:     verifier,
	})

	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.LoggingMiddleware(logger,
			middleware.MetricsMiddleware(mux)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
