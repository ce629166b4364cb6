package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"propdesk/internal/api"
	"propdesk/internal/api/handlers"
	"propdesk/internal/api/middleware"
	"propdesk/internal/engine/ledger"
	"propdesk/internal/engine/mailer"
	"propdesk/internal/engine/platformapi"
	"propdesk/internal/pkg/logger"
	"propdesk/internal/platform/auth"
	"propdesk/internal/platform/config"
	"propdesk/internal/platform/database"
	"propdesk/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log.Info().Str("environment", cfg.Environment).Msg("Starting propdesk server")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	templateRepo := mailer.NewTemplateRepository(db)
	outboxRepo := mailer.NewOutboxRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	writer := ledger.NewWriter(ledgerRepo)
	transport := mailer.NewTransport(cfg)
	dispatcher := mailer.NewDispatcher(templateRepo, outboxRepo, transport)
	platform := platformapi.NewClient(cfg.Platform)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	rateLimiter := middleware.NewRateLimiter()

	deps := &api.Dependencies{
		AuthHandler:     handlers.NewAuthHandler(userRepo, tokenSvc),
		UserHandler:     handlers.NewUserHandler(userRepo, dispatcher),
		AccountHandler:  handlers.NewAccountHandler(accountRepo, userRepo, platform, dispatcher),
		WebhookHandler:  handlers.NewWebhookHandler(writer, ledgerRepo, cfg.Webhooks.SigningSecret),
		TemplateHandler: handlers.NewTemplateHandler(templateRepo),
		OutboxHandler:   handlers.NewOutboxHandler(outboxRepo, dispatcher),
		HealthHandler:   handlers.NewHealthHandler(db),
		AuthMiddleware:  authMiddleware,
		RateLimiter:     rateLimiter,
		WebhookPerMin:   cfg.RateLimit.WebhookPerMinute,
		APIPerMin:       cfg.RateLimit.APIPerMinute,
	}

	router := api.NewRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Server stopped")
}
