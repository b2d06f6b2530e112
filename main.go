package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fintrack/backend/internal/client"
	"github.com/fintrack/backend/internal/config"
	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/handler"
	"github.com/fintrack/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("[Main] postgres: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("[Main] schema: %v", err)
	}

	issuer, err := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	if err != nil {
		log.Fatalf("[Main] token issuer: %v", err)
	}

	mailerClient := client.NewMailerClient(cfg.Mailer)
	verificationSvc := service.NewVerificationService(database, mailerClient)

	authSvc, err := service.NewAuthService(database, database, issuer, verificationSvc, cfg.Auth.RefreshTTL)
	if err != nil {
		log.Fatalf("[Main] auth service: %v", err)
	}

	subsSvc := service.NewSubscriptionService(database)

	sweeper := service.NewPlanSweeper(subsSvc, cfg.Sweeper.Interval)
	sweeper.Start()
	defer sweeper.Stop()

	router := handler.NewRouter(cfg.Server, authSvc, subsSvc)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[Main] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[Main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}
