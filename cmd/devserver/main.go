package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servicehub/marketplace-client/internal/devserver"
	"github.com/servicehub/marketplace-client/internal/pkg/config"
	"github.com/servicehub/marketplace-client/pkg/logger"
)

func main() {
	cfg := config.LoadDevServer()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development", Service: "marketplace-devserver"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := devserver.New(devserver.Options{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}, log)
	if _, err := srv.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, "Administrator"); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("admin", cfg.AdminEmail).Msg("devserver listening")
		if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("devserver stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
