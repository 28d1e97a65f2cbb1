package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servicehub/marketplace-client/internal/app"
	"github.com/servicehub/marketplace-client/internal/pkg/config"
	"github.com/servicehub/marketplace-client/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty(), Service: "marketplace-client"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start client")
	}
	defer a.Close()

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("api", cfg.API.BaseURL).Msg("web shell listening")
		if err := a.Echo.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("web shell stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
