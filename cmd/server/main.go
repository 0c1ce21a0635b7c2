package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	httpapi "github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/http"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/logging"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	sessions := session.NewManager(cfg, nil)
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error().Err(err).Msg("close session failed")
		}
	}()

	// ONLINE needs credentials, so only OFFLINE starts with a session.
	if cfg.Mode == config.ModeOffline {
		if _, err := sessions.LoginOffline(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("open local database failed")
		}
	}

	handler := httpapi.NewHandler(sessions, cfg)
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("mode", string(cfg.Mode)).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("force close failed")
		}
	}
	log.Info().Msg("server stopped")
}
