package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if getEnv("DEBUG", "") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var gameCfg *GameConfig
	if path := os.Getenv("GAME_CONFIG"); path != "" {
		cfg, err := loadGameConfig(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load game config")
		}
		gameCfg = cfg
	}

	services := setupServices(gameCfg)
	defer services.Publisher.Close()

	server := setupServer(services)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting wordparty server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
