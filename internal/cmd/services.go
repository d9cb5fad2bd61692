package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mcdev12/wordparty/clients/word_api_client"
	"github.com/mcdev12/wordparty/internal/events"
	"github.com/mcdev12/wordparty/internal/gateway"
	"github.com/mcdev12/wordparty/internal/registry"
	"github.com/mcdev12/wordparty/internal/words"
)

type Services struct {
	Registry    *registry.Registry
	Supply      *words.Supply
	Gateway     *gateway.Gateway
	Connections *gateway.ConnectionManager
	Publisher   events.Publisher
}

func setupServices(gameCfg *GameConfig) *Services {
	clock := clockwork.NewRealClock()

	reg := registry.New(clock)
	supply := words.NewSupply(wordBackendFactory())
	publisher := setupPublisher()

	connCfg := gateway.DefaultConnectionConfig()
	gwCfg := gateway.DefaultConfig()
	if gameCfg != nil {
		gwCfg.RoundDuration = secondsOr(gameCfg.Game.RoundDurationSeconds, gwCfg.RoundDuration)
		gwCfg.BackendTimeout = secondsOr(gameCfg.Game.BackendTimeoutSeconds, gwCfg.BackendTimeout)
		connCfg.PingInterval = secondsOr(gameCfg.Game.PingIntervalSeconds, connCfg.PingInterval)
		if gameCfg.Game.MessageRatePerSecond > 0 {
			connCfg.MessageRate = rate.Limit(gameCfg.Game.MessageRatePerSecond)
		}
	}

	cm := gateway.NewConnectionManager(connCfg)
	gw := gateway.NewGateway(cm, reg, supply, publisher, clock, gwCfg)

	return &Services{
		Registry:    reg,
		Supply:      supply,
		Gateway:     gw,
		Connections: cm,
		Publisher:   publisher,
	}
}

// wordBackendFactory picks the word-data backend from the environment. The
// factory runs on the supply's first use, so a misconfigured deployment
// surfaces as a configuration error at that point rather than a silent
// fallback.
func wordBackendFactory() words.BackendFactory {
	return func() (words.WordBackend, error) {
		if getEnv("WORD_BACKEND", "api") == "postgres" {
			connString := os.Getenv("DATABASE_URL")
			if connString == "" {
				return nil, fmt.Errorf("%w: DATABASE_URL is required for the postgres backend", words.ErrMissingConfig)
			}
			return words.NewPostgresBackend(context.Background(), connString)
		}

		url := os.Getenv("WORD_API_URL")
		key := os.Getenv("WORD_API_KEY")
		if url == "" || key == "" {
			return nil, fmt.Errorf("%w: WORD_API_URL and WORD_API_KEY are required", words.ErrMissingConfig)
		}
		return word_api_client.NewWordApiClient(url, key), nil
	}
}

func setupPublisher() events.Publisher {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		log.Info().Msg("NATS_URL not set, room events disabled")
		return events.NoopPublisher{}
	}

	cfg := events.DefaultJetStreamConfig()
	cfg.URL = natsURL

	publisher, err := events.NewJetStreamPublisher(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect room event publisher, continuing without it")
		return events.NoopPublisher{}
	}
	return publisher
}
