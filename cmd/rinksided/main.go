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
	"github.com/slecomte/rinkside/internal/draft/gateway"
	"github.com/slecomte/rinkside/internal/draft/outbox"
	"github.com/slecomte/rinkside/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st Store
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemory()
		log.Info().Msg("using in-memory store")
	default:
		pg, err := store.NewPostgres(ctx, cfg.DatabaseDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pg.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Name).
			Msg("connected to database")
		st = pg
	}

	services := setupServices(st, cfg)

	// The publisher ensures the event stream exists; it must come up
	// before the gateway consumer binds to the stream.
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	publisher, err := outbox.NewJetStreamPublisher(jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}()

	workerCfg := outbox.DefaultConfig()
	if cfg.Outbox.PollInterval > 0 {
		workerCfg.PollInterval = cfg.Outbox.PollInterval
	}
	if cfg.Outbox.BatchSize > 0 {
		workerCfg.BatchSize = cfg.Outbox.BatchSize
	}
	worker := outbox.NewWorker(st, publisher, workerCfg)
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	consumerCfg := gateway.DefaultConsumerConfig()
	consumerCfg.URL = cfg.NATS.URL
	consumer, err := gateway.NewEventConsumer(cm, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway consumer")
	}
	if err := consumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start gateway consumer")
	}

	ws := gateway.NewWebSocketHandler(cm, services.Picks)
	server := setupServer(services, ws, cfg)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := worker.Stop(); err != nil {
		log.Error().Err(err).Msg("outbox worker shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}
