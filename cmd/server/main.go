package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/gemini-relay/internal/api"
	"github.com/example/gemini-relay/internal/config"
	"github.com/example/gemini-relay/internal/providers/llm"
	"github.com/example/gemini-relay/internal/relay"
)

const shutdownDrain = 5 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, closeClient, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create model client")
	}
	defer closeClient()

	rel := relay.New(client,
		relay.WithTimeout(cfg.HTTPTimeout),
		relay.WithLogger(log.With().Str("component", "relay").Logger()),
	)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.CORS(cfg.CORSOrigins)(api.NewServer(rel, log.Logger).Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", srv.Addr).Msg("listen")
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Dur("timeout", cfg.HTTPTimeout).
		Msg("server listening")
	if err := serve(ctx, srv, ln, shutdownDrain); err != nil {
		log.Error().Err(err).Msg("server exited")
		closeClient()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
