// HTTP and websocket front end for playing against the engine.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guaxinim/engine"
	"guaxinim/server"
)

var addr = flag.String("addr", ":8080", "Address to listen on.")
var configPath = flag.String("config", "", "Engine config JSON file; flags are used when empty.")
var bookPath = flag.String("book", "", "Opening book JSON file.")
var logLevel = flag.String("log-level", "info", "Log level.")
var maxGames = flag.Int("max-games", server.DefaultMaxGames, "Most live games; creating one more drops the least recently used.")
var idleTimeout = flag.Duration("idle-timeout", server.DefaultIdleTimeout, "Games unused for this long are dropped.")
var logJSON = flag.Bool("log-json", false, "Log JSON lines instead of console output.")

func main() {
	cfg := engine.DefaultConfig()
	flag.IntVar(&cfg.Depth, "depth", cfg.Depth, "Search depth in plies.")
	flag.TextVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "Search algorithm: MiniMax, AlphaBeta, AlphaBetaTT or PVS.")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if *logJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	}

	if *configPath != "" {
		if cfg, err = loadConfig(*configPath); err != nil {
			log.Fatal().Err(err).Str("file", *configPath).Msg("loading engine config")
		}
	}

	var book *engine.OpeningBook
	if *bookPath != "" {
		if book, err = engine.LoadBook(*bookPath); err != nil {
			log.Fatal().Err(err).Msg("loading opening book")
		}
	}

	srv, err := server.NewServer(cfg, book, log.Logger, server.WithMaxGames(*maxGames), server.WithIdleTimeout(*idleTimeout))
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine config")
	}
	sweepDone := make(chan struct{})
	defer close(sweepDone)
	go srv.Games().SweepEvery(time.Minute, sweepDone)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", *addr).Interface("config", cfg).Msg("server listening")
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}
}

// Missing fields keep their defaults.
func loadConfig(path string) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
