package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"guaxinim/engine"
	"guaxinim/lichess"
)

var apiKey = flag.String("api-key", "", "The Lichess API key to use for this bot's requests.")
var host = flag.String("host", lichess.DefaultHost, "Lichess server to play on.")
var bookPath = flag.String("book", "", "Opening book JSON file.")
var maxGames = flag.Int("max-games", 4, "Most games played at once; further challenges are declined.")
var upgrade = flag.Bool("upgrade", false, "Upgrade the account to a bot account first. This cannot be undone.")
var logLevel = flag.String("log-level", "info", "Log level.")

func main() {
	cfg := engine.DefaultConfig()
	flag.IntVar(&cfg.Depth, "depth", cfg.Depth, "Search depth in plies.")
	flag.TextVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "Search algorithm: MiniMax, AlphaBeta, AlphaBetaTT or PVS.")
	flag.Parse()
	if *apiKey == "" {
		fmt.Println("Lichess-Bot requires a Lichess API key in order to run.")
		flag.PrintDefaults()

		return
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad engine config")
	}
	var book *engine.OpeningBook
	if *bookPath != "" {
		if book, err = engine.LoadBook(*bookPath); err != nil {
			log.Fatal().Err(err).Msg("loading opening book")
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx := sigCtx

	client := lichess.NewLichessClient(*apiKey, log.Logger, lichess.WithHost(*host))
	if *upgrade {
		if err := client.UpgradeAccount(ctx); err != nil {
			log.Fatal().Err(err).Msg("upgrading to a bot account")
		}
	}
	account, err := client.GetAccount(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetching bot account")
	}
	if !account.IsBot() {
		log.Warn().Str("user", account.Username).Msg("account is not a bot account, see -upgrade")
	}

	state := NewState(client, account.ID, cfg, book, *maxGames)
	log.Info().Str("user", account.Username).Interface("config", cfg).Msg("bot ready")

	g, ctx := errgroup.WithContext(sigCtx)
	g.Go(func() error { return ListenForEventsForever(ctx, state) })
	g.Go(func() error { return AcceptChallengesForever(ctx, state) })
	g.Go(func() error { return PlayGamesForever(ctx, state) })

	if err := g.Wait(); err != nil && sigCtx.Err() == nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("bot shut down")
}
