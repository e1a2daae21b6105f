// Measures the engine's solve rate on lichess puzzles, read from the lichess
// puzzle database CSV or fetched by id.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"guaxinim/engine"
	"guaxinim/lichess"
	"guaxinim/puzzle"
)

var csvPath = flag.String("csv", "", "Lichess puzzle database CSV file.")
var theme = flag.String("theme", "", "Only solve puzzles with this theme.")
var limit = flag.Int("limit", 100, "Most puzzles read from the CSV, 0 for all.")
var workers = flag.Int("workers", 4, "Puzzles solved in parallel.")
var ids = flag.String("ids", "", "Comma separated lichess puzzle ids to fetch.")
var daily = flag.Bool("daily", false, "Also fetch the lichess daily puzzle.")
var apiKey = flag.String("api-key", "", "Optional Lichess API key for fetching puzzles.")
var bookPath = flag.String("book", "", "Opening book JSON file.")
var byTheme = flag.Bool("by-theme", false, "Print results per theme.")
var logLevel = flag.String("log-level", "info", "Log level.")

func main() {
	cfg := engine.DefaultConfig()
	flag.IntVar(&cfg.Depth, "depth", cfg.Depth, "Search depth in plies.")
	flag.TextVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "Search algorithm: MiniMax, AlphaBeta, AlphaBetaTT or PVS.")
	flag.BoolVar(&cfg.Aspiration, "aspiration", cfg.Aspiration, "Use aspiration windows (PVS only).")
	flag.BoolVar(&cfg.OrderChecks, "order-checks", cfg.OrderChecks, "Order checking moves before quiet moves.")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	puzzles, err := loadPuzzles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("loading puzzles")
	}
	if len(puzzles) == 0 {
		fmt.Println("No puzzles to solve; pass -csv, -ids or -daily.")
		flag.PrintDefaults()
		return
	}

	var book *engine.OpeningBook
	if *bookPath != "" {
		if book, err = engine.LoadBook(*bookPath); err != nil {
			log.Fatal().Err(err).Msg("loading opening book")
		}
	}

	runner, err := puzzle.NewRunner(cfg, book, *workers, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine config")
	}
	log.Info().Int("puzzles", len(puzzles)).Interface("config", cfg).Msg("solving")

	outcomes, err := runner.Run(ctx, puzzles)
	if err != nil {
		log.Fatal().Err(err).Msg("solving puzzles")
	}

	for _, o := range lo.Filter(outcomes, func(o puzzle.Outcome, _ int) bool { return !o.Solved }) {
		fmt.Printf("failed %s at move %d: played %s\n", o.ID, o.FailedAt, strings.Join(o.Played, " "))
	}
	printSummary("all", puzzle.Summarize(outcomes))

	if *byTheme {
		summaries := puzzle.SummarizeByTheme(puzzles, outcomes)
		themes := lo.Keys(summaries)
		sort.Strings(themes)
		for _, t := range themes {
			printSummary(t, summaries[t])
		}
	}
}

func printSummary(name string, s puzzle.Summary) {
	fmt.Printf("%-24s %4d/%-4d solved (%.1f%%) avg %v\n", name, s.Solved, s.Total, s.Rate*100, s.AvgTime)
}

func loadPuzzles(ctx context.Context) ([]puzzle.Puzzle, error) {
	var puzzles []puzzle.Puzzle

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		fromCSV, err := puzzle.ReadCSV(f, *theme, *limit)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, fromCSV...)
	}

	puzzleIDs := lo.Filter(strings.Split(*ids, ","), func(id string, _ int) bool { return strings.TrimSpace(id) != "" })
	if len(puzzleIDs) == 0 && !*daily {
		return puzzles, nil
	}

	client := lichess.NewLichessClient(*apiKey, log.Logger)
	var responses []*lichess.PuzzleResponse
	for _, id := range puzzleIDs {
		res, err := client.GetPuzzle(ctx, strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("fetching puzzle %s: %w", id, err)
		}
		responses = append(responses, res)
	}
	if *daily {
		res, err := client.GetDailyPuzzle(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching daily puzzle: %w", err)
		}
		responses = append(responses, res)
	}

	for _, res := range responses {
		p, err := puzzle.FromLichess(res)
		if err != nil {
			return nil, err
		}
		if *theme == "" || p.HasTheme(*theme) {
			puzzles = append(puzzles, p)
		}
	}
	return puzzles, nil
}
