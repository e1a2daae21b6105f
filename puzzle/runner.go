package puzzle

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"guaxinim/engine"
)

// Runner solves puzzles in parallel. Each worker owns an engine, and the
// engine's caches are reset between puzzles so results do not depend on
// which worker got which puzzle.
type Runner struct {
	cfg     engine.Config
	book    *engine.OpeningBook
	workers int
	log     zerolog.Logger
}

func NewRunner(cfg engine.Config, book *engine.OpeningBook, workers int, logger zerolog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		book:    book,
		workers: max(workers, 1),
		log:     logger.With().Str("component", "puzzles").Logger(),
	}, nil
}

// Run returns one outcome per puzzle, in input order. A malformed puzzle
// stops the run with an error.
func (r *Runner) Run(ctx context.Context, puzzles []Puzzle) ([]Outcome, error) {
	outcomes := make([]Outcome, len(puzzles))
	indices := make(chan int)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(indices)
		for i := range puzzles {
			select {
			case indices <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < r.workers; w++ {
		e, err := engine.NewEngine(r.cfg, r.book, r.log)
		if err != nil {
			return nil, err
		}
		worker := w
		g.Go(func() error {
			for i := range indices {
				e.Reset()
				outcome, err := Solve(e, puzzles[i])
				if err != nil {
					return err
				}
				outcomes[i] = outcome
				r.log.Debug().
					Int("worker", worker).
					Str("puzzle", outcome.ID).
					Bool("solved", outcome.Solved).
					Strs("played", outcome.Played).
					Dur("elapsed", outcome.Elapsed).
					Msg("puzzle done")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

type Summary struct {
	Total   int
	Solved  int
	Rate    float64
	AvgTime time.Duration
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total:  len(outcomes),
		Solved: lo.CountBy(outcomes, func(o Outcome) bool { return o.Solved }),
	}
	if s.Total > 0 {
		s.Rate = float64(s.Solved) / float64(s.Total)
		s.AvgTime = lo.SumBy(outcomes, func(o Outcome) time.Duration { return o.Elapsed }) / time.Duration(s.Total)
	}
	return s
}

// SummarizeByTheme groups outcomes under every theme of their puzzle.
// Puzzles and outcomes are parallel slices as returned by Run.
func SummarizeByTheme(puzzles []Puzzle, outcomes []Outcome) map[string]Summary {
	byTheme := map[string][]Outcome{}
	for i, p := range puzzles {
		for _, theme := range lo.Uniq(p.Themes) {
			byTheme[theme] = append(byTheme[theme], outcomes[i])
		}
	}
	return lo.MapValues(byTheme, func(outcomes []Outcome, _ string) Summary {
		return Summarize(outcomes)
	})
}
