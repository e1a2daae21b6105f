package puzzle

import (
	"fmt"
	"time"

	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
	"guaxinim/engine"
)

// MoveFinder is what the harness needs from an engine.
type MoveFinder interface {
	BestMove(pos engine.Position) dragon.Move
}

type Outcome struct {
	ID     string
	Solved bool
	// Engine moves in order; on failure the last one is the wrong move
	Played []string
	// Index into Moves of the first expected move the engine missed, -1 when solved
	FailedAt int
	Elapsed  time.Duration
}

// Solve plays the setup moves and checks each engine reply against the
// expected one, stopping at the first mismatch.
// Errors are reserved for malformed puzzles.
func Solve(finder MoveFinder, p Puzzle) (outcome Outcome, err error) {
	outcome = Outcome{ID: p.ID, FailedAt: -1}

	if len(p.Moves) == 0 || len(p.Moves)%2 != 0 {
		return outcome, fmt.Errorf("%w: %s has %d moves", ErrBadPuzzle, p.ID, len(p.Moves))
	}
	game, err := board.FromFen(p.Fen)
	if err != nil {
		return outcome, fmt.Errorf("%w: %s: %v", ErrBadPuzzle, p.ID, err)
	}

	start := time.Now()
	defer func() { outcome.Elapsed = time.Since(start) }()

	for i := 0; i < len(p.Moves); i += 2 {
		if err := game.ApplyUci(p.Moves[i]); err != nil {
			return outcome, fmt.Errorf("%w: %s setup move %d: %v", ErrBadPuzzle, p.ID, i+1, err)
		}
		if game.IsTerminal() {
			return outcome, fmt.Errorf("%w: %s: game over after setup move %d", ErrBadPuzzle, p.ID, i+1)
		}

		move := finder.BestMove(game)
		played := board.MoveString(move)
		outcome.Played = append(outcome.Played, played)

		if played != p.Moves[i+1] {
			outcome.FailedAt = i + 1
			return outcome, nil
		}
		game.Apply(move)
	}

	outcome.Solved = true
	return outcome, nil
}
