// Package puzzle measures the engine against lichess tactics puzzles.
package puzzle

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"guaxinim/board"
)

var ErrBadPuzzle = errors.New("bad puzzle")

// Puzzle is a start position and an alternating move sequence: the
// opponent's setup move, the expected reply, the next setup move, and so on.
type Puzzle struct {
	ID              string
	Fen             string
	Moves           []string
	Rating          int
	RatingDeviation int
	Popularity      int
	Plays           int
	Themes          []string
	URL             string
	OpeningTags     []string
}

func (p *Puzzle) HasTheme(theme string) bool {
	return lo.Contains(p.Themes, theme)
}

// Expected replies only, in order
func (p *Puzzle) Solution() []string {
	return lo.Filter(p.Moves, func(_ string, i int) bool { return i%2 == 1 })
}

// Validate checks the position and that every move in the sequence is legal
// in turn, without consulting an engine.
func (p *Puzzle) Validate() error {
	if len(p.Moves) == 0 || len(p.Moves)%2 != 0 {
		return fmt.Errorf("%w: %s has %d moves, expected a positive even number", ErrBadPuzzle, p.ID, len(p.Moves))
	}
	game, err := board.FromFen(p.Fen)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPuzzle, p.ID, err)
	}
	for i, move := range p.Moves {
		if game.IsTerminal() {
			return fmt.Errorf("%w: %s: game over before move %d", ErrBadPuzzle, p.ID, i+1)
		}
		if err := game.ApplyUci(move); err != nil {
			return fmt.Errorf("%w: %s: move %d: %v", ErrBadPuzzle, p.ID, i+1, err)
		}
	}
	return nil
}
