package puzzle

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
	"github.com/samber/lo"

	"guaxinim/lichess"
)

// FromLichess converts a puzzle API reply. The game PGN is replayed up to the
// opponent's last move, which becomes the first setup move.
func FromLichess(res *lichess.PuzzleResponse) (Puzzle, error) {
	id := res.Puzzle.ID
	sans := lo.Filter(strings.Fields(res.Game.Pgn), func(token string, _ int) bool {
		return !isMoveNumber(token) && !isGameResult(token)
	})
	if n := res.Puzzle.InitialPly + 1; res.Puzzle.InitialPly > 0 && n < len(sans) {
		sans = sans[:n]
	}
	if len(sans) == 0 {
		return Puzzle{}, fmt.Errorf("%w: %s has no game moves", ErrBadPuzzle, id)
	}

	game := chess.NewGame()
	for _, san := range sans[:len(sans)-1] {
		move, err := chess.AlgebraicNotation{}.Decode(game.Position(), san)
		if err != nil {
			return Puzzle{}, fmt.Errorf("%w: %s: %v", ErrBadPuzzle, id, err)
		}
		if err := game.Move(move); err != nil {
			return Puzzle{}, fmt.Errorf("%w: %s: %v", ErrBadPuzzle, id, err)
		}
	}

	pos := game.Position()
	last, err := chess.AlgebraicNotation{}.Decode(pos, sans[len(sans)-1])
	if err != nil {
		return Puzzle{}, fmt.Errorf("%w: %s: %v", ErrBadPuzzle, id, err)
	}

	p := Puzzle{
		ID:     id,
		Fen:    pos.String(),
		Moves:  append([]string{chess.UCINotation{}.Encode(pos, last)}, res.Puzzle.Solution...),
		Rating: int(res.Puzzle.Rating),
		Plays:  int(res.Puzzle.Plays),
		Themes: res.Puzzle.Themes,
		URL:    "https://lichess.org/training/" + id,
	}
	if len(p.Moves)%2 != 0 {
		return Puzzle{}, fmt.Errorf("%w: %s solution has %d moves, expected an odd number", ErrBadPuzzle, id, len(res.Puzzle.Solution))
	}
	return p, nil
}

// "12." or "12..."
func isMoveNumber(token string) bool {
	digits := strings.TrimRight(token, ".")
	return digits != token && digits != "" && strings.Trim(digits, "0123456789") == ""
}

func isGameResult(token string) bool {
	return lo.Contains([]string{"1-0", "0-1", "1/2-1/2", "*"}, token)
}
