package board

import "fmt"

// Side identifies the player to move. White is always the maximizing side.
type Side int

const (
	Maximizing Side = iota
	Minimizing
)

func (s Side) String() string {
	switch s {
	case Maximizing:
		return "white"
	case Minimizing:
		return "black"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Other returns the opponent.
func (s Side) Other() Side {
	return s ^ 1
}

// Result of a finished game.
type Result int

const (
	Ongoing Result = iota
	MaxWins
	MinWins
	Draw
)

func (r Result) String() string {
	switch r {
	case Ongoing:
		return "*"
	case MaxWins:
		return "1-0"
	case MinWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}
