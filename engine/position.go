package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

const NoMove dragon.Move = 0

// Position is the game state the search drives. The search owns it for the
// duration of a call: every Apply is matched by exactly one Undo before the
// call returns. *board.Game implements it.
type Position interface {
	Apply(move dragon.Move)
	Undo()
	// LegalMoves in the provider's native order. The search never modifies
	// the returned slice, and the provider must not modify it after returning.
	LegalMoves() []dragon.Move
	IsTerminal() bool
	TerminalResult() board.Result
	SideToMove() board.Side
	Fingerprint() string
	InCheck() bool
	Bitboards(side board.Side) *dragon.Bitboards
}

var _ Position = (*board.Game)(nil)
