// Move ordering for the pruning searches

package engine

import (
	"sort"

	dragon "github.com/dylhunn/dragontoothmg"
)

// Move priorities add up, higher searched first
const (
	capturePriority = 1
	checkPriority   = 1
)

// MoveOrderer sorts captures ahead of quiet moves, stable among equal
// priorities. With checks enabled a check scores like a capture, and a
// capture that gives check scores highest.
// Ordered lists are remembered per fingerprint with the same lifetime rules as
// the transposition cache.
type MoveOrderer struct {
	checks bool
	cache  lifetimeCache[[]dragon.Move]
}

func NewMoveOrderer(checks bool) *MoveOrderer {
	return &MoveOrderer{checks: checks, cache: newLifetimeCache[[]dragon.Move]()}
}

// Order returns a freshly allocated ordered copy of the position's legal moves.
func (mo *MoveOrderer) Order(pos Position) []dragon.Move {
	legal := pos.LegalMoves()
	moves := make([]dragon.Move, len(legal))
	copy(moves, legal)

	priorities := make(map[dragon.Move]int, len(moves))
	for i := range moves {
		priorities[moves[i]] = mo.priority(pos, moves[i])
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return priorities[moves[i]] > priorities[moves[j]]
	})
	return moves
}

// OrderCached is Order with memoisation by fingerprint.
// The returned slice is shared with the cache and must not be modified.
func (mo *MoveOrderer) OrderCached(pos Position, fingerprint string, depthToGo int) []dragon.Move {
	if moves, ok := mo.cache.get(fingerprint); ok {
		return moves
	}
	moves := mo.Order(pos)
	mo.cache.put(fingerprint, moves, depthToGo)
	return moves
}

func (mo *MoveOrderer) Age() { mo.cache.age() }

func (mo *MoveOrderer) Len() int { return mo.cache.len() }

func (mo *MoveOrderer) Clear() { mo.cache.clear() }

func (mo *MoveOrderer) priority(pos Position, move dragon.Move) int {
	priority := 0
	if IsCapture(pos, move) {
		priority += capturePriority
	}
	if mo.checks {
		pos.Apply(move)
		if pos.InCheck() {
			priority += checkPriority
		}
		pos.Undo()
	}
	return priority
}

// IsCapture reports whether the move takes a piece, including en passant.
func IsCapture(pos Position, move dragon.Move) bool {
	side := pos.SideToMove()
	from, to := uint64(1)<<move.From(), uint64(1)<<move.To()

	if pos.Bitboards(side.Other()).All&to != 0 {
		return true
	}
	// A pawn changing file onto an empty square
	ours := pos.Bitboards(side)
	return ours.Pawns&from != 0 && (move.From()%8) != (move.To()%8)
}
