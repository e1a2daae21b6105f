package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

// Return the best eval attainable through minmax from the given position, along with the move leading to the principal variation.
func (s *SearchT) MiniMax(depthToGo int) (dragon.Move, EvalCp) {
	if eval, isLeaf := s.leafEval(depthToGo); isLeaf {
		return NoMove, eval
	}

	isWhite := s.pos.SideToMove() == board.Maximizing
	bestMove, bestEval := NoMove, initialBestEval(s.pos.SideToMove())

	for _, move := range s.pos.LegalMoves() {
		eval := s.miniMaxChild(move, depthToGo)

		// Strict, so the first of equal moves wins
		if isWhite {
			if eval > bestEval {
				bestEval, bestMove = eval, move
			}
		} else {
			if eval < bestEval {
				bestEval, bestMove = eval, move
			}
		}
	}

	return bestMove, bestEval
}

func (s *SearchT) miniMaxChild(move dragon.Move, depthToGo int) EvalCp {
	s.pos.Apply(move)
	defer s.pos.Undo()

	_, eval := s.MiniMax(depthToGo - 1)
	return eval
}
