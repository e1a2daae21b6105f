package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

// Return the best eval attainable through alpha-beta from the given position, along with the move leading to the principal variation.
//
// The window [alpha, beta] is closed: a result inside it is exact, a result above
// beta is a lower bound and a result below alpha is an upper bound.
func (s *SearchT) AlphaBeta(depthToGo int, alpha EvalCp, beta EvalCp) (dragon.Move, EvalCp) {
	if eval, isLeaf := s.leafEval(depthToGo); isLeaf {
		return NoMove, eval
	}

	bestMove, bestEval := NoMove, initialBestEval(s.pos.SideToMove())

	// Would be smaller with negalpha-beta but this is simple
	if s.pos.SideToMove() == board.Maximizing {
		// White to move - maximise eval with beta cut-off
		for _, move := range s.orderer.Order(s.pos) {
			eval := s.alphaBetaChild(move, depthToGo, alpha, beta)

			if eval > bestEval {
				bestEval, bestMove = eval, move
			}
			if bestEval > alpha {
				alpha = bestEval
			}
			if bestEval > beta {
				s.stats.CutNodes++
				break
			}
		}
	} else {
		// Black to move - minimise eval with alpha cut-off
		for _, move := range s.orderer.Order(s.pos) {
			eval := s.alphaBetaChild(move, depthToGo, alpha, beta)

			if eval < bestEval {
				bestEval, bestMove = eval, move
			}
			if bestEval < beta {
				beta = bestEval
			}
			if bestEval < alpha {
				s.stats.CutNodes++
				break
			}
		}
	}

	return bestMove, bestEval
}

func (s *SearchT) alphaBetaChild(move dragon.Move, depthToGo int, alpha EvalCp, beta EvalCp) EvalCp {
	s.pos.Apply(move)
	defer s.pos.Undo()

	_, eval := s.AlphaBeta(depthToGo-1, alpha, beta)
	return eval
}
