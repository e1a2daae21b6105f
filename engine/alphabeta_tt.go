package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

// AlphaBeta with the transposition cache, cached move ordering and a stop on
// finding a mate for the side to move.
func (s *SearchT) AlphaBetaTT(depthToGo int, alpha EvalCp, beta EvalCp) (dragon.Move, EvalCp) {
	if eval, isLeaf := s.leafEval(depthToGo); isLeaf {
		return NoMove, eval
	}

	fingerprint := s.pos.Fingerprint()
	if move, eval, ok := s.probeTT(fingerprint, depthToGo, alpha, beta); ok {
		return move, eval
	}

	origAlpha, origBeta := alpha, beta
	bestMove, bestEval := NoMove, initialBestEval(s.pos.SideToMove())
	moves := s.orderer.OrderCached(s.pos, fingerprint, depthToGo)

	if s.pos.SideToMove() == board.Maximizing {
		for _, move := range moves {
			eval := s.alphaBetaTTChild(move, depthToGo, alpha, beta)

			if eval > bestEval {
				bestEval, bestMove = eval, move
			}
			if bestEval == WhiteCheckMateEval {
				s.stats.MateCuts++
				break
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
		for _, move := range moves {
			eval := s.alphaBetaTTChild(move, depthToGo, alpha, beta)

			if eval < bestEval {
				bestEval, bestMove = eval, move
			}
			if bestEval == BlackCheckMateEval {
				s.stats.MateCuts++
				break
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

	s.tt.Put(fingerprint, bestEval, bestMove, depthToGo, evalType(bestEval, origAlpha, origBeta))
	return bestMove, bestEval
}

func (s *SearchT) alphaBetaTTChild(move dragon.Move, depthToGo int, alpha EvalCp, beta EvalCp) EvalCp {
	s.pos.Apply(move)
	defer s.pos.Undo()

	_, eval := s.AlphaBetaTT(depthToGo-1, alpha, beta)
	return eval
}

// Look for an entry at least as deep as depthToGo that settles the node for this window.
func (s *SearchT) probeTT(fingerprint string, depthToGo int, alpha EvalCp, beta EvalCp) (dragon.Move, EvalCp, bool) {
	entry, ok := s.tt.Get(fingerprint, depthToGo)
	if !ok || !entry.isUsable(alpha, beta) {
		s.stats.TTMisses++
		return NoMove, DrawEval, false
	}
	s.stats.TTHits++
	return entry.BestMove, entry.Eval, true
}
