// Principal variation search

package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

// PVS searches the first (best ordered) child with the full window and the
// rest with a zero-width probe, re-searching only children that improve.
// Shares the transposition cache and the mate stop with AlphaBetaTT.
func (s *SearchT) PVS(depthToGo int, alpha EvalCp, beta EvalCp) (dragon.Move, EvalCp) {
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
		for i, move := range moves {
			var eval EvalCp
			if i == 0 {
				eval = s.pvsChild(move, depthToGo, alpha, beta)
			} else {
				// Can this move beat alpha at all?
				eval = s.pvsChild(move, depthToGo, alpha, alpha)
				if eval > alpha && eval <= beta {
					s.stats.ReSearches++
					eval = s.pvsChild(move, depthToGo, alpha, beta)
				}
			}

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
		for i, move := range moves {
			var eval EvalCp
			if i == 0 {
				eval = s.pvsChild(move, depthToGo, alpha, beta)
			} else {
				// Can this move get below beta at all?
				eval = s.pvsChild(move, depthToGo, beta, beta)
				if eval < beta && eval >= alpha {
					s.stats.ReSearches++
					eval = s.pvsChild(move, depthToGo, alpha, beta)
				}
			}

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

func (s *SearchT) pvsChild(move dragon.Move, depthToGo int, alpha EvalCp, beta EvalCp) EvalCp {
	s.pos.Apply(move)
	defer s.pos.Undo()

	_, eval := s.PVS(depthToGo-1, alpha, beta)
	return eval
}

// AspirationPVS deepens iteratively from depth 1, searching each depth in a
// window around the previous score. A result on or outside the window edge
// widens it to the full range and the depth is searched again.
func (s *SearchT) AspirationPVS(depth int, window EvalCp) (dragon.Move, EvalCp) {
	var bestMove dragon.Move
	var bestEval EvalCp

	for depthToGo := 1; depthToGo <= depth; depthToGo++ {
		lo, hi := BlackCheckMateEval, WhiteCheckMateEval
		if depthToGo > 1 {
			lo, hi = clampWindow(bestEval-window), clampWindow(bestEval+window)
		}

		for {
			bestMove, bestEval = s.PVS(depthToGo, lo, hi)

			failLow := bestEval <= lo && lo > BlackCheckMateEval
			failHigh := bestEval >= hi && hi < WhiteCheckMateEval
			if !failLow && !failHigh {
				break
			}
			s.stats.AspirationFails++
			lo, hi = BlackCheckMateEval, WhiteCheckMateEval
		}
	}

	return bestMove, bestEval
}

func clampWindow(eval EvalCp) EvalCp {
	if eval > WhiteCheckMateEval {
		return WhiteCheckMateEval
	}
	if eval < BlackCheckMateEval {
		return BlackCheckMateEval
	}
	return eval
}
