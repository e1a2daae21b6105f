package engine

import (
	"math/bits"

	dragon "github.com/dylhunn/dragontoothmg"

	"guaxinim/board"
)

// Eval in centi-pawns, i.e. 100 === 1 pawn.
// Always from white's (the maximizing side's) point of view.
type EvalCp int32

// Checkmate is absolute; mate distance is not encoded.
const MateEval EvalCp = 1000000

const WhiteCheckMateEval EvalCp = MateEval
const BlackCheckMateEval EvalCp = -MateEval

const DrawEval EvalCp = 0

// Strictly worse than being mated, so a mated side still picks a move.
const worstForWhite EvalCp = BlackCheckMateEval - 1
const worstForBlack EvalCp = WhiteCheckMateEval + 1

// Piece values
const pawnVal = 100
const knightVal = 300
const bishopVal = 300
const rookVal = 500
const queenVal = 900

// Positional weights
const centerAttackVal = 8
const extendedCenterAttackVal = 3
const undevelopedMinorVal = 15

// Evaluate returns the static evaluation of the position.
// Terminal positions score as a win, loss or draw; everything else is strictly
// between the two mate values.
func Evaluate(pos Position) EvalCp {
	if result := pos.TerminalResult(); result != board.Ongoing {
		return terminalEval(result)
	}
	return heuristicEval(pos)
}

func terminalEval(result board.Result) EvalCp {
	switch result {
	case board.MaxWins:
		return WhiteCheckMateEval
	case board.MinWins:
		return BlackCheckMateEval
	}
	return DrawEval
}

func heuristicEval(pos Position) EvalCp {
	white, black := pos.Bitboards(board.Maximizing), pos.Bitboards(board.Minimizing)

	eval := materialEval(white) - materialEval(black)

	occupied := white.All | black.All
	eval += centerControl(white, occupied, true) - centerControl(black, occupied, false)

	eval -= undevelopedMinorVal * EvalCp(bits.OnesCount64((white.Knights|white.Bishops)&Rank1))
	eval += undevelopedMinorVal * EvalCp(bits.OnesCount64((black.Knights|black.Bishops)&Rank8))

	return clampHeuristic(eval)
}

func clampHeuristic(eval EvalCp) EvalCp {
	if eval >= WhiteCheckMateEval {
		return WhiteCheckMateEval - 1
	}
	if eval <= BlackCheckMateEval {
		return BlackCheckMateEval + 1
	}
	return eval
}

func materialEval(bbs *dragon.Bitboards) EvalCp {
	return pawnVal*EvalCp(bits.OnesCount64(bbs.Pawns)) +
		knightVal*EvalCp(bits.OnesCount64(bbs.Knights)) +
		bishopVal*EvalCp(bits.OnesCount64(bbs.Bishops)) +
		rookVal*EvalCp(bits.OnesCount64(bbs.Rooks)) +
		queenVal*EvalCp(bits.OnesCount64(bbs.Queens))
}

// Weighted count of attacks on the four center squares and the ring around them.
func centerControl(bbs *dragon.Bitboards, occupied uint64, isWhite bool) EvalCp {
	attacks := func(targets uint64) int {
		pawnAttacks := BPawnAttacks
		if isWhite {
			pawnAttacks = WPawnAttacks
		}
		diagonal := func(sq uint64) uint64 { return BishopAttacks(sq, occupied) }
		straight := func(sq uint64) uint64 { return RookAttacks(sq, occupied) }
		queen := func(sq uint64) uint64 { return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied) }

		return countAttacks(bbs.Pawns, targets, pawnAttacks) +
			countAttacks(bbs.Knights, targets, KnightAttacks) +
			countAttacks(bbs.Bishops, targets, diagonal) +
			countAttacks(bbs.Rooks, targets, straight) +
			countAttacks(bbs.Queens, targets, queen) +
			countAttacks(bbs.Kings, targets, KingAttacks)
	}

	return centerAttackVal*EvalCp(attacks(CenterSquares)) +
		extendedCenterAttackVal*EvalCp(attacks(ExtendedCenterSquares))
}
