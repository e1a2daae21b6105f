// Bitboard utilities
// Note bit 0 (low bit) is square A1, bit 63 (hi bit) is square H8

package engine

import "math/bits"

const A uint64 = 0x0101010101010101
const H uint64 = 0x8080808080808080

const Rank1 uint64 = 0x00000000000000ff
const Rank8 uint64 = 0xff00000000000000

// d4, e4, d5, e5
const CenterSquares uint64 = 0x0000001818000000

// The ring c3-f3-f6-c6 around the center
const ExtendedCenterSquares uint64 = 0x00003c24243c0000

func N(bb uint64) uint64 { return bb << 8 }

func S(bb uint64) uint64 { return bb >> 8 }

func W(bb uint64) uint64 { return (bb & ^A) >> 1 }

func E(bb uint64) uint64 { return (bb & ^H) << 1 }

func NE(bb uint64) uint64 { return N(E(bb)) }

func NW(bb uint64) uint64 { return N(W(bb)) }

func SE(bb uint64) uint64 { return S(E(bb)) }

func SW(bb uint64) uint64 { return S(W(bb)) }

// Pawn attacks and defenses
func WPawnAttacks(wPawns uint64) uint64 {
	return NW(wPawns) | NE(wPawns)
}

// Pawn attacks and defenses
func BPawnAttacks(bPawns uint64) uint64 {
	return SW(bPawns) | SE(bPawns)
}

func KnightAttacks(knights uint64) uint64 {
	return N(NE(knights)) | N(NW(knights)) |
		S(SE(knights)) | S(SW(knights)) |
		E(NE(knights)) | E(SE(knights)) |
		W(NW(knights)) | W(SW(knights))
}

func KingAttacks(kings uint64) uint64 {
	return N(kings) | S(kings) | E(kings) | W(kings) |
		NE(kings) | NW(kings) | SE(kings) | SW(kings)
}

// Slide from the given square until (and including) the first blocker
func rayAttacks(square uint64, occupied uint64, step func(uint64) uint64) uint64 {
	var attacks uint64
	for bb := step(square); bb != 0; bb = step(bb) {
		attacks |= bb
		if bb&occupied != 0 {
			break
		}
	}
	return attacks
}

func BishopAttacks(square uint64, occupied uint64) uint64 {
	return rayAttacks(square, occupied, NE) | rayAttacks(square, occupied, NW) |
		rayAttacks(square, occupied, SE) | rayAttacks(square, occupied, SW)
}

func RookAttacks(square uint64, occupied uint64) uint64 {
	return rayAttacks(square, occupied, N) | rayAttacks(square, occupied, S) |
		rayAttacks(square, occupied, E) | rayAttacks(square, occupied, W)
}

// Count attacking relationships from each piece in pieces to the target squares.
// Two pieces hitting the same square count twice.
func countAttacks(pieces uint64, targets uint64, attacks func(square uint64) uint64) int {
	n := 0
	for pieces != 0 {
		square := pieces & -pieces
		pieces ^= square
		n += bits.OnesCount64(attacks(square) & targets)
	}
	return n
}
