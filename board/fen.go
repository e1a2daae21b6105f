package board

import (
	"errors"
	"fmt"
	"strings"

	dragon "github.com/dylhunn/dragontoothmg"
)

var ErrBadFen = errors.New("board: malformed fen")
var ErrIllegalMove = errors.New("board: illegal move")
var ErrBadMove = errors.New("board: malformed move")

// Fingerprint reduces a FEN to the fields that identify a logical position:
// piece placement, side to move, castling rights and en-passant square.
// The halfmove clock and fullmove number are dropped.
func Fingerprint(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// normaliseFen validates the shape of a FEN and fills in missing move counters.
func normaliseFen(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) != 4 && len(fields) != 6 {
		return "", fmt.Errorf("%w: expected 4 or 6 fields, got %d in %q", ErrBadFen, len(fields), fen)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("%w: expected 8 ranks in %q", ErrBadFen, fen)
	}
	kings := map[rune]int{}
	for _, rank := range ranks {
		width := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				width += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				width++
				if c == 'k' || c == 'K' {
					kings[c]++
				}
			default:
				return "", fmt.Errorf("%w: unexpected %q in %q", ErrBadFen, c, fen)
			}
		}
		if width != 8 {
			return "", fmt.Errorf("%w: rank %q is %d squares wide", ErrBadFen, rank, width)
		}
	}
	if kings['K'] != 1 || kings['k'] != 1 {
		return "", fmt.Errorf("%w: each side needs exactly one king in %q", ErrBadFen, fen)
	}

	if fields[1] != "w" && fields[1] != "b" {
		return "", fmt.Errorf("%w: side to move %q", ErrBadFen, fields[1])
	}
	if fields[2] != "-" && strings.Trim(fields[2], "KQkq") != "" {
		return "", fmt.Errorf("%w: castling rights %q", ErrBadFen, fields[2])
	}
	if fields[3] != "-" && !isSquareName(fields[3]) {
		return "", fmt.Errorf("%w: en-passant square %q", ErrBadFen, fields[3])
	}
	// The en-passant square is behind a pawn the opponent just pushed two squares
	if fields[3] != "-" && fields[3][1] != enPassantRank(fields[1]) {
		return "", fmt.Errorf("%w: en-passant square %s with %s to move", ErrBadFen, fields[3], fields[1])
	}

	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	return strings.Join(fields, " "), nil
}

func enPassantRank(sideToMove string) byte {
	if sideToMove == "w" {
		return '6'
	}
	return '3'
}

// Square index of a name like "e3", with a1 as 0 and h8 as 63.
func squareIndex(s string) uint8 {
	return (s[1]-'1')*8 + (s[0] - 'a')
}

func isSquareName(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// ParseMove decodes a move in coordinate form ("e2e4", "e7e8q").
func ParseMove(s string) (dragon.Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	if !isSquareName(s[0:2]) || !isSquareName(s[2:4]) {
		return 0, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	if len(s) == 5 && !strings.ContainsRune("nbrq", rune(s[4])) {
		return 0, fmt.Errorf("%w: promotion in %q", ErrBadMove, s)
	}
	move, err := dragon.ParseMove(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadMove, s, err)
	}
	return move, nil
}

// MoveString renders a move in coordinate form.
func MoveString(move dragon.Move) string {
	return move.String()
}
