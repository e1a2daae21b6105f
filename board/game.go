// Mutable game state on top of the dragontoothmg move generator.

package board

import (
	"fmt"
	"math/bits"
	"strings"

	dragon "github.com/dylhunn/dragontoothmg"
)

const StartFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Draw thresholds that end the game without a claim.
const SeventyFiveMoveHalfmoves = 150
const FivefoldRepetitions = 5

// Game is a board plus the apply/undo stack and the position history.
// It is not safe for concurrent use.
type Game struct {
	board   dragon.Board
	undos   []undoT
	history HistoryTableT

	// Legal moves of the current position, nil when stale
	moves []dragon.Move
}

type undoT struct {
	unapply func()
	hash    uint64
}

// NewGame returns a game at the standard starting position.
func NewGame() *Game {
	g, err := FromFen(StartFen)
	if err != nil {
		panic(err)
	}
	return g
}

// FromFen returns a game at the given position.
func FromFen(fen string) (g *Game, err error) {
	normalised, err := normaliseFen(fen)
	if err != nil {
		return nil, err
	}

	defer func() {
		// dragontoothmg panics on input it cannot index
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%w: %q: %v", ErrBadFen, fen, r)
		}
	}()

	g = &Game{
		board:   dragon.ParseFen(normalised),
		history: make(HistoryTableT),
	}
	if err := g.checkReachable(strings.Fields(normalised)[3]); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadFen, fen, err)
	}
	g.history.Add(g.board.Hash())
	return g, nil
}

// The move generator assumes the side that just moved is not in check and
// that an en-passant square has the pushed pawn in front of it.
func (g *Game) checkReachable(enPassant string) error {
	flipped := g.board
	flipped.Wtomove = !flipped.Wtomove
	if flipped.OurKingInCheck() {
		return fmt.Errorf("%v is in check but not to move", g.SideToMove().Other())
	}

	if enPassant == "-" {
		return nil
	}
	sq := squareIndex(enPassant)
	pushed, behind := sq-8, sq+8 // black pushed, white to move
	if !g.board.Wtomove {
		pushed, behind = sq+8, sq-8
	}
	them := g.Bitboards(g.SideToMove().Other())
	occupied := g.board.White.All | g.board.Black.All
	if them.Pawns&(uint64(1)<<pushed) == 0 || occupied&(uint64(1)<<sq|uint64(1)<<behind) != 0 {
		return fmt.Errorf("no pawn just pushed past %s", enPassant)
	}
	return nil
}

// Clone returns an independent copy of the current position and history.
// The undo stack is not carried over.
func (g *Game) Clone() *Game {
	return &Game{
		board:   g.board,
		history: g.history.clone(),
	}
}

// Apply plays a move assumed to be legal in the current position.
func (g *Game) Apply(move dragon.Move) {
	unapply := g.board.Apply(move)
	hash := g.board.Hash()
	g.history.Add(hash)
	g.undos = append(g.undos, undoT{unapply: unapply, hash: hash})
	g.moves = nil
}

// Undo takes back the most recent Apply.
func (g *Game) Undo() {
	n := len(g.undos)
	if n == 0 {
		panic("board: undo with no move applied")
	}
	last := g.undos[n-1]
	g.undos = g.undos[:n-1]
	g.history.Remove(last.hash)
	last.unapply()
	g.moves = nil
}

// ApplyUci checks a coordinate-form move against the legal moves and plays it.
func (g *Game) ApplyUci(s string) error {
	move, err := ParseMove(s)
	if err != nil {
		return err
	}
	for _, legal := range g.LegalMoves() {
		if legal == move {
			g.Apply(legal)
			return nil
		}
	}
	return fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, g.Fen())
}

// Ply is the number of moves applied since construction (or Clone).
func (g *Game) Ply() int {
	return len(g.undos)
}

// LegalMoves in the move generator's native order.
// The returned slice is shared; callers must copy it before reordering.
func (g *Game) LegalMoves() []dragon.Move {
	if g.moves == nil {
		g.moves = g.board.GenerateLegalMoves()
		if g.moves == nil {
			g.moves = []dragon.Move{}
		}
	}
	return g.moves
}

func (g *Game) SideToMove() Side {
	if g.board.Wtomove {
		return Maximizing
	}
	return Minimizing
}

func (g *Game) InCheck() bool {
	return g.board.OurKingInCheck()
}

func (g *Game) IsTerminal() bool {
	return g.TerminalResult() != Ongoing
}

// TerminalResult reports how the game ended, or Ongoing.
func (g *Game) TerminalResult() Result {
	if len(g.LegalMoves()) == 0 {
		if !g.board.OurKingInCheck() {
			// stalemate
			return Draw
		}
		if g.board.Wtomove {
			return MinWins
		}
		return MaxWins
	}

	if int(g.board.Halfmoveclock) >= SeventyFiveMoveHalfmoves ||
		g.history.Count(g.board.Hash()) >= FivefoldRepetitions ||
		g.insufficientMaterial() {
		return Draw
	}

	return Ongoing
}

// Neither side can mate: bare kings, or bare kings plus a single minor piece.
func (g *Game) insufficientMaterial() bool {
	w, b := &g.board.White, &g.board.Black
	if w.Pawns|w.Rooks|w.Queens|b.Pawns|b.Rooks|b.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(w.Knights | w.Bishops | b.Knights | b.Bishops)
	return minors <= 1
}

// Fen renders the full position including move counters.
func (g *Game) Fen() string {
	return g.board.ToFen()
}

// Fingerprint identifies the logical position and side to move,
// ignoring the halfmove clock and fullmove number. The en-passant square is
// kept only when an en-passant capture is legal, so move orders that reach
// the same position agree.
func (g *Game) Fingerprint() string {
	fields := strings.Fields(Fingerprint(g.board.ToFen()))
	if len(fields) == 4 && fields[3] != "-" && !g.canCaptureEnPassant(squareIndex(fields[3])) {
		fields[3] = "-"
	}
	return strings.Join(fields, " ")
}

func (g *Game) canCaptureEnPassant(sq uint8) bool {
	pawns := g.Bitboards(g.SideToMove()).Pawns
	for _, move := range g.LegalMoves() {
		if move.To() == sq && pawns&(uint64(1)<<move.From()) != 0 {
			return true
		}
	}
	return false
}

// Hash is the dragontoothmg zobrist hash of the position.
func (g *Game) Hash() uint64 {
	return g.board.Hash()
}

// Bitboards returns the piece sets of one side. Bit 0 is a1, bit 63 is h8.
func (g *Game) Bitboards(side Side) *dragon.Bitboards {
	if side == Maximizing {
		return &g.board.White
	}
	return &g.board.Black
}

func (g *Game) String() string {
	return g.Fen()
}
