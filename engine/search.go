package engine

import (
	"fmt"

	dragon "github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"

	"guaxinim/board"
)

// Engine picks moves for any Position. It keeps its caches between calls,
// so one Engine should follow one game. Not safe for concurrent use.
type Engine struct {
	cfg     Config
	book    *OpeningBook
	tt      *TranspositionCache
	orderer *MoveOrderer
	stats   SearchStatsT
	log     zerolog.Logger
}

type Result struct {
	Move     dragon.Move
	Eval     EvalCp // from white's point of view
	Depth    int
	FromBook bool
	Stats    SearchStatsT
}

func (r Result) MoveString() string {
	move := r.Move
	return move.String()
}

// NewEngine validates the config. The book may be nil.
func NewEngine(cfg Config, book *OpeningBook, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		book:    book,
		tt:      NewTranspositionCache(),
		orderer: NewMoveOrderer(cfg.OrderChecks),
		log:     logger.With().Str("algorithm", cfg.Algorithm.String()).Int("depth", cfg.Depth).Logger(),
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Stats of the most recent search.
func (e *Engine) Stats() SearchStatsT { return e.stats }

func (e *Engine) TTLen() int { return e.tt.Len() }

// Reset forgets everything learned in earlier searches.
func (e *Engine) Reset() {
	e.tt.Clear()
	e.orderer.Clear()
	e.stats = SearchStatsT{}
}

func (e *Engine) BestMove(pos Position) dragon.Move {
	return e.Search(pos).Move
}

// Search returns the move to play and its evaluation.
// The position is left exactly as it was given. Panics if the game is over.
func (e *Engine) Search(pos Position) Result {
	fingerprint := pos.Fingerprint()
	if pos.IsTerminal() {
		panic(fmt.Sprintf("engine: no move to search in finished game %s (%v)", fingerprint, pos.TerminalResult()))
	}

	e.stats = SearchStatsT{}
	// Caches age once per call, book hits included
	defer e.tt.Age()
	defer e.orderer.Age()

	if move, ok := e.book.Lookup(fingerprint); ok {
		e.log.Info().Str("fen", fingerprint).Str("move", board.MoveString(move)).Msg("opening book hit")
		return Result{Move: move, FromBook: true}
	}

	s := &SearchT{pos: pos, stats: &e.stats, tt: e.tt, orderer: e.orderer}
	depth := e.cfg.Depth

	var move dragon.Move
	var eval EvalCp
	switch e.cfg.Algorithm {
	case MiniMax:
		move, eval = s.MiniMax(depth)
	case AlphaBeta:
		move, eval = s.AlphaBeta(depth, BlackCheckMateEval, WhiteCheckMateEval)
	case AlphaBetaTT:
		move, eval = s.AlphaBetaTT(depth, BlackCheckMateEval, WhiteCheckMateEval)
	case PVS:
		if e.cfg.Aspiration {
			move, eval = s.AspirationPVS(depth, e.cfg.AspirationWindow)
		} else {
			move, eval = s.PVS(depth, BlackCheckMateEval, WhiteCheckMateEval)
		}
	}
	e.stats.MaxDepth = depth

	if move == NoMove {
		panic(fmt.Sprintf("engine: %v found no move in %s", e.cfg.Algorithm, fingerprint))
	}

	e.log.Debug().
		Str("fen", fingerprint).
		Str("move", board.MoveString(move)).
		Int32("eval", int32(eval)).
		Object("stats", e.stats).
		Int("tt_entries", e.tt.Len()).
		Msg("search done")

	return Result{Move: move, Eval: eval, Depth: depth, Stats: e.stats}
}

// SearchT is the state of one top-level search.
type SearchT struct {
	pos     Position
	stats   *SearchStatsT
	tt      *TranspositionCache
	orderer *MoveOrderer
}

// Handles the terminal and depth-zero cases common to all variants.
func (s *SearchT) leafEval(depthToGo int) (EvalCp, bool) {
	s.stats.Nodes++

	if result := s.pos.TerminalResult(); result != board.Ongoing {
		s.stats.Mates++
		return terminalEval(result), true
	}

	if depthToGo <= 0 {
		s.stats.Leafs++
		return heuristicEval(s.pos), true
	}

	s.stats.NonLeafs++
	return DrawEval, false
}

// The value a maximizing or minimizing node starts from before any child is seen
func initialBestEval(side board.Side) EvalCp {
	if side == board.Maximizing {
		return worstForWhite
	}
	return worstForBlack
}
