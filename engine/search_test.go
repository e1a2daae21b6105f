package engine

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"guaxinim/board"
)

var italian = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
var scholarsMateInOne = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"
var foolsMateInOne = "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2"
var pawnEnding = "8/5k2/8/3p4/3P4/8/5K2/8 w - - 0 1"

type searchConfigT struct {
	name string
	cfg  Config
}

func searchConfigs(depth int) []searchConfigT {
	return []searchConfigT{
		{"minimax", Config{Depth: depth, Algorithm: MiniMax}},
		{"alphabeta", Config{Depth: depth, Algorithm: AlphaBeta}},
		{"alphabeta-checks", Config{Depth: depth, Algorithm: AlphaBeta, OrderChecks: true}},
		{"alphabeta-tt", Config{Depth: depth, Algorithm: AlphaBetaTT}},
		{"pvs", Config{Depth: depth, Algorithm: PVS}},
		{"pvs-aspiration", Config{Depth: depth, Algorithm: PVS, Aspiration: true, AspirationWindow: 20}},
	}
}

func mustEngine(t *testing.T, cfg Config, book *OpeningBook) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, book, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(%+v): %v", cfg, err)
	}
	return e
}

// All variants agree with plain minimax on the score.
func TestSearchVariantsAgree(t *testing.T) {
	fens := []string{board.StartFen, italian, whiteDownAKnight, blackDownARook, pawnEnding}

	for _, fen := range fens {
		for depth := 1; depth <= 3; depth++ {
			var expected EvalCp
			for i, sc := range searchConfigs(depth) {
				g := mustGame(t, fen)
				result := mustEngine(t, sc.cfg, nil).Search(g)

				if i == 0 {
					expected = result.Eval
				} else if result.Eval != expected {
					t.Errorf("%s depth %d: %s eval %d, minimax eval %d", fen, depth, sc.name, result.Eval, expected)
				}
				if g.Fen() != mustGame(t, fen).Fen() || g.Ply() != 0 {
					t.Errorf("%s depth %d: %s left the position at %s", fen, depth, sc.name, g.Fen())
				}
			}
		}
	}
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		eval EvalCp
	}{
		{scholarsMateInOne, "h5f7", WhiteCheckMateEval},
		{foolsMateInOne, "d8h4", BlackCheckMateEval},
	}

	for _, tt := range tests {
		for depth := 1; depth <= 3; depth++ {
			for _, sc := range searchConfigs(depth) {
				result := mustEngine(t, sc.cfg, nil).Search(mustGame(t, tt.fen))
				if result.Eval != tt.eval {
					t.Errorf("%s depth %d: %s eval %d expected %d", tt.fen, depth, sc.name, result.Eval, tt.eval)
				}
				// Deeper searches may find a slower mate first
				if depth == 1 && result.MoveString() != tt.move {
					t.Errorf("%s depth 1: %s played %s expected %s", tt.fen, sc.name, result.MoveString(), tt.move)
				}
			}
		}
	}
}

func TestStalemateScoresZero(t *testing.T) {
	for _, fen := range []string{whiteInStalemate, blackInStalemate} {
		for depth := 0; depth <= 3; depth++ {
			g := mustGame(t, fen)
			s := &SearchT{pos: g, stats: &SearchStatsT{}, tt: NewTranspositionCache(), orderer: NewMoveOrderer(false)}

			results := map[string]EvalCp{}
			_, results["minimax"] = s.MiniMax(depth)
			_, results["alphabeta"] = s.AlphaBeta(depth, BlackCheckMateEval, WhiteCheckMateEval)
			_, results["alphabeta-tt"] = s.AlphaBetaTT(depth, BlackCheckMateEval, WhiteCheckMateEval)
			_, results["pvs"] = s.PVS(depth, BlackCheckMateEval, WhiteCheckMateEval)

			for name, eval := range results {
				if eval != DrawEval {
					t.Errorf("%s depth %d: %s eval %d expected 0", fen, depth, name, eval)
				}
			}
		}
	}
}

func TestStartPositionDepthOne(t *testing.T) {
	g := board.NewGame()
	legal := map[string]bool{}
	for _, m := range moveStrings(g.LegalMoves()) {
		legal[m] = true
	}

	for _, sc := range searchConfigs(1) {
		move := mustEngine(t, sc.cfg, nil).BestMove(g)
		if !legal[move.String()] {
			t.Errorf("%s played %s, not a legal opening move", sc.name, move.String())
		}
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	for _, sc := range searchConfigs(3) {
		e := mustEngine(t, sc.cfg, nil)
		g := mustGame(t, italian)

		first := e.Search(g)
		second := e.Search(g)
		if first.Move != second.Move {
			t.Errorf("%s played %s then %s", sc.name, first.MoveString(), second.MoveString())
		}

		fresh := mustEngine(t, sc.cfg, nil).Search(mustGame(t, italian))
		if fresh.Move != first.Move {
			t.Errorf("%s: fresh engine played %s, first engine %s", sc.name, fresh.MoveString(), first.MoveString())
		}
	}
}

func TestOpeningBookHit(t *testing.T) {
	book, err := NewOpeningBook(map[string]string{startFingerprint: "g1f3"})
	if err != nil {
		t.Fatal(err)
	}
	e := mustEngine(t, Config{Depth: 3, Algorithm: AlphaBetaTT}, book)

	result := e.Search(board.NewGame())
	if !result.FromBook || result.MoveString() != "g1f3" {
		t.Errorf("book search gave %+v", result)
	}
	if e.Stats().Nodes != 0 {
		t.Errorf("book hit visited %d nodes", e.Stats().Nodes)
	}

	// Not in the book: searched normally
	result = e.Search(mustGame(t, italian))
	if result.FromBook || e.Stats().Nodes == 0 {
		t.Errorf("search outside the book gave %+v", result)
	}
}

func TestSearchAgesCaches(t *testing.T) {
	e := mustEngine(t, Config{Depth: 2, Algorithm: AlphaBetaTT}, nil)
	g := board.NewGame()

	e.Search(g)
	lifetime, ok := e.tt.Lifetime(g.Fingerprint())
	if !ok || lifetime != 2 {
		t.Errorf("root entry lifetime after one search is %d (%v), expected 2", lifetime, ok)
	}

	// A book hit still ages the caches
	book, _ := NewOpeningBook(map[string]string{startFingerprint: "e2e4"})
	e.book = book
	e.Search(g)
	if lifetime, _ := e.tt.Lifetime(g.Fingerprint()); lifetime != 1 {
		t.Errorf("root entry lifetime after a book hit is %d, expected 1", lifetime)
	}

	e.Reset()
	if e.TTLen() != 0 {
		t.Errorf("Reset left %d cache entries", e.TTLen())
	}
}

func TestSearchPanicsWhenGameIsOver(t *testing.T) {
	for _, fen := range []string{whiteInCheckmate, blackInStalemate} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Search(%s) did not panic", fen)
				}
			}()
			mustEngine(t, DefaultConfig(), nil).Search(mustGame(t, fen))
		}()
	}
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	nodes := map[SearchAlgorithmT]uint64{}
	for _, a := range []SearchAlgorithmT{MiniMax, AlphaBeta} {
		e := mustEngine(t, Config{Depth: 3, Algorithm: a}, nil)
		e.Search(mustGame(t, italian))
		nodes[a] = e.Stats().Nodes
	}
	if nodes[AlphaBeta] >= nodes[MiniMax] {
		t.Errorf("alpha-beta visited %d nodes, minimax %d", nodes[AlphaBeta], nodes[MiniMax])
	}
}

func ExampleEngine_Search() {
	e, _ := NewEngine(Config{Depth: 1, Algorithm: AlphaBetaTT}, nil, zerolog.Nop())
	g, _ := board.FromFen(scholarsMateInOne)
	result := e.Search(g)
	fmt.Println(result.MoveString(), result.Eval == WhiteCheckMateEval)
	// Output: h5f7 true
}

// Engines that keep their caches through a game score every position the
// same as a fresh uncached alpha-beta search.
func TestCachedEnginesAgreeThroughAGame(t *testing.T) {
	line := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "d2d3", "f8c5", "e1g1", "d7d6"}

	for depth := 2; depth <= 3; depth++ {
		persistent := map[string]*Engine{
			"alphabeta-tt":   mustEngine(t, Config{Depth: depth, Algorithm: AlphaBetaTT}, nil),
			"pvs":            mustEngine(t, Config{Depth: depth, Algorithm: PVS, OrderChecks: true}, nil),
			"pvs-aspiration": mustEngine(t, Config{Depth: depth, Algorithm: PVS, Aspiration: true, AspirationWindow: 20}, nil),
		}

		g := board.NewGame()
		for ply, uci := range line {
			expected := mustEngine(t, Config{Depth: depth, Algorithm: AlphaBeta}, nil).Search(g).Eval
			for name, e := range persistent {
				if eval := e.Search(g).Eval; eval != expected {
					t.Errorf("depth %d ply %d: %s eval %d, fresh alpha-beta %d", depth, ply, name, eval, expected)
				}
			}
			if err := g.ApplyUci(uci); err != nil {
				t.Fatalf("ply %d: %v", ply, err)
			}
		}
	}
}
