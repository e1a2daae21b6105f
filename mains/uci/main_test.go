package main

import (
	"bytes"
	"strings"
	"testing"

	"guaxinim/engine"
)

func runUCI(t *testing.T, input string) string {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Depth = 1
	var out bytes.Buffer
	u, err := newUCI(cfg, nil, &out)
	if err != nil {
		t.Fatal(err)
	}
	u.loop(strings.NewReader(input))
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := runUCI(t, "uci\nisready\nquit\n")
	if !strings.Contains(out, "uciok") || !strings.Contains(out, "readyok") {
		t.Errorf("unexpected handshake output:\n%s", out)
	}
}

func TestGoFindsMate(t *testing.T) {
	out := runUCI(t, "position fen r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4\ngo\n")
	if !strings.Contains(out, "bestmove h5f7") {
		t.Errorf("expected bestmove h5f7 in:\n%s", out)
	}
}

func TestPositionWithMoves(t *testing.T) {
	// After 1.f3 e5 2.g4 black mates with Qh4
	out := runUCI(t, "position startpos moves f2f3 e7e5 g2g4\ngo depth 1\n")
	if !strings.Contains(out, "bestmove d8h4") {
		t.Errorf("expected bestmove d8h4 in:\n%s", out)
	}
}

func TestSetOption(t *testing.T) {
	out := runUCI(t, "setoption name SearchAlgorithm value PVS\nsetoption name Aspiration value true\nsetoption name SearchDepth value 0\nsetoption name Bogus value 1\n")
	if !strings.Contains(out, "SearchAlgorithm set to PVS") || !strings.Contains(out, "Aspiration set to true") {
		t.Errorf("options not applied:\n%s", out)
	}
	if !strings.Contains(out, "bad engine config") || !strings.Contains(out, "Unknown UCI option Bogus") {
		t.Errorf("bad options not reported:\n%s", out)
	}
}

func TestIllegalPositionMove(t *testing.T) {
	out := runUCI(t, "position startpos moves e2e5\nd\n")
	if !strings.Contains(out, "illegal move") || !strings.Contains(out, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Errorf("illegal move handling:\n%s", out)
	}
}
