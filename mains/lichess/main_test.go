package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"guaxinim/engine"
	"guaxinim/lichess"
)

const scholarsMateInOne = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"

type fakeLichess struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeLichess) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.String()+" "+r.FormValue("reason"))
}

func (f *fakeLichess) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newTestState(t *testing.T, handler http.HandlerFunc) *State {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := lichess.NewLichessClient("secret", zerolog.Nop(), lichess.WithHost(srv.URL), lichess.WithRateLimit(time.Millisecond, 2))
	cfg := engine.Config{Depth: 1, Algorithm: engine.AlphaBetaTT}
	return NewState(client, "guaxinim", cfg, nil, 2)
}

func TestPlayGameMovesAndFinishes(t *testing.T) {
	fake := &fakeLichess{}
	state := newTestState(t, func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		switch r.URL.Path {
		case "/api/bot/game/stream/g1":
			fmt.Fprintf(w, `{"type": "gameFull", "id": "g1", "white": {"id": "guaxinim", "name": "Guaxinim"}, "black": {"id": "someone", "name": "someone"}, "initialFen": %q, "state": {"type": "gameState", "moves": "", "status": "started"}}`+"\n", scholarsMateInOne)
			fmt.Fprintln(w, `{"type": "gameState", "moves": "h5f7", "status": "mate", "winner": "white"}`)
		default:
			fmt.Fprint(w, `{"ok": true}`)
		}
	})

	state.PushGame("g1")
	state.PushGame("g1")
	if n := state.GameCount(); n != 1 {
		t.Fatalf("tracking %d games, expected 1", n)
	}

	game := state.games()[0]
	playGame(context.Background(), state, game)

	requests := fake.seen()
	if len(requests) != 2 || requests[1] != "POST /api/bot/game/g1/move/h5f7 " {
		t.Errorf("unexpected requests %q", requests)
	}
	if state.GameCount() != 0 {
		t.Errorf("finished game still tracked")
	}
}

func TestOpponentToMove(t *testing.T) {
	fake := &fakeLichess{}
	state := newTestState(t, func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		fmt.Fprintln(w, `{"type": "gameFull", "id": "g2", "white": {"id": "someone"}, "black": {"id": "guaxinim"}, "initialFen": "startpos", "state": {"type": "gameState", "moves": "e2e4 e7e5", "status": "started"}}`)
		fmt.Fprintln(w, `{"type": "chatLine", "username": "someone", "text": "hi", "room": "player"}`)
		fmt.Fprintln(w, `{"type": "gameState", "moves": "e2e4 e7e5", "status": "resign", "winner": "black"}`)
	})

	state.PushGame("g2")
	game := state.games()[0]
	playGame(context.Background(), state, game)

	if game.WeAreWhite {
		t.Errorf("bot should be black")
	}
	if requests := fake.seen(); len(requests) != 1 {
		t.Errorf("expected only the stream request, got %q", requests)
	}
}

func TestStrangerGameIsAnError(t *testing.T) {
	game := &Game{ID: "g3"}
	state := &State{botID: "guaxinim"}
	err := handleInitialGameState(state, game, lichess.GameFullGameState{
		White:      lichess.User{ID: "a"},
		Black:      lichess.User{ID: "b"},
		InitialFen: "startpos",
	})
	if err == nil {
		t.Errorf("expected an error for a game without the bot")
	}
}

func TestChallenges(t *testing.T) {
	fake := &fakeLichess{}
	state := newTestState(t, func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		fmt.Fprint(w, `{"ok": true}`)
	})

	handleEvent(state, lichess.EventMessage{Type: lichess.ChallengeEventType, Data: challengeEvent("c1", "chess960")})
	handleEvent(state, lichess.EventMessage{Type: lichess.ChallengeEventType, Data: challengeEvent("c2", lichess.StandardVariant)})

	for c := state.PopChallenge(); c != nil; c = state.PopChallenge() {
		handleChallenge(context.Background(), state, c)
	}

	expected := []string{
		"POST /api/challenge/c1/decline standard",
		"POST /api/challenge/c2/accept ",
	}
	requests := fake.seen()
	if len(requests) != len(expected) {
		t.Fatalf("unexpected requests %q", requests)
	}
	for i := range expected {
		if requests[i] != expected[i] {
			t.Errorf("request %d is %q expected %q", i, requests[i], expected[i])
		}
	}
}

func TestChallengesDeclinedWhenBusy(t *testing.T) {
	fake := &fakeLichess{}
	state := newTestState(t, func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		fmt.Fprint(w, `{"ok": true}`)
	})
	state.PushGame("g1")
	state.PushGame("g2")

	handleChallenge(context.Background(), state, &Challenge{ID: "c3", Variant: lichess.Variant{Key: lichess.StandardVariant}})
	if requests := fake.seen(); len(requests) != 1 || requests[0] != "POST /api/challenge/c3/decline later" {
		t.Errorf("unexpected requests %q", requests)
	}
}

func challengeEvent(id, variant string) lichess.ChallengeEvent {
	var event lichess.ChallengeEvent
	event.Challenge.ID = id
	event.Challenge.Variant.Key = variant
	return event
}
