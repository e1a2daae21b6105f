package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"guaxinim/engine"
)

var scholarsMateInOne = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(engine.Config{Depth: 2, Algorithm: engine.AlphaBetaTT}, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func TestCreateAndPlay(t *testing.T) {
	_, srv := newTestServer(t)

	var state StateT
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/games", nil, &state); status != http.StatusCreated {
		t.Fatalf("create returned %d", status)
	}
	if state.ID == "" || len(state.LegalMoves) != 20 || state.SideToMove != "white" || state.Result != "*" {
		t.Errorf("unexpected new game %+v", state)
	}

	var played StateT
	status := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+state.ID+"/moves", playMoveRequest{Move: "e2e4", Reply: true}, &played)
	if status != http.StatusOK {
		t.Fatalf("play returned %d", status)
	}
	if played.Ply != 2 || played.SideToMove != "white" || played.EngineMove == "" || played.EngineEval == nil {
		t.Errorf("unexpected state after move and reply %+v", played)
	}

	var got StateT
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/games/"+state.ID, nil, &got); status != http.StatusOK {
		t.Fatalf("get returned %d", status)
	}
	if got.Fen != played.Fen {
		t.Errorf("get returned %s, expected %s", got.Fen, played.Fen)
	}

	var list map[string][]string
	doJSON(t, http.MethodGet, srv.URL+"/api/games", nil, &list)
	if len(list["games"]) != 1 || list["games"][0] != state.ID {
		t.Errorf("unexpected game list %v", list)
	}

	if status := doJSON(t, http.MethodDelete, srv.URL+"/api/games/"+state.ID, nil, nil); status != http.StatusNoContent {
		t.Errorf("delete returned %d", status)
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/games/"+state.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("get after delete returned %d", status)
	}
}

func TestPlayErrors(t *testing.T) {
	_, srv := newTestServer(t)

	var state StateT
	doJSON(t, http.MethodPost, srv.URL+"/api/games", createGameRequest{Fen: scholarsMateInOne}, &state)

	var errRes errorResponse
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+state.ID+"/moves", playMoveRequest{Move: "e2e5"}, &errRes); status != http.StatusBadRequest {
		t.Errorf("illegal move returned %d", status)
	}
	if errRes.Error == "" {
		t.Errorf("illegal move returned no error message")
	}

	if status := doJSON(t, http.MethodPost, srv.URL+"/api/games/nope/moves", playMoveRequest{Move: "e2e4"}, nil); status != http.StatusNotFound {
		t.Errorf("move in an unknown game returned %d", status)
	}

	// Mate ends the game
	var mated StateT
	doJSON(t, http.MethodPost, srv.URL+"/api/games/"+state.ID+"/moves", playMoveRequest{Move: "h5f7", Reply: true}, &mated)
	if mated.Result != "1-0" || mated.EngineMove != "" {
		t.Errorf("unexpected state after mate %+v", mated)
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+state.ID+"/moves", playMoveRequest{Move: "e8e7"}, nil); status != http.StatusConflict {
		t.Errorf("move after mate returned %d", status)
	}

	for _, fen := range []string{"not a fen", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"} {
		if status := doJSON(t, http.MethodPost, srv.URL+"/api/games", createGameRequest{Fen: fen}, nil); status != http.StatusBadRequest {
			t.Errorf("bad fen %q returned %d", fen, status)
		}
	}
}

func TestEngineFirst(t *testing.T) {
	_, srv := newTestServer(t)

	var state StateT
	doJSON(t, http.MethodPost, srv.URL+"/api/games", createGameRequest{EngineFirst: true}, &state)
	if state.Ply != 1 || state.SideToMove != "black" || state.EngineMove == "" {
		t.Errorf("unexpected state after engine first move %+v", state)
	}
}

func TestBestMove(t *testing.T) {
	_, srv := newTestServer(t)

	var res bestMoveResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/bestmove", map[string]interface{}{"fen": scholarsMateInOne, "depth": 1, "algorithm": "pvs"}, &res)
	if status != http.StatusOK {
		t.Fatalf("bestmove returned %d", status)
	}
	if res.Move != "h5f7" || res.Eval != int32(engine.WhiteCheckMateEval) || res.Depth != 1 {
		t.Errorf("unexpected best move %+v", res)
	}

	bad := []map[string]interface{}{
		{"fen": "8/8/8/8"},
		{"fen": scholarsMateInOne, "algorithm": "negascout"},
		{"fen": scholarsMateInOne, "depth": 40},
		// black is in check with white to move
		{"fen": "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"},
		{"fen": "4k3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - e3 0 1"},
	}
	for _, body := range bad {
		if status := doJSON(t, http.MethodPost, srv.URL+"/api/bestmove", body, nil); status != http.StatusBadRequest {
			t.Errorf("bestmove %v returned %d", body, status)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	if errorStatus(ErrGameNotFound) != http.StatusNotFound || errorStatus(ErrGameOver) != http.StatusConflict {
		t.Errorf("unexpected sentinel status")
	}
	if errorStatus(errors.New("boom")) != http.StatusInternalServerError {
		t.Errorf("unexpected status for an unknown error")
	}
}

func TestGameWebsocket(t *testing.T) {
	_, srv := newTestServer(t)

	var state StateT
	doJSON(t, http.MethodPost, srv.URL+"/api/games", nil, &state)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/games/" + state.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "state" || msg.State.Ply != 0 {
		t.Fatalf("unexpected greeting %+v, %v", msg, err)
	}

	if err := conn.WriteJSON(wsRequest{Move: "d2d4"}); err != nil {
		t.Fatal(err)
	}
	msg = wsMessage{}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "state" || msg.State.Ply != 2 || msg.State.EngineMove == "" {
		t.Errorf("unexpected reply %+v, %v", msg, err)
	}

	if err := conn.WriteJSON(wsRequest{Move: "d4d6"}); err != nil {
		t.Fatal(err)
	}
	msg = wsMessage{}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "error" {
		t.Errorf("illegal move gave %+v, %v", msg, err)
	}
}

func TestGameWebsocketUnknownGame(t *testing.T) {
	_, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/games/missing"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("Dial to an unknown game succeeded")
	}
	if res == nil || res.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected response %v", res)
	}
}

type fakeClockT struct{ now time.Time }

func (c *fakeClockT) Now() time.Time { return c.now }

func newTestManager(t *testing.T, opts ...ManagerOptionT) (*Manager, *fakeClockT) {
	t.Helper()
	m, err := NewManager(engine.Config{Depth: 1, Algorithm: engine.AlphaBeta}, nil, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClockT{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.now = clock.Now
	return m, clock
}

func mustCreate(t *testing.T, m *Manager) *Session {
	t.Helper()
	s, err := m.Create("")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestManagerDropsLeastRecentlyUsed(t *testing.T) {
	m, clock := newTestManager(t, WithMaxGames(2))

	a := mustCreate(t, m)
	clock.now = clock.now.Add(time.Second)
	b := mustCreate(t, m)
	clock.now = clock.now.Add(time.Second)
	if _, err := m.Get(a.ID); err != nil {
		t.Fatal(err)
	}
	clock.now = clock.now.Add(time.Second)
	c := mustCreate(t, m)

	if _, err := m.Get(b.ID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("least recently used game still live: %v", err)
	}
	for _, s := range []*Session{a, c} {
		if _, err := m.Get(s.ID); err != nil {
			t.Errorf("Get(%s): %v", s.ID, err)
		}
	}
	if n := len(m.List()); n != 2 {
		t.Errorf("%d live games, expected 2", n)
	}
}

func TestManagerSweepsIdleGames(t *testing.T) {
	m, clock := newTestManager(t, WithIdleTimeout(time.Minute))

	idle := mustCreate(t, m)
	clock.now = clock.now.Add(50 * time.Second)
	busy := mustCreate(t, m)

	clock.now = clock.now.Add(20 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep dropped %d games, expected 1", n)
	}
	if _, err := m.Get(idle.ID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("idle game still live: %v", err)
	}
	if _, err := m.Get(busy.ID); err != nil {
		t.Errorf("busy game dropped: %v", err)
	}

	// Creating a game sweeps too
	clock.now = clock.now.Add(2 * time.Minute)
	mustCreate(t, m)
	if n := len(m.List()); n != 1 {
		t.Errorf("%d live games after a create, expected 1", n)
	}
}
