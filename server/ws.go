package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client to server
type wsRequest struct {
	Move string `json:"move"`
	// Ask the engine to move for the side to move instead
	Engine bool `json:"engine"`
}

// Server to client
type wsMessage struct {
	Type  string  `json:"type"` // state, error or ping
	State *StateT `json:"state,omitempty"`
	Error string  `json:"error,omitempty"`
}

func mustMarshal(v interface{}) []byte {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bytes
}

// handleGameWS streams one game: every move the client sends is answered
// with the engine's reply and the new state.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	session, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.With().Str("game", session.ID).Logger()
	send := make(chan []byte, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := writeWSWithHeartbeat(conn, send); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
		}
	}()
	defer func() {
		close(send)
		<-done
	}()

	// False once the writer has given up
	push := func(msg wsMessage) bool {
		select {
		case send <- mustMarshal(msg):
			return true
		case <-done:
			return false
		}
	}

	state := session.State()
	if !push(wsMessage{Type: "state", State: &state}) {
		return
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		var state StateT
		var err error
		if req.Engine {
			state, err = session.EngineMove()
		} else {
			state, err = session.Play(req.Move, true)
		}
		msg := wsMessage{Type: "state", State: &state}
		if err != nil {
			msg = wsMessage{Type: "error", Error: err.Error()}
		}
		if !push(msg) {
			return
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
