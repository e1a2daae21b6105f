package lichess

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

type GameStateType int

const (
	UnknownGameStateType   GameStateType = 0
	GameFullGameStateType  GameStateType = 1
	GameStateGameStateType GameStateType = 2
	ChatLineGameStateType  GameStateType = 3
)

type GameFullGameState struct {
	ID    string
	Type  string
	Rated bool

	White   User
	Black   User
	Variant Variant
	Clock   Clock

	InitialFen string
	State      GameStateGameState
}

type GameStateGameState struct {
	Type  string
	Moves string

	WTime int64 // ms
	WInc  int64

	BTime int64 // ms
	BInc  int64

	// "started" while the game is on
	Status string
	Winner string
}

// MoveList splits the space separated UCI moves.
func (state *GameStateGameState) MoveList() []string {
	return strings.Fields(state.Moves)
}

func (state *GameStateGameState) IsOver() bool {
	return state.Status != "" && state.Status != "started" && state.Status != "created"
}

type ChatLineGameState struct {
	Type     string
	Username string
	Text     string
	Room     string
}

type GameStateMessage struct {
	Type GameStateType
	Data interface{}
}

func (msg *GameStateMessage) UnmarshalJSON(bytes []byte) error {
	var header struct {
		Type string
	}
	if err := json.Unmarshal(bytes, &header); err != nil {
		return err
	}

	switch header.Type {
	case "gameFull":
		var gameFull GameFullGameState
		if err := json.Unmarshal(bytes, &gameFull); err != nil {
			return err
		}
		msg.Type = GameFullGameStateType
		msg.Data = gameFull

	case "gameState":
		var gameState GameStateGameState
		if err := json.Unmarshal(bytes, &gameState); err != nil {
			return err
		}
		msg.Type = GameStateGameStateType
		msg.Data = gameState

	case "chatLine":
		var chatLine ChatLineGameState
		if err := json.Unmarshal(bytes, &chatLine); err != nil {
			return err
		}
		msg.Type = ChatLineGameStateType
		msg.Data = chatLine

	default:
		msg.Type = UnknownGameStateType
		msg.Data = header.Type
	}

	return nil
}

func (lc *LichessClient) StreamGameState(ctx context.Context, id string) (<-chan GameStateMessage, error) {
	return streamNDJSON[GameStateMessage](ctx, lc, "/api/bot/game/stream/"+url.PathEscape(id))
}

func (lc *LichessClient) PostMove(ctx context.Context, id, moveUCI string) error {
	return lc.doOkRequest(ctx, http.MethodPost, "/api/bot/game/"+url.PathEscape(id)+"/move/"+moveUCI, nil)
}
