package lichess

import (
	"context"
	"encoding/json"
)

type EventType int

const (
	UnknownEventType    EventType = 0
	ChallengeEventType  EventType = 1
	GameStartEventType  EventType = 2
	GameFinishEventType EventType = 3
)

type ChallengeEvent struct {
	Type string

	Challenge struct {
		ID     string
		Status string
		Rated  bool

		Challenger User
		DestUser   User

		Variant Variant

		TimeControl struct {
			Type      string
			Limit     int64
			Increment int64
		}
	}
}

type GameStartEvent struct {
	Type string

	Game struct {
		ID string
	}
}

type EventMessage struct {
	Type EventType
	Data interface{}
}

func (msg *EventMessage) UnmarshalJSON(bytes []byte) error {
	var header struct {
		Type string
	}
	if err := json.Unmarshal(bytes, &header); err != nil {
		return err
	}

	switch header.Type {
	case "challenge":
		var challenge ChallengeEvent
		if err := json.Unmarshal(bytes, &challenge); err != nil {
			return err
		}
		msg.Type = ChallengeEventType
		msg.Data = challenge

	case "gameStart", "gameFinish":
		var game GameStartEvent
		if err := json.Unmarshal(bytes, &game); err != nil {
			return err
		}
		msg.Type = GameStartEventType
		if header.Type == "gameFinish" {
			msg.Type = GameFinishEventType
		}
		msg.Data = game

	default:
		msg.Type = UnknownEventType
		msg.Data = header.Type
	}

	return nil
}

// StreamEvents follows the bot's incoming events until ctx is cancelled or
// the server closes the stream.
func (lc *LichessClient) StreamEvents(ctx context.Context) (<-chan EventMessage, error) {
	return streamNDJSON[EventMessage](ctx, lc, "/api/stream/event")
}
