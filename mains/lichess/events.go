package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"guaxinim/lichess"
)

var errEventStreamClosed = errors.New("bot: event stream closed")

func ListenForEventsForever(ctx context.Context, state *State) error {
	eventsChannel, err := state.client.StreamEvents(ctx)
	if err != nil {
		return err
	}

	for msg := range eventsChannel {
		handleEvent(state, msg)
	}

	if ctx.Err() != nil {
		return nil
	}
	return errEventStreamClosed
}

func handleEvent(state *State, msg lichess.EventMessage) {
	switch msg.Type {
	case lichess.ChallengeEventType:
		challenge := msg.Data.(lichess.ChallengeEvent)
		state.PushChallenge(Challenge{
			ID:         challenge.Challenge.ID,
			Challenger: challenge.Challenge.Challenger,
			Variant:    challenge.Challenge.Variant,
		})

	case lichess.GameStartEventType:
		gameStart := msg.Data.(lichess.GameStartEvent)
		state.PushGame(gameStart.Game.ID)

	case lichess.GameFinishEventType:
		// The game's own stream reports the end and removes it.
		log.Debug().Str("game", msg.Data.(lichess.GameStartEvent).Game.ID).Msg("game finished")

	default:
		log.Debug().Interface("event", msg.Data).Msg("ignoring unknown event")
	}
}
