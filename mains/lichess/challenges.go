package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"guaxinim/lichess"
)

const maxChallengeRetries = 3

type Challenge struct {
	ID         string
	Challenger lichess.User
	Variant    lichess.Variant

	Retries int
}

func (state *State) PushChallenge(challenge Challenge) {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	state.challenges = append(state.challenges, challenge)
}

func (state *State) PopChallenge() *Challenge {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	if len(state.challenges) == 0 {
		return nil
	}

	challenge := state.challenges[0]
	state.challenges = state.challenges[1:]
	return &challenge
}

// Accepts standard games while there is room, declines the rest.
func AcceptChallengesForever(ctx context.Context, state *State) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		for challenge := state.PopChallenge(); challenge != nil; challenge = state.PopChallenge() {
			handleChallenge(ctx, state, challenge)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func handleChallenge(ctx context.Context, state *State, challenge *Challenge) {
	logger := log.With().Str("challenge", challenge.ID).Str("challenger", challenge.Challenger.Name).Logger()

	var reason string
	switch {
	case challenge.Variant.Key != lichess.StandardVariant:
		reason = "standard"
	case state.GameCount() >= state.maxGame:
		reason = "later"
	}
	if reason != "" {
		logger.Info().Str("variant", challenge.Variant.Key).Str("reason", reason).Msg("declining challenge")
		if err := state.client.DeclineChallenge(ctx, challenge.ID, reason); err != nil {
			logger.Warn().Err(err).Msg("declining challenge failed")
		}
		return
	}

	if err := state.client.AcceptChallenge(ctx, challenge.ID); err != nil {
		logger.Warn().Err(err).Int("retries", challenge.Retries).Msg("accepting challenge failed")

		challenge.Retries += 1
		if challenge.Retries < maxChallengeRetries && ctx.Err() == nil {
			state.PushChallenge(*challenge)
		}
		return
	}
	logger.Info().Msg("accepted challenge")
}
