package main

import (
	"sync"

	"guaxinim/engine"
	"guaxinim/lichess"
)

// State is shared by the event, challenge and game loops.
type State struct {
	client  *lichess.LichessClient
	botID   string
	cfg     engine.Config
	book    *engine.OpeningBook
	maxGame int

	stateMu     sync.Mutex
	challenges  []Challenge
	activeGames []*Game
}

func NewState(client *lichess.LichessClient, botID string, cfg engine.Config, book *engine.OpeningBook, maxGames int) *State {
	return &State{
		client:  client,
		botID:   botID,
		cfg:     cfg,
		book:    book,
		maxGame: maxGames,
	}
}
