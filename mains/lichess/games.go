package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guaxinim/board"
	"guaxinim/engine"
	"guaxinim/lichess"
)

type Game struct {
	ID         string
	InitialFen string
	WeAreWhite bool

	Moves  []string // List of moves in UCI format.
	Status string

	engine *engine.Engine
	log    zerolog.Logger

	isPlaying bool
	mutex     sync.Mutex
}

// PushGame starts tracking a game with a fresh engine, so caches never leak
// between games. Games already tracked are left alone.
func (state *State) PushGame(gameID string) {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	for _, game := range state.activeGames {
		if game.ID == gameID {
			return
		}
	}

	logger := log.With().Str("game", gameID).Logger()
	e, err := engine.NewEngine(state.cfg, state.book, logger)
	if err != nil {
		// the config was validated at startup
		panic(err)
	}
	state.activeGames = append(state.activeGames, &Game{
		ID:         gameID,
		InitialFen: board.StartFen,
		engine:     e,
		log:        logger,
	})
}

func (state *State) RemoveGame(gameID string) {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	var games []*Game
	for _, game := range state.activeGames {
		if game.ID != gameID {
			games = append(games, game)
		}
	}

	state.activeGames = games
}

func (state *State) GameCount() int {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	return len(state.activeGames)
}

func (state *State) games() []*Game {
	state.stateMu.Lock()
	defer state.stateMu.Unlock()

	return append([]*Game(nil), state.activeGames...)
}

func lockGame(game *Game) bool {
	game.mutex.Lock()
	defer game.mutex.Unlock()

	acquiredLock := false
	if !game.isPlaying {
		acquiredLock = true
		game.isPlaying = true
	}

	return acquiredLock
}

func unlockGame(game *Game) {
	game.mutex.Lock()
	defer game.mutex.Unlock()

	game.isPlaying = false
}

func PlayGamesForever(ctx context.Context, state *State) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		for _, game := range state.games() {
			if lockGame(game) {
				wg.Add(1)
				go func(game *Game) {
					defer wg.Done()
					defer unlockGame(game)
					playGame(ctx, state, game)
				}(game)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Follows the game stream until the game ends. The caller holds the game lock.
func playGame(ctx context.Context, state *State, game *Game) {
	gameStateCh, err := state.client.StreamGameState(ctx, game.ID)
	if err != nil {
		game.log.Error().Err(err).Msg("opening game stream")
		return
	}

	// Listen to game updates as long as we can.
	for msg := range gameStateCh {
		if err := handleMessage(ctx, state, game, msg); err != nil {
			game.log.Error().Err(err).Msg("handling game update")
			return
		}

		isOver, err := gameIsOver(game)
		if err != nil {
			game.log.Error().Err(err).Msg("replaying game")
			return
		}
		if isOver {
			game.log.Info().Str("status", game.Status).Int("moves", len(game.Moves)).Msg("game has finished")
			state.RemoveGame(game.ID)
			return
		}
	}
}

func handleMessage(ctx context.Context, state *State, game *Game, msg lichess.GameStateMessage) error {
	var anyErr error
	switch msg.Type {
	case lichess.GameFullGameStateType:
		anyErr = handleInitialGameState(state, game, msg.Data.(lichess.GameFullGameState))

	case lichess.GameStateGameStateType:
		handleGameUpdate(game, msg.Data.(lichess.GameStateGameState))

	case lichess.ChatLineGameStateType:
		chat := msg.Data.(lichess.ChatLineGameState)
		game.log.Info().Str("from", chat.Username).Str("room", chat.Room).Msg(chat.Text)

	default:
		game.log.Debug().Interface("type", msg.Data).Msg("ignoring unknown game update")
		return nil
	}

	if anyErr != nil {
		return anyErr
	}

	// If the game is not finished and it's our turn, we should move.
	isOver, err := gameIsOver(game)
	if err != nil {
		return err
	}

	ourTurn, err := isOurTurn(game)
	if err != nil {
		return err
	}
	if ourTurn && !isOver {
		return makeMove(ctx, state, game)
	}

	return nil
}

func handleInitialGameState(state *State, game *Game, initialState lichess.GameFullGameState) error {
	game.InitialFen = board.StartFen
	if initialState.InitialFen != "" && initialState.InitialFen != "startpos" {
		game.InitialFen = initialState.InitialFen
	}

	handleGameUpdate(game, initialState.State)

	if isBot(state, initialState.White) {
		game.WeAreWhite = true
	} else if isBot(state, initialState.Black) {
		game.WeAreWhite = false
	} else {
		return fmt.Errorf("bot: expected one of the players in game %s to be %s", game.ID, state.botID)
	}

	return nil
}

func isBot(state *State, user lichess.User) bool {
	return strings.EqualFold(user.ID, state.botID) || strings.EqualFold(user.Name, state.botID)
}

func handleGameUpdate(game *Game, update lichess.GameStateGameState) {
	game.Moves = update.MoveList()
	game.Status = update.Status
}

func getBoard(game *Game) (*board.Game, error) {
	g, err := board.FromFen(game.InitialFen)
	if err != nil {
		return nil, err
	}
	for _, moveStr := range game.Moves {
		if err := g.ApplyUci(moveStr); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func isOurTurn(game *Game) (bool, error) {
	g, err := getBoard(game)
	if err != nil {
		return false, err
	}

	return (g.SideToMove() == board.Maximizing) == game.WeAreWhite, nil
}

func gameIsOver(game *Game) (bool, error) {
	if (&lichess.GameStateGameState{Status: game.Status}).IsOver() {
		return true, nil
	}

	g, err := getBoard(game)
	if err != nil {
		return false, err
	}

	return g.IsTerminal(), nil
}

func makeMove(ctx context.Context, state *State, game *Game) error {
	g, err := getBoard(game)
	if err != nil {
		return err
	}

	result := game.engine.Search(g)
	game.log.Info().
		Str("move", result.MoveString()).
		Int32("eval", int32(result.Eval)).
		Bool("book", result.FromBook).
		Uint64("nodes", result.Stats.Nodes).
		Msg("playing move")

	return state.client.PostMove(ctx, game.ID, result.MoveString())
}
