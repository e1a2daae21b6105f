package server

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"guaxinim/board"
	"guaxinim/engine"
)

var ErrGameNotFound = errors.New("game not found")
var ErrGameOver = errors.New("game is over")

const DefaultMaxGames = 1000
const DefaultIdleTimeout = time.Hour

// Manager owns the games being played. Each game has its own engine so the
// engine caches follow that game only. Games idle for longer than the idle
// timeout are dropped by Sweep, and creating a game past the cap drops the
// least recently used one.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Session

	cfg  engine.Config
	book *engine.OpeningBook
	log  zerolog.Logger

	maxGames    int
	idleTimeout time.Duration
	now         func() time.Time
}

type ManagerOptionT func(*Manager)

func WithMaxGames(n int) ManagerOptionT {
	return func(m *Manager) {
		m.maxGames = max(n, 1)
	}
}

func WithIdleTimeout(d time.Duration) ManagerOptionT {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

func NewManager(cfg engine.Config, book *engine.OpeningBook, logger zerolog.Logger, opts ...ManagerOptionT) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		games:       make(map[string]*Session),
		cfg:         cfg,
		book:        book,
		log:         logger,
		maxGames:    DefaultMaxGames,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create starts a game from the FEN, or the standard position when fen is empty.
func (m *Manager) Create(fen string) (*Session, error) {
	game := board.NewGame()
	if fen != "" {
		var err error
		if game, err = board.FromFen(fen); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	e, err := engine.NewEngine(m.cfg, m.book, m.log.With().Str("game", id).Logger())
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{ID: id, Created: now, game: game, engine: e}
	s.touch(now)

	m.mu.Lock()
	m.sweepLocked(now)
	if len(m.games) >= m.maxGames {
		m.evictLocked()
	}
	m.games[id] = s
	m.mu.Unlock()

	m.log.Info().Str("game", id).Str("fen", game.Fen()).Msg("game created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	s.touch(m.now())
	return s, nil
}

// Sweep drops idle games and returns how many went.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sweepLocked(m.now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	idle := lo.Filter(lo.Values(m.games), func(s *Session, _ int) bool {
		return now.Sub(s.lastUsed()) > m.idleTimeout
	})
	for _, s := range idle {
		delete(m.games, s.ID)
		m.log.Info().Str("game", s.ID).Msg("idle game dropped")
	}
	return len(idle)
}

func (m *Manager) evictLocked() {
	if len(m.games) == 0 {
		return
	}
	oldest := lo.MinBy(lo.Values(m.games), func(a, b *Session) bool {
		return a.lastUsed().Before(b.lastUsed())
	})
	delete(m.games, oldest.ID)
	m.log.Info().Str("game", oldest.ID).Int("max_games", m.maxGames).Msg("least recently used game dropped")
}

// SweepEvery runs Sweep on a ticker until done is closed.
func (m *Manager) SweepEvery(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	delete(m.games, id)
	return nil
}

// IDs of the live games, oldest first
func (m *Manager) List() []string {
	m.mu.RLock()
	sessions := lo.Values(m.games)
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Created.Before(sessions[j].Created) })
	return lo.Map(sessions, func(s *Session, _ int) string { return s.ID })
}

// Session is one game and its engine. Methods serialise on the session lock.
type Session struct {
	ID      string
	Created time.Time

	// Unix nanoseconds of the last lookup
	used atomic.Int64

	mu     sync.Mutex
	game   *board.Game
	engine *engine.Engine
	// The engine's most recent reply, if any
	lastReply *engine.Result
}

func (s *Session) touch(now time.Time) { s.used.Store(now.UnixNano()) }

func (s *Session) lastUsed() time.Time { return time.Unix(0, s.used.Load()) }

type StateT struct {
	ID         string   `json:"id"`
	Fen        string   `json:"fen"`
	SideToMove string   `json:"side_to_move"`
	LegalMoves []string `json:"legal_moves"`
	Result     string   `json:"result"`
	Ply        int      `json:"ply"`
	InCheck    bool     `json:"in_check"`

	EngineMove string `json:"engine_move,omitempty"`
	EngineEval *int32 `json:"engine_eval,omitempty"`
	FromBook   bool   `json:"from_book,omitempty"`
}

func (s *Session) State() StateT {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state()
}

func (s *Session) state() StateT {
	legal := s.game.LegalMoves()
	state := StateT{
		ID:         s.ID,
		Fen:        s.game.Fen(),
		SideToMove: s.game.SideToMove().String(),
		LegalMoves: make([]string, len(legal)),
		Result:     s.game.TerminalResult().String(),
		Ply:        s.game.Ply(),
		InCheck:    s.game.InCheck(),
	}
	for i := range legal {
		state.LegalMoves[i] = legal[i].String()
	}
	if s.lastReply != nil {
		state.EngineMove = s.lastReply.MoveString()
		state.FromBook = s.lastReply.FromBook
		if !s.lastReply.FromBook {
			eval := int32(s.lastReply.Eval)
			state.EngineEval = &eval
		}
	}
	return state
}

// Play applies a coordinate-form move and, if reply is set and the game goes
// on, the engine's answer.
func (s *Session) Play(uci string, reply bool) (StateT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())

	if s.game.IsTerminal() {
		return s.state(), fmt.Errorf("%w: %s", ErrGameOver, s.game.TerminalResult())
	}
	if err := s.game.ApplyUci(uci); err != nil {
		return s.state(), err
	}
	s.lastReply = nil

	if reply && !s.game.IsTerminal() {
		s.reply()
	}
	return s.state(), nil
}

// EngineMove lets the engine play the side to move.
func (s *Session) EngineMove() (StateT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())

	if s.game.IsTerminal() {
		return s.state(), fmt.Errorf("%w: %s", ErrGameOver, s.game.TerminalResult())
	}
	s.reply()
	return s.state(), nil
}

func (s *Session) reply() {
	result := s.engine.Search(s.game)
	s.game.Apply(result.Move)
	s.lastReply = &result
}
