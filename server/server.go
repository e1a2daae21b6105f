// Package server exposes the engine over HTTP and websockets.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"guaxinim/board"
	"guaxinim/engine"
)

type Server struct {
	games *Manager
	cfg   engine.Config
	book  *engine.OpeningBook
	log   zerolog.Logger
}

func NewServer(cfg engine.Config, book *engine.OpeningBook, logger zerolog.Logger, opts ...ManagerOptionT) (*Server, error) {
	logger = logger.With().Str("component", "server").Logger()
	games, err := NewManager(cfg, book, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Server{games: games, cfg: cfg, book: book, log: logger}, nil
}

func (s *Server) Games() *Manager { return s.games }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", s.handleListGames)
		r.Post("/", s.handleCreateGame)
		r.Get("/{id}", s.handleGetGame)
		r.Delete("/{id}", s.handleDeleteGame)
		r.Post("/{id}/moves", s.handlePlayMove)
		r.Post("/{id}/engine", s.handleEngineMove)
	})
	r.Post("/api/bestmove", s.handleBestMove)
	r.Get("/ws/games/{id}", s.handleGameWS)

	return r
}

// Logs each request through zerolog with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, board.ErrBadFen), errors.Is(err, board.ErrBadMove),
		errors.Is(err, board.ErrIllegalMove), errors.Is(err, engine.ErrBadConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
}

// Empty bodies decode as the zero value.
func decodeBody(r *http.Request, v interface{}) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{err}
	}
	return nil
}

type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "bad request body: " + e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

func writeDecodeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"games": s.games.List()})
}

type createGameRequest struct {
	Fen string `json:"fen"`
	// Let the engine make the first move
	EngineFirst bool `json:"engine_first"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	session, err := s.games.Create(req.Fen)
	if err != nil {
		writeError(w, err)
		return
	}

	state := session.State()
	if req.EngineFirst {
		if state, err = session.EngineMove(); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.State())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type playMoveRequest struct {
	Move string `json:"move"`
	// Ask the engine to answer in the same request
	Reply bool `json:"reply"`
}

func (s *Server) handlePlayMove(w http.ResponseWriter, r *http.Request) {
	session, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req playMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	state, err := session.Play(req.Move, req.Reply)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEngineMove(w http.ResponseWriter, r *http.Request) {
	session, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	state, err := session.EngineMove()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type bestMoveRequest struct {
	Fen       string                   `json:"fen"`
	Depth     int                      `json:"depth,omitempty"`
	Algorithm *engine.SearchAlgorithmT `json:"algorithm,omitempty"`
}

type bestMoveResponse struct {
	Move     string `json:"move"`
	Eval     int32  `json:"eval"`
	Depth    int    `json:"depth"`
	FromBook bool   `json:"from_book"`
	Nodes    uint64 `json:"nodes"`
}

// Deepest search a single request may ask for
const maxRequestDepth = 8

// Stateless: a fresh engine per request, so nothing is cached between calls.
func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	var req bestMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	cfg := s.cfg
	if req.Depth > maxRequestDepth {
		writeError(w, fmt.Errorf("%w: depth %d above the server limit %d", engine.ErrBadConfig, req.Depth, maxRequestDepth))
		return
	}
	if req.Depth != 0 {
		cfg.Depth = req.Depth
	}
	if req.Algorithm != nil {
		cfg.Algorithm = *req.Algorithm
		if cfg.Algorithm != engine.PVS {
			cfg.Aspiration = false
		}
	}

	game, err := board.FromFen(req.Fen)
	if err != nil {
		writeError(w, err)
		return
	}
	if game.IsTerminal() {
		writeError(w, ErrGameOver)
		return
	}

	e, err := engine.NewEngine(cfg, s.book, s.log)
	if err != nil {
		writeError(w, err)
		return
	}
	result := e.Search(game)

	writeJSON(w, http.StatusOK, bestMoveResponse{
		Move:     result.MoveString(),
		Eval:     int32(result.Eval),
		Depth:    result.Depth,
		FromBook: result.FromBook,
		Nodes:    result.Stats.Nodes,
	})
}
