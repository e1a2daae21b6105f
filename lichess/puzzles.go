package lichess

import (
	"context"
	"net/http"
	"net/url"
)

// PuzzleResponse is the lichess puzzle API reply. The game PGN runs up to and
// including the move that sets up the puzzle.
type PuzzleResponse struct {
	Game struct {
		ID      string
		Pgn     string
		Clock   string
		Rated   bool
		Players []struct {
			Name   string
			Color  string
			Rating int64
		}
	}
	Puzzle struct {
		ID         string
		Rating     int64
		Plays      int64
		InitialPly int
		Solution   []string
		Themes     []string
	}
}

func (lc *LichessClient) GetPuzzle(ctx context.Context, id string) (*PuzzleResponse, error) {
	res := PuzzleResponse{}
	if err := lc.doJSONRequest(ctx, http.MethodGet, "/api/puzzle/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (lc *LichessClient) GetDailyPuzzle(ctx context.Context) (*PuzzleResponse, error) {
	res := PuzzleResponse{}
	if err := lc.doJSONRequest(ctx, http.MethodGet, "/api/puzzle/daily", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
