package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadConfig = errors.New("bad engine config")

// Configuration options
type SearchAlgorithmT int

const (
	MiniMax SearchAlgorithmT = iota
	AlphaBeta
	AlphaBetaTT
	PVS
)

var searchAlgorithmNames = map[SearchAlgorithmT]string{
	MiniMax:     "MiniMax",
	AlphaBeta:   "AlphaBeta",
	AlphaBetaTT: "AlphaBetaTT",
	PVS:         "PVS",
}

func (a SearchAlgorithmT) String() string {
	if name, ok := searchAlgorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("SearchAlgorithmT(%d)", int(a))
}

// ParseSearchAlgorithm is case-insensitive.
func ParseSearchAlgorithm(s string) (SearchAlgorithmT, error) {
	for a, name := range searchAlgorithmNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return MiniMax, fmt.Errorf("%w: unknown search algorithm %q", ErrBadConfig, s)
}

func (a SearchAlgorithmT) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *SearchAlgorithmT) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

const MinDepth = 1
const MaxDepth = 64

type Config struct {
	Depth     int              `json:"depth"`
	Algorithm SearchAlgorithmT `json:"algorithm"`
	// Iterative deepening with an aspiration window, PVS only
	Aspiration       bool   `json:"aspiration"`
	AspirationWindow EvalCp `json:"aspiration_window"`
	// Rank moves that give check above their class when ordering
	OrderChecks bool `json:"order_checks"`
}

func DefaultConfig() Config {
	return Config{
		Depth:            4,
		Algorithm:        AlphaBetaTT,
		AspirationWindow: 50,
	}
}

func (c Config) Validate() error {
	if c.Depth < MinDepth || c.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d not in [%d, %d]", ErrBadConfig, c.Depth, MinDepth, MaxDepth)
	}
	if _, ok := searchAlgorithmNames[c.Algorithm]; !ok {
		return fmt.Errorf("%w: %v", ErrBadConfig, c.Algorithm)
	}
	if c.Aspiration && c.Algorithm != PVS {
		return fmt.Errorf("%w: aspiration windows need PVS, not %v", ErrBadConfig, c.Algorithm)
	}
	if c.Aspiration && c.AspirationWindow <= 0 {
		return fmt.Errorf("%w: aspiration window %d must be positive", ErrBadConfig, c.AspirationWindow)
	}
	return nil
}
