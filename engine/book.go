package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	dragon "github.com/dylhunn/dragontoothmg"
	"github.com/samber/lo"

	"guaxinim/board"
)

var ErrBadBook = errors.New("bad opening book")

// OpeningBook maps position fingerprints to the move to play.
// A nil book has no entries.
type OpeningBook struct {
	moves map[string]dragon.Move
}

// NewOpeningBook validates every entry: the key must be a canonical
// fingerprint and the move must be legal there. One bad entry fails the book.
func NewOpeningBook(entries map[string]string) (*OpeningBook, error) {
	book := &OpeningBook{moves: make(map[string]dragon.Move, len(entries))}
	for fingerprint, uci := range entries {
		if board.Fingerprint(fingerprint) != fingerprint {
			return nil, fmt.Errorf("%w: %q is not a position fingerprint", ErrBadBook, fingerprint)
		}
		game, err := board.FromFen(fingerprint)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBook, err)
		}
		// Keyed the way positions are looked up during search
		key := game.Fingerprint()
		if err := game.ApplyUci(uci); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBook, err)
		}
		move, _ := board.ParseMove(uci)
		book.moves[key] = move
	}
	return book, nil
}

// ReadBook decodes a JSON object of fingerprint to coordinate move.
func ReadBook(r io.Reader) (*OpeningBook, error) {
	var entries map[string]string
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBook, err)
	}
	return NewOpeningBook(entries)
}

func LoadBook(path string) (*OpeningBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book, err := ReadBook(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return book, nil
}

func (b *OpeningBook) Lookup(fingerprint string) (dragon.Move, bool) {
	if b == nil {
		return NoMove, false
	}
	move, ok := b.moves[fingerprint]
	return move, ok
}

func (b *OpeningBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.moves)
}

// Fingerprints in lexical order.
func (b *OpeningBook) Fingerprints() []string {
	if b == nil {
		return nil
	}
	fingerprints := lo.Keys(b.moves)
	sort.Strings(fingerprints)
	return fingerprints
}

// WriteBook encodes entries in the format ReadBook accepts.
func WriteBook(w io.Writer, entries map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
