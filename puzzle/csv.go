package puzzle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns of the lichess puzzle database export
const (
	colID = iota
	colFen
	colMoves
	colRating
	colRatingDeviation
	colPopularity
	colPlays
	colThemes
	colURL
	colOpeningTags
	minColumns = colURL + 1
)

const headerID = "PuzzleId"

// ParseCSVRecord reads one row of the lichess puzzle database.
// The opening tags column is optional.
func ParseCSVRecord(record []string) (Puzzle, error) {
	if len(record) < minColumns {
		return Puzzle{}, fmt.Errorf("%w: %d columns, expected at least %d", ErrBadPuzzle, len(record), minColumns)
	}

	p := Puzzle{
		ID:     record[colID],
		Fen:    record[colFen],
		Moves:  strings.Fields(record[colMoves]),
		Themes: strings.Fields(record[colThemes]),
		URL:    record[colURL],
	}
	if len(record) > colOpeningTags {
		p.OpeningTags = strings.Fields(record[colOpeningTags])
	}

	ints := []struct {
		col int
		dst *int
	}{
		{colRating, &p.Rating},
		{colRatingDeviation, &p.RatingDeviation},
		{colPopularity, &p.Popularity},
		{colPlays, &p.Plays},
	}
	for _, field := range ints {
		n, err := strconv.Atoi(record[field.col])
		if err != nil {
			return Puzzle{}, fmt.Errorf("%w: %s column %d: %v", ErrBadPuzzle, p.ID, field.col+1, err)
		}
		*field.dst = n
	}

	if len(p.Moves) == 0 || len(p.Moves)%2 != 0 {
		return Puzzle{}, fmt.Errorf("%w: %s has %d moves, expected a positive even number", ErrBadPuzzle, p.ID, len(p.Moves))
	}
	return p, nil
}

// ReadCSV parses puzzles, keeping those with the theme (any theme when empty)
// and stopping after limit puzzles (no limit when limit <= 0).
// A header row is skipped.
func ReadCSV(r io.Reader, theme string, limit int) ([]Puzzle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var puzzles []Puzzle
	for line := 1; limit <= 0 || len(puzzles) < limit; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadPuzzle, line, err)
		}
		if line == 1 && len(record) > 0 && record[colID] == headerID {
			continue
		}

		p, err := ParseCSVRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if theme == "" || p.HasTheme(theme) {
			puzzles = append(puzzles, p)
		}
	}
	return puzzles, nil
}
