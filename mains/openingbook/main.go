// Builds an opening book from a table of opening lines.
//
// Each CSV row holds the white win rate, the black win rate and a line of
// numbered SAN moves, e.g.
//
//	55.2%,44.8%,1.e4 e5 2.Nf3 Nc6
//
// Every position on a line gets the move played there, taken from the line
// with the best win rate for the side to move.

package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"guaxinim/board"
	"guaxinim/engine"
)

var in = flag.String("in", "", "CSV table of opening lines.")
var out = flag.String("out", "opening_book.json", "Where to write the book.")

var errBadLine = errors.New("bad opening line")

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *in == "" {
		fmt.Println("openingbook requires a CSV table of openings.")
		flag.PrintDefaults()
		return
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatal().Err(err).Msg("opening table")
	}
	defer f.Close()

	entries, err := buildBook(f)
	if err != nil {
		log.Fatal().Err(err).Msg("building book")
	}

	// Make sure the engine will accept it
	if _, err := engine.NewOpeningBook(entries); err != nil {
		log.Fatal().Err(err).Msg("built an invalid book")
	}

	w, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("creating book file")
	}
	if err := engine.WriteBook(w, entries); err != nil {
		log.Fatal().Err(err).Msg("writing book")
	}
	if err := w.Close(); err != nil {
		log.Fatal().Err(err).Msg("writing book")
	}
	log.Info().Int("positions", len(entries)).Str("file", *out).Msg("wrote opening book")
}

type bookEntryT struct {
	move        string
	probability float64
}

// buildBook maps position fingerprints to UCI moves. A header row is skipped.
func buildBook(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	best := map[string]bookEntryT{}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("%w: row %d has %d fields", errBadLine, row, len(record))
		}

		whiteP, errW := parsePercent(record[0])
		blackP, errB := parsePercent(record[1])
		if errW != nil || errB != nil {
			if row == 1 {
				continue // header
			}
			return nil, fmt.Errorf("%w: row %d probabilities %q %q", errBadLine, row, record[0], record[1])
		}

		if err := addLine(best, parseLine(record[2]), whiteP, blackP); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}

	return lo.MapValues(best, func(e bookEntryT, _ string) string { return e.move }), nil
}

func addLine(best map[string]bookEntryT, sans []string, whiteP, blackP float64) error {
	nc := chess.NewGame()
	g := board.NewGame()

	for _, san := range sans {
		pos := nc.Position()
		move, err := chess.AlgebraicNotation{}.Decode(pos, san)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", errBadLine, san, err)
		}
		uci := chess.UCINotation{}.Encode(pos, move)

		p := blackP
		if g.SideToMove() == board.Maximizing {
			p = whiteP
		}
		fingerprint := g.Fingerprint()
		if cur, ok := best[fingerprint]; !ok || p > cur.probability {
			best[fingerprint] = bookEntryT{move: uci, probability: p}
		}

		if err := nc.Move(move); err != nil {
			return fmt.Errorf("%w: %s: %v", errBadLine, san, err)
		}
		if err := g.ApplyUci(uci); err != nil {
			return fmt.Errorf("%w: %v", errBadLine, err)
		}
	}
	return nil
}

// "1.e4 e5 2.Nf3" to [e4 e5 Nf3]
func parseLine(line string) []string {
	moves := lo.Map(strings.Fields(line), func(token string, _ int) string {
		return token[strings.LastIndex(token, ".")+1:]
	})
	return lo.Filter(moves, func(san string, _ int) bool { return san != "" })
}

func parsePercent(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
}
