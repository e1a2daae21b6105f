// Profiles a single fixed-depth search from a given position.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guaxinim/board"
	"guaxinim/engine"
)

var fen = flag.String("fen", board.StartFen, "Position to search.")
var depth = flag.Int("depth", 5, "Search depth in plies.")
var aspiration = flag.Bool("aspiration", false, "Use aspiration windows (PVS only).")
var memProfile = flag.Bool("mem", false, "Profile memory instead of CPU.")

func main() {
	cfg := engine.DefaultConfig()
	flag.TextVar(&cfg.Algorithm, "algorithm", engine.PVS, "Search algorithm to profile.")
	flag.Parse()
	cfg.Depth = *depth
	cfg.Aspiration = *aspiration

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)

	mode := profile.CPUProfile
	if *memProfile {
		mode = profile.MemProfile
	}
	defer profile.Start(mode, profile.ProfilePath(".")).Stop()

	g, err := board.FromFen(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("bad position")
	}
	e, err := engine.NewEngine(cfg, nil, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine config")
	}

	fmt.Println("Starting...")
	start := time.Now()
	result := e.Search(g)
	elapsedSecs := time.Since(start).Seconds()

	stats := e.Stats()
	stats.Dump(os.Stdout)
	fmt.Println("info depth", result.Depth, "score cp", result.Eval, "nodes", stats.Nodes,
		"time", uint64(elapsedSecs*1000), "nps", uint64(float64(stats.Nodes)/elapsedSecs), "pv", result.MoveString())
	fmt.Println("bestmove", result.MoveString())
}
