// UCI driver for the fixed-depth engine.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guaxinim/board"
	"guaxinim/engine"
)

var VersionString = "0.1 " + runtime.GOOS + "-" + runtime.GOARCH

var depth = flag.Int("depth", engine.DefaultConfig().Depth, "Search depth in plies.")
var aspiration = flag.Bool("aspiration", false, "Use aspiration windows (PVS only).")
var bookPath = flag.String("book", "", "Opening book JSON file.")
var logLevel = flag.String("log-level", "warn", "Log level for stderr diagnostics.")

func main() {
	cfg := engine.DefaultConfig()
	flag.TextVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "Search algorithm: MiniMax, AlphaBeta, AlphaBetaTT or PVS.")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	cfg.Depth = *depth
	cfg.Aspiration = *aspiration

	var book *engine.OpeningBook
	if *bookPath != "" {
		if book, err = engine.LoadBook(*bookPath); err != nil {
			log.Fatal().Err(err).Msg("loading opening book")
		}
	}

	u, err := newUCI(cfg, book, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine config")
	}
	u.loop(os.Stdin)
}

type uciT struct {
	cfg  engine.Config
	book *engine.OpeningBook
	out  io.Writer

	game   *board.Game
	engine *engine.Engine
}

func newUCI(cfg engine.Config, book *engine.OpeningBook, out io.Writer) (*uciT, error) {
	u := &uciT{cfg: cfg, book: book, out: out, game: board.NewGame()}
	if err := u.rebuildEngine(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *uciT) println(a ...interface{}) {
	fmt.Fprintln(u.out, a...)
}

// Options changed: start over with a fresh engine and caches.
func (u *uciT) rebuildEngine() error {
	e, err := engine.NewEngine(u.cfg, u.book, log.Logger)
	if err != nil {
		return err
	}
	u.engine = e
	return nil
}

func (u *uciT) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			u.println("id name Guaxinim", VersionString)
			u.println("id author Guaxinim developers")
			u.println("option name SearchAlgorithm type combo default", u.cfg.Algorithm, "var MiniMax var AlphaBeta var AlphaBetaTT var PVS")
			u.println("option name SearchDepth type spin default", u.cfg.Depth, "min", engine.MinDepth, "max", engine.MaxDepth)
			u.println("option name Aspiration type check default", u.cfg.Aspiration)
			u.println("option name OrderChecks type check default", u.cfg.OrderChecks)
			u.println("uciok")
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			// reset the board, in case the GUI skips 'position' after 'newgame'
			u.game = board.NewGame()
			u.engine.Reset()
		case "quit":
			return
		case "setoption":
			u.setOption(tokens)
		case "position":
			u.position(tokens[1:])
		case "go":
			u.goSearch(tokens[1:])
		case "d":
			u.println("info string", u.game.Fen())
		default:
			u.println("info string Unknown command:", line)
		}
	}
}

func (u *uciT) setOption(tokens []string) {
	if len(tokens) != 5 || tokens[1] != "name" || tokens[3] != "value" {
		u.println("info string Malformed setoption command")
		return
	}

	cfg := u.cfg
	value := tokens[4]
	switch strings.ToLower(tokens[2]) {
	case "searchdepth":
		res, err := strconv.Atoi(value)
		if err != nil {
			u.println("info string SearchDepth value is not an int (", err, ")")
			return
		}
		cfg.Depth = res
	case "searchalgorithm":
		algorithm, err := engine.ParseSearchAlgorithm(value)
		if err != nil {
			u.println("info string Unrecognised Search Algorithm:", value)
			return
		}
		cfg.Algorithm = algorithm
	case "aspiration", "orderchecks":
		b, err := strconv.ParseBool(value)
		if err != nil {
			u.println("info string Unrecognised", tokens[2], "option:", value)
			return
		}
		if strings.ToLower(tokens[2]) == "aspiration" {
			cfg.Aspiration = b
		} else {
			cfg.OrderChecks = b
		}
	default:
		u.println("info string Unknown UCI option", tokens[2])
		return
	}

	if err := cfg.Validate(); err != nil {
		u.println("info string", err)
		return
	}
	u.cfg = cfg
	if err := u.rebuildEngine(); err != nil {
		u.println("info string", err)
		return
	}
	u.println("info string", tokens[2], "set to", value)
}

// position startpos|fen <fen> [moves m1 m2 ...]
func (u *uciT) position(tokens []string) {
	if len(tokens) == 0 {
		u.println("info string Malformed position command")
		return
	}

	var game *board.Game
	rest := tokens[1:]
	switch strings.ToLower(tokens[0]) {
	case "startpos":
		game = board.NewGame()
	case "fen":
		end := len(rest)
		for i, tok := range rest {
			if strings.ToLower(tok) == "moves" {
				end = i
				break
			}
		}
		var err error
		if game, err = board.FromFen(strings.Join(rest[:end], " ")); err != nil {
			u.println("info string Invalid fen position:", err)
			return
		}
		rest = rest[end:]
	default:
		u.println("info string Invalid position subcommand")
		return
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, moveStr := range rest[1:] {
			if err := game.ApplyUci(strings.ToLower(moveStr)); err != nil {
				u.println("info string", err)
				return
			}
		}
	}
	u.game = game
}

// go [depth N]; time controls are accepted and ignored.
func (u *uciT) goSearch(tokens []string) {
	if u.game.IsTerminal() {
		u.println("info string Game is over:", u.game.TerminalResult())
		u.println("bestmove 0000")
		return
	}

	e := u.engine
	for i := 0; i+1 < len(tokens); i++ {
		if strings.ToLower(tokens[i]) != "depth" {
			continue
		}
		d, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			u.println("info string Malformed go command option; could not convert depth")
			continue
		}
		cfg := u.cfg
		cfg.Depth = d
		if e, err = engine.NewEngine(cfg, u.book, log.Logger); err != nil {
			u.println("info string", err)
			e = u.engine
		}
	}

	start := time.Now()
	result := e.Search(u.game)
	elapsedSecs := time.Since(start).Seconds()

	// UCI scores are from the side to move's point of view
	score := result.Eval
	if u.game.SideToMove() == board.Minimizing {
		score = -score
	}
	stats := e.Stats()
	stats.Dump(u.out)
	// TODO proper mate distance score string
	u.println("info depth", result.Depth, "score cp", score, "nodes", stats.Nodes,
		"time", uint64(elapsedSecs*1000), "nps", uint64(float64(stats.Nodes)/(elapsedSecs+1e-9)), "pv", result.MoveString())
	u.println("bestmove", result.MoveString())
}
