// Package batch runs the line protocol of the analysis tool: it reads
// commands, runs them on the engine and writes one result line per command.
package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/sagnubg/internal/met"
	"github.com/yourusername/sagnubg/internal/monitor"
	"github.com/yourusername/sagnubg/internal/positionid"
	"github.com/yourusername/sagnubg/pkg/engine"
)

// positionTruncate bounds the games of an o line rollout.
const positionTruncate = 1024

// FatalError ends a run. Msg is printed as is.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return e.Msg }

func illegal(line string) error {
	return &FatalError{Msg: fmt.Sprintf("Illegal line '%s'", line)}
}

// Options configures a Driver.
type Options struct {
	Settings Settings
	Weights  string // weights version for the header

	// Verbose enables progress lines on Progress.
	Verbose  bool
	Progress io.Writer

	Logger zerolog.Logger

	// NewSeed draws a seed for commands that arrive without one. It
	// defaults to engine.NewSeed.
	NewSeed func() int64

	// Publish, when set, receives activity for the progress monitor.
	Publish func(monitor.Event)
}

// Driver executes command lines against an engine.
type Driver struct {
	settings Settings
	weights  string
	engine   *engine.Engine
	seed     int64 // pending seed, 0 for none

	out      *bufio.Writer
	progress io.Writer
	verbose  bool
	log      zerolog.Logger
	newSeed  func() int64
	publish  func(monitor.Event)
}

// New returns a driver for e. The engine's ply bounds and shortcuts are set
// from opts.Settings.
func New(e *engine.Engine, opts Options) *Driver {
	d := &Driver{
		settings: opts.Settings,
		weights:  opts.Weights,
		engine:   e,
		progress: opts.Progress,
		verbose:  opts.Verbose && opts.Progress != nil,
		log:      opts.Logger.With().Str("component", "batch").Logger(),
		newSeed:  opts.NewSeed,
		publish:  opts.Publish,
	}
	if d.newSeed == nil {
		d.newSeed = engine.NewSeed
	}
	if d.publish == nil {
		d.publish = func(monitor.Event) {}
	}
	d.applyEngineSettings(true)
	return d
}

// Settings returns the current settings.
func (d *Driver) Settings() Settings { return d.settings }

func (d *Driver) applyEngineSettings(shortcuts bool) {
	d.engine.SetPlyBounds(d.settings.EvalPlies, d.settings.Moves2PlyLimit, 0, 0)
	if shortcuts {
		d.engine.SetShortcuts(d.settings.Shortcuts)
	}
}

// Run writes the header and processes every line of in.
func (d *Driver) Run(in io.Reader, out io.Writer) error {
	d.out = bufio.NewWriter(out)
	if err := d.writeLine(d.settings.Header(d.weights)); err != nil {
		return err
	}
	return d.process(newLineReader(in))
}

// Resume continues a run whose output so far is prev. Settings changed in
// prev are re-applied, the input is skipped up to the last command already
// answered, and processing continues with the lines after it.
func (d *Driver) Resume(in, prev io.Reader, out io.Writer) error {
	last, err := d.scanPrevious(prev)
	if err != nil {
		return err
	}

	lr := newLineReader(in)
	d.out = bufio.NewWriter(out)
	if last != "" {
		skipped := 0
		for {
			line, _, err := lr.next()
			if errors.Is(err, io.EOF) {
				return &FatalError{Msg: "Resume failed:Failed to find supposed last line in input file."}
			}
			if err != nil {
				return readFailed(err)
			}
			skipped++
			if strings.TrimSpace(line) != "" && len(line) <= len(last) && strings.HasPrefix(last, line) {
				break
			}
		}
		d.log.Info().Int("skipped", skipped).Str("checkpoint", last).Msg("resuming")
		if err := d.writeLine("#Resumed"); err != nil {
			return err
		}
	}

	if err := d.writeLine(d.settings.Header(d.weights)); err != nil {
		return err
	}
	return d.process(lr)
}

// scanPrevious re-applies s lines of prev and returns its last answered
// command.
func (d *Driver) scanPrevious(prev io.Reader) (string, error) {
	lr := newLineReader(prev)
	var last string
	for {
		line, complete, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", readFailed(err)
		}
		if !complete || line == "" {
			continue
		}
		switch line[0] {
		case 's':
			_, args, _ := split(line)
			_, shortcuts, err := d.settings.apply(args)
			if err != nil {
				return "", err
			}
			d.applyEngineSettings(shortcuts)
		case 'm', 'c', 'o', 'b', 'e', 'O':
			last = line
		}
	}
	return last, nil
}

func readFailed(err error) error {
	return &FatalError{Msg: "read failed: " + err.Error()}
}

func (d *Driver) process(lr *lineReader) error {
	for {
		line, _, err := lr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return readFailed(err)
		}
		if err := d.ProcessLine(line); err != nil {
			return err
		}
	}
}

// ProcessLine executes one command line. Run or Resume must have set up the
// output.
func (d *Driver) ProcessLine(line string) error {
	cmd, args, ok := split(line)
	if !ok {
		return nil
	}

	start := time.Now()
	var err error
	switch cmd {
	case 's':
		err = d.setOptions(args)
	case 'r':
		err = d.setSeed(line, args)
	case 'm':
		err = d.rankMoves(line, args)
	case 'e', 'O':
		err = d.evaluate(cmd, line, args)
	case 'b':
		err = d.bestMove(line, args)
	case 'c':
		err = d.cubeDecision(line, args)
	case 'o':
		err = d.rollout(line, args)
	default:
		return d.writeLine(line)
	}
	if err != nil {
		return err
	}

	if strings.IndexByte("mcobeO", cmd) >= 0 {
		e := d.log.Info().
			Str("command", string(cmd)).
			Float64("seconds", time.Since(start).Seconds())
		if len(args) > 0 {
			e = e.Str("position", args[0])
		}
		if c := d.engine.Cache(); c != nil {
			e = e.Float64("cacheHitRate", c.HitRate())
		}
		e.Msg("command done")
	}
	return nil
}

func (d *Driver) writeLine(s string) error {
	if _, err := d.out.WriteString(s); err != nil {
		return err
	}
	if err := d.out.WriteByte('\n'); err != nil {
		return err
	}
	return d.out.Flush()
}

func (d *Driver) verbosef(format string, a ...any) {
	if d.verbose {
		fmt.Fprintf(d.progress, format, a...)
	}
}

func (d *Driver) setOptions(args []string) error {
	echo, shortcuts, err := d.settings.apply(args)
	if err != nil {
		return err
	}
	d.applyEngineSettings(shortcuts)
	d.log.Debug().Str("settings", echo).Msg("settings changed")
	return d.writeLine(echo)
}

func (d *Driver) setSeed(line string, args []string) error {
	if len(args) == 0 {
		return illegal(line)
	}
	seed, ok := scanInt(args[0])
	if !ok {
		return illegal(line)
	}
	d.seed = seed
	d.engine.RNG().Seed(uint64(seed))
	return d.writeLine(line)
}

// takeSeed returns the pending seed, drawing and announcing one when none
// is pending, and clears it.
func (d *Driver) takeSeed() (int64, error) {
	seed := d.seed
	for seed == 0 {
		seed = d.newSeed()
		if seed != 0 {
			if err := d.writeLine("r " + strconv.FormatInt(seed, 10)); err != nil {
				return 0, err
			}
		}
	}
	d.seed = 0
	return seed, nil
}

// position parses the position argument of e, O, c and o lines.
func position(line string, args []string) (string, engine.Board, error) {
	if len(args) == 0 || !positionid.ValidText(args[0]) {
		return "", engine.Board{}, illegal(line)
	}
	b, err := engine.BoardFromText(args[0])
	if err != nil {
		return "", engine.Board{}, illegal(line)
	}
	return args[0], b, nil
}

// positionAndDice parses the arguments of m and b lines.
func positionAndDice(line string, args []string) (string, engine.Board, int, int, error) {
	if len(args) < 3 {
		return "", engine.Board{}, 0, 0, illegal(line)
	}
	d0, ok0 := scanInt(args[1])
	d1, ok1 := scanInt(args[2])
	if !ok0 || !ok1 {
		return "", engine.Board{}, 0, 0, illegal(line)
	}
	pos := args[0]
	bad := &FatalError{Msg: fmt.Sprintf("Illegal line '%s' %d %d", pos, d0, d1)}
	if !positionid.ValidText(pos) || d0 < 1 || d0 > 6 || d1 < 1 || d1 > 6 {
		return "", engine.Board{}, 0, 0, bad
	}
	b, err := engine.BoardFromText(pos)
	if err != nil {
		return "", engine.Board{}, 0, 0, bad
	}
	return pos, b, int(d0), int(d1), nil
}

func (d *Driver) progressFunc(cmd, pos string) func(engine.RolloutProgress) {
	return func(p engine.RolloutProgress) {
		d.publish(monitor.Event{
			Kind:     monitor.KindProgress,
			Command:  cmd,
			Position: pos,
			Games:    p.Games,
			Total:    p.Total,
			Probs:    p.Mean[:],
			Equity:   p.Mean.Money(),
		})
	}
}

func (d *Driver) result(cmd, pos string, p engine.Probs, equity float64, line string) {
	d.publish(monitor.Event{
		Kind:     monitor.KindResult,
		Command:  cmd,
		Position: pos,
		Probs:    p[:],
		Equity:   equity,
		Line:     line,
	})
}

func (d *Driver) rankMoves(line string, args []string) error {
	pos, board, d0, d1, err := positionAndDice(line, args)
	if err != nil {
		return err
	}
	seed, err := d.takeSeed()
	if err != nil {
		return err
	}
	d.publish(monitor.Event{Kind: monitor.KindCommand, Command: "m", Position: pos})

	e := d.engine
	target := e.RolloutTarget(board)
	cands, err := e.SelectCandidates(board, d0, d1, engine.CandidateOptions{
		Moves2PlyLimit: d.settings.Moves2PlyLimit,
		RolloutLimit:   d.settings.RolloutLimit,
		Include0Ply:    d.settings.Include0Ply,
		Evaluated: func(c engine.Candidate) {
			d.verbosef("Evaluating 2ply %s - %s\n", c.Text(), num(c.Score))
		},
	})
	if err != nil {
		return err
	}

	opts := engine.DefaultRankOptions(target)
	opts.Games = d.settings.RolloutGames
	opts.Started = func(_ int, c engine.Candidate) {
		d.verbosef("Rollout (%d) %s", opts.Games, c.Text())
	}
	opts.Progress = d.progressFunc("m", pos)

	var werr error
	ranked, err := e.RankByRollout(cands, uint64(seed), opts, func(_ int, c engine.Candidate, r engine.RolloutResult) {
		d.verbosef(" - %s\n", num(c.Score))
		if werr == nil {
			werr = d.writeLine("#R " + c.Text() + " " + probs(r.Mean))
		}
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return werr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "m %s %d %d", pos, d0, d1)
	for k, c := range ranked {
		score := c.Score
		if k > 0 {
			score = ranked[0].Score - c.Score
		}
		fmt.Fprintf(&b, " %s %s", c.Text(), num(score))
	}
	if len(ranked) > 0 {
		d.result("m", pos, engine.Probs{}, ranked[0].Score, b.String())
	}
	return d.writeLine(b.String())
}

func (d *Driver) evaluate(cmd byte, line string, args []string) error {
	pos, board, err := position(line, args)
	if err != nil {
		return err
	}
	var p engine.Probs
	if cmd == 'O' {
		p, err = d.engine.RaceProbs(board, d.settings.OSRGames)
	} else {
		p, err = d.engine.EvaluateProbs(board, d.settings.EvalPlies)
	}
	if err != nil {
		return err
	}
	out := string(cmd) + " " + pos + " " + probs(p)
	d.result(string(cmd), pos, p, p.Money(), out)
	return d.writeLine(out)
}

func (d *Driver) bestMove(line string, args []string) error {
	pos, board, d0, d1, err := positionAndDice(line, args)
	if err != nil {
		return err
	}
	e := d.engine
	moved, _, err := e.FindBestMove(board, d0, d1, d.settings.EvalPlies, engine.MoneyScorer)
	if err != nil {
		return err
	}
	moved = engine.SwapSides(moved)
	p, err := e.EvaluateProbs(moved, d.settings.EvalPlies)
	if err != nil {
		return err
	}
	out := fmt.Sprintf("b %s %d %d %s %s", pos, d0, d1, moved.Text(), probs(p))
	d.result("b", pos, p, -p.Money(), out)
	return d.writeLine(out)
}

func (d *Driver) cubeDecision(line string, args []string) error {
	pos, board, err := position(line, args)
	if err != nil {
		return err
	}
	seed, err := d.takeSeed()
	if err != nil {
		return err
	}
	d.engine.RNG().Seed(uint64(seed))
	d.publish(monitor.Event{Kind: monitor.KindCommand, Command: "c", Position: pos})

	games := d.settings.RolloutGames
	d.verbosef("Cube Rollout (%d) %s\n", games, pos)
	away := d.settings.CubeAway
	r, err := d.engine.AnalyzeCube(board, engine.CubeOptions{
		Match: met.State{XAway: away, OAway: away, Cube: 1},
		Games: games,
	})
	if err != nil {
		return err
	}
	out := fmt.Sprintf("c %s %s %s %s", pos, num(100*r.ND), num(100*r.DT), r.Action())
	d.result("c", pos, r.Probs, r.ND, out)
	return d.writeLine(out)
}

func (d *Driver) rollout(line string, args []string) error {
	pos, board, err := position(line, args)
	if err != nil {
		return err
	}
	seed, err := d.takeSeed()
	if err != nil {
		return err
	}
	d.engine.RNG().Seed(uint64(seed))
	d.publish(monitor.Event{Kind: monitor.KindCommand, Command: "o", Position: pos})

	games := d.settings.RolloutGames
	d.verbosef("Rollout (%d) %s\n", games, pos)
	r, err := d.engine.Rollout(board, engine.RolloutOptions{
		Truncate: positionTruncate,
		Games:    games,
		EndsAt:   engine.EndsAtAuto,
		Progress: d.progressFunc("o", pos),
	})
	if err != nil {
		return err
	}
	out := "o " + pos + " " + probs(r.Mean)
	d.result("o", pos, r.Mean, r.Equity(), out)
	return d.writeLine(out)
}
