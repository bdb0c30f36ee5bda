// sagnubg - batch analysis of backgammon positions with the gnubg networks
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/yourusername/sagnubg/internal/batch"
	"github.com/yourusername/sagnubg/internal/config"
	"github.com/yourusername/sagnubg/internal/getopt"
	"github.com/yourusername/sagnubg/internal/monitor"
	"github.com/yourusername/sagnubg/pkg/engine"
)

// Long option codes.
const (
	optMoves2p = 257 + iota
	optRolloutLimit
	optRolloutGames
	optCubeAway
	optIncludePly0
	optResume
	optEvalPlies
	optNoShortcuts
	optOSRGames
)

var longOpts = []getopt.Option{
	{Name: "weights-dir", HasArg: getopt.RequiredArgument, Val: 'w'},
	{Name: "moves2p-limit", HasArg: getopt.RequiredArgument, Val: optMoves2p},
	{Name: "rollout-limit", HasArg: getopt.RequiredArgument, Val: optRolloutLimit},
	{Name: "rollout-games", HasArg: getopt.RequiredArgument, Val: optRolloutGames},
	{Name: "cube-away", HasArg: getopt.RequiredArgument, Val: optCubeAway},
	{Name: "include-ply0", HasArg: getopt.RequiredArgument, Val: optIncludePly0},
	{Name: "eval-plies", HasArg: getopt.RequiredArgument, Val: optEvalPlies},
	{Name: "no-shortcuts", HasArg: getopt.NoArgument, Val: optNoShortcuts},
	{Name: "n-osr", HasArg: getopt.RequiredArgument, Val: optOSRGames},
	{Name: "resume", HasArg: getopt.NoArgument, Val: optResume},
	{Name: "verbose", HasArg: getopt.OptionalArgument, Val: 'v'},
	{Name: "help", HasArg: getopt.NoArgument, Val: 'h'},
}

var errUsage = errors.New("usage")

func usage(prog string) {
	fmt.Fprintf(os.Stderr, `usage: %s [flags] [cmd-file] [output-file]

Flags:
  -w DIR,--weights-dir=DIR  directory of 'gnubg.weights'
  --moves2p-limit=N         Max number of moves for initial 2ply pruning.
  --rollout-limit=N         Max number of moves to rollout.
  --rollout-games=N         Number of games per rollout.
  --cube-away=N             Use (N,N) away for cube decisions.
  --include-ply0=1/0        Always roll out the best 0-ply move.
  --eval-plies=N            Evaluate using N-ply.
  --n-osr=N                 Number of games for one-sided race rollouts.
  --no-shortcuts            Do not prune with the pruning nets.
  --resume                  Resume an interrupted session. (both 'cmd-file' and 'output-file' must be given).
  -v,--verbose=N            Verbosity level. Print progress report to stderr.

 If 'output-file' is not given, write to stdout.
 If 'cmd-file' is not given, reads from stdin.
 Settings may also come from sagnubg.yaml and SAGNUBG_* environment variables.
`, prog)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// invocation is what the command line asks for beyond settings.
type invocation struct {
	resume bool
	files  []string
}

// parseArgs applies the flags in args to v.
func parseArgs(args []string, v *viper.Viper) (invocation, error) {
	var inv invocation
	p := getopt.New(args, "", longOpts, false)
	for {
		c := p.Next()
		if c == -1 {
			break
		}
		switch c {
		case 'w':
			v.Set(config.KeyWeightsDir, p.OptArg)
		case 'v':
			n := 1
			if p.OptArg != "" {
				n = atoi(p.OptArg)
			}
			v.Set(config.KeyVerbose, n)
		case optMoves2p:
			v.Set(config.KeyMoves2PlyLimit, atoi(p.OptArg))
		case optRolloutLimit:
			v.Set(config.KeyRolloutLimit, atoi(p.OptArg))
		case optRolloutGames:
			v.Set(config.KeyRolloutGames, atoi(p.OptArg))
		case optCubeAway:
			v.Set(config.KeyCubeAway, atoi(p.OptArg))
		case optIncludePly0:
			v.Set(config.KeyIncludePly0, atoi(p.OptArg) != 0)
		case optEvalPlies:
			v.Set(config.KeyEvalPlies, atoi(p.OptArg))
		case optOSRGames:
			v.Set(config.KeyOSRGames, atoi(p.OptArg))
		case optNoShortcuts:
			v.Set(config.KeyShortcuts, false)
		case optResume:
			inv.resume = true
		default:
			return inv, errUsage
		}
	}
	inv.files = p.Rest()
	return inv, nil
}

func setupLogging(verbose int) {
	switch {
	case verbose >= 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case verbose == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
}

func fatal(err error) {
	var fe *batch.FatalError
	if errors.As(err, &fe) {
		fmt.Fprintln(os.Stderr, fe.Msg)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	log.Debug().Err(err).Msg("exiting")
	os.Exit(1)
}

func failedToOpen(name string) error {
	return &batch.FatalError{Msg: fmt.Sprintf("failed to open '%s'", name)}
}

func cacheEntries(mb int) int {
	switch {
	case mb < 0:
		return -1
	case mb == 0:
		return 0
	}
	return engine.CacheEntriesForMB(mb)
}

func main() {
	v := config.New()
	cfgFile, err := config.ReadFile(v, config.SearchPaths())
	if err != nil {
		fatal(err)
	}
	inv, err := parseArgs(os.Args, v)
	if err != nil {
		usage(os.Args[0])
		os.Exit(1)
	}
	cfg, err := config.Load(v)
	if err != nil {
		fatal(err)
	}
	setupLogging(cfg.Verbose)
	if cfgFile != "" {
		log.Info().Str("file", cfgFile).Msg("config loaded")
	}
	if y, err := cfg.YAML(); err == nil {
		log.Debug().Msg("effective config\n" + y)
	}

	weights := cfg.Weights()
	if weights == "" && !cfg.AllowNoWeights {
		fatal(errors.New("failed to initialize weights"))
	}
	logger := log.Logger
	e, err := engine.NewEngine(engine.EngineOptions{
		WeightsFile:  weights,
		BearoffFile:  cfg.BearoffFile,
		METFile:      cfg.METFile,
		CacheEntries: cacheEntries(cfg.CacheMB),
		Logger:       &logger,
	})
	if err != nil {
		fatal(err)
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if len(inv.files) > 0 {
		f, err := os.Open(inv.files[0])
		if err != nil {
			fatal(failedToOpen(inv.files[0]))
		}
		defer f.Close()
		in = f
	}
	if len(inv.files) > 1 {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if inv.resume {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(inv.files[1], flags, 0o644)
		if err != nil {
			fatal(failedToOpen(inv.files[1]))
		}
		defer f.Close()
		out = f
	}
	if inv.resume && len(inv.files) < 2 {
		fatal(&batch.FatalError{Msg: " --resume requires both input & output files"})
	}

	opts := batch.Options{
		Settings: batch.Settings{
			Moves2PlyLimit: cfg.Moves2PlyLimit,
			RolloutLimit:   cfg.RolloutLimit,
			RolloutGames:   cfg.RolloutGames,
			CubeAway:       cfg.CubeAway,
			Include0Ply:    cfg.IncludePly0,
			EvalPlies:      cfg.EvalPlies,
			Shortcuts:      cfg.Shortcuts,
			OSRGames:       cfg.OSRGames,
		},
		Weights:  e.WeightsVersion(),
		Verbose:  cfg.Verbose > 0,
		Progress: os.Stderr,
		Logger:   log.Logger,
	}

	stopMonitor := func() {}
	if cfg.MonitorAddr != "" {
		mon := monitor.New(cfg.MonitorAddr, log.Logger)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- mon.Run(ctx) }()
		opts.Publish = mon.Publish
		stopMonitor = func() {
			cancel()
			if err := <-done; err != nil {
				log.Warn().Err(err).Msg("monitor stopped")
			}
		}
	}

	d := batch.New(e, opts)
	if inv.resume {
		prev, err := os.Open(inv.files[1])
		if err != nil {
			fatal(failedToOpen(inv.files[1]))
		}
		err = d.Resume(in, prev, out)
		prev.Close()
		if err != nil {
			fatal(err)
		}
	} else if err := d.Run(in, out); err != nil {
		fatal(err)
	}
	stopMonitor()
}
