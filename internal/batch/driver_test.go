package batch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sagnubg/internal/monitor"
	"github.com/yourusername/sagnubg/pkg/engine"
)

func newTestDriver(t *testing.T, opts Options) (*Driver, *engine.Engine) {
	t.Helper()
	e, err := engine.NewEngine(engine.EngineOptions{CacheEntries: 1 << 12})
	require.NoError(t, err)
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Weights == "" {
		opts.Weights = e.WeightsVersion()
	}
	opts.Logger = zerolog.Nop()
	if opts.NewSeed == nil {
		opts.NewSeed = func() int64 { return 99 }
	}
	return New(e, opts), e
}

func run(t *testing.T, d *Driver, in string) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, d.Run(strings.NewReader(in), &out))
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func fatal(t *testing.T, err error) string {
	t.Helper()
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	return fe.Msg
}

// lastRoll has the side on roll bear off with 6-1.
func lastRoll() engine.Board {
	var b engine.Board
	b[1][5] = 1
	b[1][0] = 1
	b[0][5] = 2
	return b
}

// certainWin has the side on roll bear off with any roll.
func certainWin() engine.Board {
	var b engine.Board
	b[1][0] = 1
	b[0][5] = 2
	return b
}

func TestHeader(t *testing.T) {
	assert.Equal(t,
		"s version 1.92 weights none moves2plyLimit 20 rolloutLimit 5 nRollOutGames 1296 cubeAway 7 include0Ply 1 evalPlies 2 shortCuts 1 osrGames 1296",
		DefaultSettings().Header("none"))
}

func TestRunEchoesComments(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	lines := run(t, d, "# note\n\n   \nxyz 1 2\n# last")
	require.Len(t, lines, 4)
	assert.Equal(t, DefaultSettings().Header("none"), lines[0])
	assert.Equal(t, []string{"# note", "xyz 1 2", "# last"}, lines[1:])
}

func TestSettingsLine(t *testing.T) {
	d, e := newTestDriver(t, Options{})
	lines := run(t, d, "s version 9 nRollOutGames 36 weights x shortCuts 0 evalPlies\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "s nRollOutGames 36 shortCuts 0", lines[1])

	s := d.Settings()
	assert.Equal(t, 36, s.RolloutGames)
	assert.False(t, s.Shortcuts)
	assert.Equal(t, 2, s.EvalPlies)
	assert.False(t, e.Shortcuts())
}

func TestSettingsUnknownOption(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	err := d.Run(strings.NewReader("s moves 3\n"), &bytes.Buffer{})
	assert.Equal(t, "Unknown option moves", fatal(t, err))
}

func TestSeedLine(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	lines := run(t, d, "r 42\n")
	assert.Equal(t, "r 42", lines[1])

	err := d.Run(strings.NewReader("r x\n"), &bytes.Buffer{})
	assert.Equal(t, "Illegal line 'r x'", fatal(t, err))
}

func TestEvaluateLines(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	start := engine.StartingPosition().Text()
	win := certainWin().Text()

	lines := run(t, d, "s evalPlies 0\ne "+start+"\nO "+win+"\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "e "+start+" 0.5 0.15 0.01 0.15 0.01", lines[2])
	assert.Equal(t, "O "+win+" 1 0 0 0 0", lines[3])
}

func TestIllegalLines(t *testing.T) {
	start := engine.StartingPosition().Text()
	tests := []struct {
		in   string
		want string
	}{
		{"m " + start, "Illegal line 'm " + start + "'"},
		{"m " + start + " 7 1", "Illegal line '" + start + "' 7 1"},
		{"b !!!! 3 1", "Illegal line '!!!!' 3 1"},
		{"e", "Illegal line 'e'"},
		{"o !!!!", "Illegal line 'o !!!!'"},
		{"c", "Illegal line 'c'"},
	}
	for _, tt := range tests {
		d, _ := newTestDriver(t, Options{})
		err := d.Run(strings.NewReader(tt.in+"\n"), &bytes.Buffer{})
		assert.Equal(t, tt.want, fatal(t, err), tt.in)
	}
}

func TestBestMoveLine(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	pos := lastRoll().Text()
	lines := run(t, d, "s evalPlies 1\nb "+pos+" 6 1\n")
	require.Len(t, lines, 3)

	f := strings.Fields(lines[2])
	require.Len(t, f, 10)
	assert.Equal(t, []string{"b", pos, "6", "1"}, f[:4])

	// the mover is off, so the opponent on roll has lost a single game
	moved, err := engine.BoardFromText(f[4])
	require.NoError(t, err)
	assert.Zero(t, moved.Checkers(0))
	assert.Equal(t, []string{"0", "0", "0", "0", "0"}, f[5:])
}

func TestRankMovesLine(t *testing.T) {
	var progress bytes.Buffer
	var events []monitor.Event
	d, _ := newTestDriver(t, Options{
		Verbose:  true,
		Progress: &progress,
		Publish:  func(ev monitor.Event) { events = append(events, ev) },
	})
	pos := lastRoll().Text()

	lines := run(t, d, "s nRollOutGames 36\nr 1234\nm "+pos+" 6 1\nm "+pos+" 6 1\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "r 1234", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "#R "))
	assert.True(t, strings.HasPrefix(lines[4], "#R "))

	f := strings.Fields(lines[5])
	require.Len(t, f, 8)
	assert.Equal(t, []string{"m", pos, "6", "1"}, f[:4])
	assert.Equal(t, "1", f[5])
	best, err := engine.BoardFromText(f[4])
	require.NoError(t, err)
	assert.Zero(t, best.Checkers(0))

	// the second m line draws its own seed
	assert.Equal(t, "r 99", lines[6])
	assert.Equal(t, f[:6], strings.Fields(lines[9])[:6])

	assert.Contains(t, progress.String(), "Evaluating 2ply ")
	assert.Contains(t, progress.String(), "Rollout (36) ")
	assert.Contains(t, progress.String(), " - 1\n")

	require.NotEmpty(t, events)
	assert.Equal(t, monitor.KindCommand, events[0].Kind)
	assert.Equal(t, monitor.KindResult, events[len(events)-1].Kind)
}

func TestRolloutLine(t *testing.T) {
	d, _ := newTestDriver(t, Options{NewSeed: func() int64 { return 5 }})
	pos := certainWin().Text()
	lines := run(t, d, "s nRollOutGames 36\no "+pos+"\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "r 5", lines[2])
	assert.Equal(t, "o "+pos+" 1 0 0 0 0", lines[3])
}

func TestCubeLine(t *testing.T) {
	d, _ := newTestDriver(t, Options{})

	// the side on roll finishes and gammons the opponent with any roll
	var b engine.Board
	b[1][0] = 1
	b[0][0] = 15
	pos := b.Text()

	lines := run(t, d, "s nRollOutGames 4\nr 8\nc "+pos+"\n")
	require.Len(t, lines, 4)
	f := strings.Fields(lines[3])
	require.Len(t, f, 5)
	assert.Equal(t, []string{"c", pos}, f[:2])
	assert.Equal(t, "TG", f[4])
}

func TestResume(t *testing.T) {
	start := engine.StartingPosition().Text()
	win := certainWin().Text()
	in := "s evalPlies 0\ne " + start + "\n# between\ne " + win + "\n"
	prev := DefaultSettings().Header("none") + "\n" +
		"s evalPlies 0\n" +
		"e " + start + " 0.5 0.15 0.01 0.15 0.01\n" +
		"e " + win + " 1 0" // cut off mid-line

	d, _ := newTestDriver(t, Options{})
	var out bytes.Buffer
	require.NoError(t, d.Resume(strings.NewReader(in), strings.NewReader(prev), &out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#Resumed", lines[0])
	assert.Contains(t, lines[1], " evalPlies 0 ")
	assert.Equal(t, "# between", lines[2])
	assert.Equal(t, "e "+win+" 1 0 0 0 0", lines[3])
}

// smallRace is a race with a few checkers a side, quick to roll out.
func smallRace() engine.Board {
	var b engine.Board
	b[1][7], b[1][2] = 1, 2
	b[0][8], b[0][3] = 1, 2
	return b
}

func TestResumeMatchesUninterruptedRun(t *testing.T) {
	race := smallRace().Text()
	in := "s nRollOutGames 36 evalPlies 1\n" +
		"r 7\n" +
		"o " + race + "\n" +
		"e " + engine.StartingPosition().Text() + "\n" +
		"m " + race + " 3 1\n" + // no seed pending: draws and echoes one
		"# later\n" +
		"r 3\n" +
		"O " + race + "\n" +
		"e " + certainWin().Text() + "\n"

	full, _ := newTestDriver(t, Options{})
	want := run(t, full, in)

	for _, tc := range []struct {
		name    string
		cmd     string
		partial bool
	}{
		{"after rollout", "o ", false},
		{"after evaluation", "e ", false},
		{"after evaluation with a torn line", "e ", true},
		{"after move ranking", "m ", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cut := 0
			for i, l := range want {
				if strings.HasPrefix(l, tc.cmd) {
					cut = i + 1
					break
				}
			}
			require.NotZero(t, cut)
			prev := strings.Join(want[:cut], "\n") + "\n"
			if tc.partial && cut < len(want) {
				prev += want[cut][:len(want[cut])/2]
			}

			d, _ := newTestDriver(t, Options{})
			var out bytes.Buffer
			require.NoError(t, d.Resume(strings.NewReader(in), strings.NewReader(prev), &out))
			got := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")

			require.GreaterOrEqual(t, len(got), 2)
			assert.Equal(t, "#Resumed", got[0])
			assert.Equal(t, want[cut:], got[2:])
		})
	}
}

func TestResumeWithoutCheckpoint(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	var out bytes.Buffer
	require.NoError(t, d.Resume(strings.NewReader("# a\n"), strings.NewReader("# nothing yet\n"), &out))
	assert.Equal(t, DefaultSettings().Header("none")+"\n# a\n", out.String())
}

func TestResumeMissingCheckpoint(t *testing.T) {
	d, _ := newTestDriver(t, Options{})
	prev := "e " + certainWin().Text() + " 1 0 0 0 0\n"
	err := d.Resume(strings.NewReader("\n# other\n"), strings.NewReader(prev), &bytes.Buffer{})
	assert.Equal(t, "Resume failed:Failed to find supposed last line in input file.", fatal(t, err))
}
