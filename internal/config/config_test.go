package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 20, c.Moves2PlyLimit)
	assert.Equal(t, 5, c.RolloutLimit)
	assert.Equal(t, 1296, c.RolloutGames)
	assert.Equal(t, 7, c.CubeAway)
	assert.True(t, c.IncludePly0)
	assert.Equal(t, 2, c.EvalPlies)
	assert.True(t, c.Shortcuts)
	assert.Equal(t, 1296, c.OSRGames)
	assert.Equal(t, ".", c.WeightsDir)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("SAGNUBG_ROLLOUT_GAMES", "36")
	t.Setenv("SAGNUBG_ALLOW_NO_WEIGHTS", "1")
	t.Setenv("GNUBGWEIGHTS", "/tmp/w.weights")
	t.Setenv("GNUBGHOME", "/opt/gnubg")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 36, c.RolloutGames)
	assert.True(t, c.AllowNoWeights)
	assert.Equal(t, "/tmp/w.weights", c.WeightsFile)
	assert.Equal(t, "/opt/gnubg", c.GnubgHome)
	assert.Equal(t, "/tmp/w.weights", c.Weights())
}

func TestMergeAndPrecedence(t *testing.T) {
	t.Setenv("SAGNUBG_CUBE_AWAY", "9")

	v := New()
	require.NoError(t, Merge(v, strings.NewReader("cube-away: 5\nrollout-limit: 3\nshortcuts: false\n")))
	v.Set(KeyRolloutLimit, 4) // a flag

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9, c.CubeAway, "environment beats the file")
	assert.Equal(t, 4, c.RolloutLimit, "flags beat the file")
	assert.False(t, c.Shortcuts)
}

func TestMergeErrors(t *testing.T) {
	assert.Error(t, Merge(New(), strings.NewReader("cube-away: [")))
	assert.ErrorContains(t, Merge(New(), strings.NewReader("cubeAway: 5\n")), "unknown config key")
	assert.NoError(t, Merge(New(), strings.NewReader("")))
}

func TestReadFile(t *testing.T) {
	empty := t.TempDir()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("n-osr: 72\n"), 0o644))

	v := New()
	path, err := ReadFile(v, []string{empty, dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Equal(t, 72, v.GetInt(KeyOSRGames))

	path, err = ReadFile(New(), []string{empty})
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestValidate(t *testing.T) {
	base, err := Load(New())
	require.NoError(t, err)

	tests := []struct {
		name  string
		apply func(*Config)
		msg   string
	}{
		{"cube away one", func(c *Config) { c.CubeAway = 1 }, "cube-away"},
		{"cube away 26", func(c *Config) { c.CubeAway = 26 }, "cube-away"},
		{"osr games", func(c *Config) { c.OSRGames = 0 }, "non positive osrGames"},
		{"plies", func(c *Config) { c.EvalPlies = -1 }, "negative plies"},
		{"rollout games", func(c *Config) { c.RolloutGames = 0 }, "rollout-games"},
		{"rollout limit", func(c *Config) { c.RolloutLimit = 0 }, "rollout-limit"},
		{"moves limit", func(c *Config) { c.Moves2PlyLimit = 0 }, "moves2p-limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.apply(&c)
			assert.ErrorContains(t, c.Validate(), tt.msg)
		})
	}

	c := base
	c.CubeAway = 25
	assert.NoError(t, c.Validate())
}

func TestWeightsLookup(t *testing.T) {
	dir := t.TempDir()
	c := Config{WeightsDir: dir}
	assert.Empty(t, c.Weights())

	wd := filepath.Join(dir, "gnubg.wd")
	require.NoError(t, os.WriteFile(wd, nil, 0o644))
	assert.Equal(t, wd, c.Weights())

	text := filepath.Join(dir, "gnubg.weights")
	require.NoError(t, os.WriteFile(text, nil, 0o644))
	assert.Equal(t, text, c.Weights())

	home := t.TempDir()
	homeWeights := filepath.Join(home, "gnubg.weights")
	require.NoError(t, os.WriteFile(homeWeights, nil, 0o644))
	c.GnubgHome = home
	assert.Equal(t, homeWeights, c.Weights())

	c.WeightsFile = "/explicit"
	assert.Equal(t, "/explicit", c.Weights())
}

func TestYAML(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	c.CubeAway = 11

	out, err := c.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "cube-away: 11\n")

	v := New()
	require.NoError(t, Merge(v, strings.NewReader(out)))
	back, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
