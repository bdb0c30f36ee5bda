package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sagnubg/internal/config"
)

func TestParseArgs(t *testing.T) {
	v := config.New()
	inv, err := parseArgs([]string{"sagnubg",
		"in.txt", "-w", "/data",
		"--moves2p-limit=8", "--rollout-limit", "3", "--rollout-games=36",
		"--cube-away=5", "--include-ply0=0", "--eval-plies=1", "--n-osr=72",
		"--no-shortcuts", "--resume", "-v2", "out.txt",
	}, v)
	require.NoError(t, err)
	assert.True(t, inv.resume)
	assert.Equal(t, []string{"in.txt", "out.txt"}, inv.files)

	c, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data", c.WeightsDir)
	assert.Equal(t, 8, c.Moves2PlyLimit)
	assert.Equal(t, 3, c.RolloutLimit)
	assert.Equal(t, 36, c.RolloutGames)
	assert.Equal(t, 5, c.CubeAway)
	assert.False(t, c.IncludePly0)
	assert.Equal(t, 1, c.EvalPlies)
	assert.Equal(t, 72, c.OSRGames)
	assert.False(t, c.Shortcuts)
	assert.Equal(t, 2, c.Verbose)
}

func TestParseArgsVerboseDefault(t *testing.T) {
	v := config.New()
	_, err := parseArgs([]string{"sagnubg", "--verbose"}, v)
	require.NoError(t, err)
	assert.Equal(t, 1, v.GetInt(config.KeyVerbose))
}

func TestParseArgsUsage(t *testing.T) {
	_, err := parseArgs([]string{"sagnubg", "-h"}, config.New())
	assert.ErrorIs(t, err, errUsage)
}

func TestCubeAwayOutOfRange(t *testing.T) {
	v := config.New()
	_, err := parseArgs([]string{"sagnubg", "--cube-away=1"}, v)
	require.NoError(t, err)
	_, err = config.Load(v)
	assert.Error(t, err)
}

func TestCacheEntries(t *testing.T) {
	assert.Equal(t, -1, cacheEntries(-1))
	assert.Zero(t, cacheEntries(0))
	assert.Positive(t, cacheEntries(8))
}
