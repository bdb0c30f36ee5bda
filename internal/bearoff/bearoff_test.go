package bearoff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombination(t *testing.T) {
	tests := []struct {
		n, r     int
		expected int
	}{
		{6, 1, 6},
		{6, 2, 15},
		{6, 3, 20},
		{6, 6, 1},
		{10, 3, 120},
		{21, 6, 54264}, // 6 points, up to 15 checkers
		{0, 3, 0},
		{41, 3, 0},
	}

	for _, tt := range tests {
		if got := Combination(tt.n, tt.r); got != tt.expected {
			t.Errorf("Combination(%d, %d) = %d, expected %d", tt.n, tt.r, got, tt.expected)
		}
	}
	assert.Equal(t, 54264, NumPositions)
}

func TestPositionRoundTrip(t *testing.T) {
	assert.Equal(t, 0, Index([Points]uint8{}))

	for id := 0; id < NumPositions; id += 97 {
		board := PositionFromBearoff(id, Points, Checkers)
		require.LessOrEqual(t, Count(board), Checkers)
		require.Equal(t, id, Index(board), "board %v", board)
	}
}

func TestMoves(t *testing.T) {
	// 6-1 from two checkers on the six point: either order ends on 5
	got := Moves([Points]uint8{0, 0, 0, 0, 0, 2}, 6, 1)
	assert.Equal(t, [][Points]uint8{{0, 0, 0, 0, 1, 0}}, got)

	// higher die bears off from the top point only
	got = Moves([Points]uint8{1, 0, 1, 0, 0, 0}, 6, 5)
	assert.Equal(t, [][Points]uint8{{}}, got)

	got = Moves([Points]uint8{2, 0, 0, 0, 0, 0}, 2, 2)
	assert.Equal(t, [][Points]uint8{{}}, got)
}

func TestGeneratorKnownValues(t *testing.T) {
	g := NewGenerator()

	d, err := g.Distribution([Points]uint8{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Off[0])

	d, err = g.Distribution([Points]uint8{1})
	require.NoError(t, err)
	assert.InDelta(t, 1, d.Off[1], 1e-6)
	assert.InDelta(t, 1, d.Gammon[0], 1e-6, "fewer than 15 checkers: one is off already")

	// two on the six point are off in one roll only with 33, 44, 55 or 66
	d, err = g.Distribution([Points]uint8{0, 0, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.InDelta(t, 4.0/36, d.Off[1], 1e-6)
	// small rolls can leave a checker that a second roll still misses
	assert.InDelta(t, 145.0/216, d.Off[2], 1e-6)

	_, err = g.Distribution([Points]uint8{16})
	assert.Error(t, err)
}

func TestGeneratorFullBoard(t *testing.T) {
	g := NewGenerator()
	d, err := g.Distribution([Points]uint8{3, 3, 3, 2, 2, 2})
	require.NoError(t, err)

	var sum, gsum float64
	for i := range d.Off {
		sum += d.Off[i]
		gsum += d.Gammon[i]
	}
	assert.InDelta(t, 1, sum, 1e-4)
	assert.InDelta(t, 1, gsum, 1e-4)
	assert.Zero(t, d.Gammon[0], "15 checkers cannot have one off already")
	assert.InDelta(t, 1, d.Gammon[1], 1e-6, "ace point checkers come off with any roll")

	mean, stddev := d.Mean()
	assert.Greater(t, mean, 5.0)
	assert.Less(t, mean, 9.0)
	assert.Greater(t, stddev, 0.0)
}

func TestNormal(t *testing.T) {
	assert.Equal(t, 1.0, normal(3, 3, 0))
	assert.Equal(t, 0.0, normal(2, 3, 0))
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), normal(0, 0, 1), 1e-12)
}

func TestLoad(t *testing.T) {
	_, err := parse([]byte("short"))
	assert.Error(t, err)

	header := make([]byte, headerSize)
	copy(header, "gnubg-TS-06-06-1xxxxxxxxxxxxxxxxxxxxxxxx")
	_, err = parse(header)
	assert.ErrorIs(t, err, ErrUnsupported)

	db, err := Load("../../data/gnubg_os0.bd")
	if err != nil {
		t.Skipf("Bearoff database not found: %v", err)
	}
	assert.Equal(t, Points, db.NPoints)

	// the database and the generator agree on a small position
	board := [Points]uint8{2, 1, 0, 1, 0, 0}
	want, err := NewGenerator().Distribution(board)
	require.NoError(t, err)
	got, err := db.Distribution(board)
	require.NoError(t, err)
	wantMean, _ := want.Mean()
	gotMean, _ := got.Mean()
	assert.InDelta(t, wantMean, gotMean, 1e-3)
}
