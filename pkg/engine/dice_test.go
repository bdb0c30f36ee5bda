package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNGSeedReplays(t *testing.T) {
	r := NewRNG()
	r.Seed(12345)
	var first [10]uint32
	for i := range first {
		first[i] = r.Uint32()
	}

	r.Seed(12345)
	for i := range first {
		assert.Equal(t, first[i], r.Uint32(), "draw %d", i)
	}
}

func TestRNGRollDice(t *testing.T) {
	r := NewRNG()
	r.Seed(1)
	seen := map[[2]int]bool{}
	for i := 0; i < 2000; i++ {
		d0, d1 := r.RollDice()
		require.GreaterOrEqual(t, d0, d1)
		require.True(t, d1 >= 1 && d0 <= 6, "roll %d-%d", d0, d1)
		seen[[2]int{d0, d1}] = true
	}
	assert.Len(t, seen, 21)
}

func TestNewSeedRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		s := NewSeed()
		assert.GreaterOrEqual(t, s, int64(0))
		assert.Less(t, s, int64(1)<<31)
	}
}

func TestDiceGenSemiRandomFirstRolls(t *testing.T) {
	r := NewRNG()
	r.Seed(3)
	g := NewDiceGen(r)
	g.StartSave(36)

	counts := map[[2]int]int{}
	for ng := 0; ng < 36; ng++ {
		if ng > 0 {
			g.Next()
		}
		d0, d1 := g.Roll()
		counts[[2]int{d0, d1}]++
		g.Roll()
	}

	require.Len(t, counts, 21)
	for roll, n := range counts {
		want := 2
		if roll[0] == roll[1] {
			want = 1
		}
		assert.Equal(t, want, n, "roll %v", roll)
	}
}

func TestDiceGenRetrieveReplays(t *testing.T) {
	r := NewRNG()
	r.Seed(11)
	g := NewDiceGen(r)
	g.StartSave(4)
	assert.Equal(t, 4, g.CurNSeq())

	var saved [4][5][2]int
	for ng := range saved {
		if ng > 0 {
			g.Next()
		}
		for k := range saved[ng] {
			saved[ng][k][0], saved[ng][k][1] = g.Roll()
		}
	}

	r.Seed(999)
	g.StartRetrieve()
	for ng := range saved {
		if ng > 0 {
			g.Next()
		}
		for k := range saved[ng] {
			d0, d1 := g.Roll()
			assert.Equal(t, saved[ng][k], [2]int{d0, d1}, "game %d roll %d", ng, k)
		}
	}
}

func TestDiceGenRetrieveExtends(t *testing.T) {
	r := NewRNG()
	r.Seed(21)
	g := NewDiceGen(r)
	g.StartSave(1)
	g.Roll()
	g.Roll()

	// rolls past the recording continue the game's own stream
	g.StartRetrieve()
	g.Roll()
	g.Roll()
	d0, d1 := g.Roll()
	g.StartRetrieve()
	g.Roll()
	g.Roll()
	e0, e1 := g.Roll()
	assert.Equal(t, [2]int{d0, d1}, [2]int{e0, e1})
}

func TestDiceGenEndSave(t *testing.T) {
	r := NewRNG()
	g := NewDiceGen(r)
	g.EndSave(1)
	assert.Equal(t, 0, g.CurNSeq())
	assert.Zero(t, g.CurSeed())

	d0, d1 := g.Roll()
	assert.True(t, d0 >= d1 && d1 >= 1 && d0 <= 6)
}
