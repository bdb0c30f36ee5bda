package engine

import (
	"math/rand/v2"

	"lukechampine.com/frand"
)

// pcgStream is the second PCG word derived from a seed.
const pcgStream = 0x9e3779b97f4a7c15

// RNG is the engine's dice stream. Reseeding with the same value replays
// the same numbers. It is not safe for concurrent use.
type RNG struct {
	src *rand.PCG
}

// NewRNG returns a stream seeded from the operating system.
func NewRNG() *RNG {
	r := &RNG{src: rand.NewPCG(0, 0)}
	r.Seed(frand.Uint64n(1 << 32))
	return r
}

// Seed restarts the stream.
func (r *RNG) Seed(seed uint64) {
	r.src.Seed(seed, seed^pcgStream)
}

// Uint32 returns the next number of the stream.
func (r *RNG) Uint32() uint32 {
	return uint32(r.src.Uint64() >> 32)
}

// RollDice draws exactly two numbers and returns a roll, higher die first.
func (r *RNG) RollDice() (int, int) {
	d0 := int(r.Uint32()%6) + 1
	d1 := int(r.Uint32()%6) + 1
	if d0 < d1 {
		d0, d1 = d1, d0
	}
	return d0, d1
}

// NewSeed returns a fresh seed in the range of the C library random().
func NewSeed() int64 {
	return int64(frand.Uint64n(1 << 31))
}
