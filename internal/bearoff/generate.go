package bearoff

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Generator computes one-sided distributions on demand and memoizes them.
// For every roll the move that minimizes the mean number of rolls is
// played, separately for bearing off everything and for the first checker.
// It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	off, gammon         [MaxRolls]float32
	offMean, gammonMean float32
}

// NewGenerator returns an empty generator for full-size home boards.
func NewGenerator() *Generator {
	return &Generator{entries: make([]*entry, NumPositions)}
}

// Distribution returns the distribution of board.
func (g *Generator) Distribution(board [Points]uint8) (Distribution, error) {
	if n := Count(board); n > Checkers {
		return Distribution{}, fmt.Errorf("bearoff board has %d checkers", n)
	}

	g.mu.Lock()
	e := g.get(board)
	g.mu.Unlock()

	var d Distribution
	for i := range d.Off {
		d.Off[i] = float64(e.off[i])
		d.Gammon[i] = float64(e.gammon[i])
	}
	return d, nil
}

// get must be called with g.mu held.
func (g *Generator) get(board [Points]uint8) *entry {
	id := Index(board)
	if e := g.entries[id]; e != nil {
		return e
	}

	e := &entry{}
	n := Count(board)
	if n == 0 {
		e.off[0], e.gammon[0] = 1, 1
		g.entries[id] = e
		return e
	}
	if n < Checkers {
		e.gammon[0] = 1
	}

	for d0 := 1; d0 <= 6; d0++ {
		for d1 := 1; d1 <= d0; d1++ {
			w := float32(2) / 36
			if d0 == d1 {
				w = float32(1) / 36
			}

			var bestOff, bestGammon *entry
			for _, b := range Moves(board, d0, d1) {
				c := g.get(b)
				if bestOff == nil || c.offMean < bestOff.offMean {
					bestOff = c
				}
				if bestGammon == nil || c.gammonMean < bestGammon.gammonMean {
					bestGammon = c
				}
			}

			addShifted(&e.off, &bestOff.off, w)
			if n == Checkers {
				addShifted(&e.gammon, &bestGammon.gammon, w)
			}
		}
	}

	for i := range e.off {
		e.offMean += float32(i) * e.off[i]
		e.gammonMean += float32(i) * e.gammon[i]
	}
	g.entries[id] = e
	return e
}

// addShifted adds w times src, one roll later, into dst.
func addShifted(dst, src *[MaxRolls]float32, w float32) {
	for i, p := range src {
		dst[min(i+1, MaxRolls-1)] += w * p
	}
}

// Moves returns the distinct home boards reachable from board with the
// roll d0-d1. Every die is playable while checkers remain, so each result
// uses all dice or leaves the board empty.
func Moves(board [Points]uint8, d0, d1 int) [][Points]uint8 {
	var out [][Points]uint8
	if d0 == d1 {
		out = playDice(board, []int{d0, d0, d0, d0}, out)
	} else {
		out = playDice(board, []int{d0, d1}, out)
		out = playDice(board, []int{d1, d0}, out)
	}
	return lo.Uniq(out)
}

func playDice(board [Points]uint8, dice []int, out [][Points]uint8) [][Points]uint8 {
	if len(dice) == 0 || Count(board) == 0 {
		return append(out, board)
	}

	d := dice[0]
	top := Points - 1
	for top > 0 && board[top] == 0 {
		top--
	}
	for i := 0; i <= top; i++ {
		if board[i] == 0 {
			continue
		}
		// bearing off from below the top point needs the exact die
		to := i - d
		if to < -1 && i != top {
			continue
		}
		b := board
		b[i]--
		if to >= 0 {
			b[to]++
		}
		out = playDice(b, dice[1:], out)
	}
	return out
}
