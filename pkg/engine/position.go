// Package engine evaluates backgammon positions and runs the rollouts and
// cube analysis of the batch tool.
package engine

import (
	"github.com/yourusername/sagnubg/internal/positionid"
)

// Board holds checker counts per point for both sides. Index 24 is the
// bar. Side 1 is the player on roll and each side counts points from its
// own ace point.
type Board [2][25]uint8

// Output indexes of Probs.
const (
	OutputWin = iota
	OutputWinGammon
	OutputWinBackgammon
	OutputLoseGammon
	OutputLoseBackgammon
	NumOutputs
)

// Probs are cubeless outcome probabilities from the point of view of the
// side on roll.
type Probs [NumOutputs]float64

// Money is the cubeless money equity of p.
func (p Probs) Money() float64 {
	return 2*p[OutputWin] - 1 + p[OutputWinGammon] + p[OutputWinBackgammon] -
		p[OutputLoseGammon] - p[OutputLoseBackgammon]
}

// Invert returns p seen by the other side.
func (p Probs) Invert() Probs {
	return Probs{
		1 - p[OutputWin],
		p[OutputLoseGammon],
		p[OutputLoseBackgammon],
		p[OutputWinGammon],
		p[OutputWinBackgammon],
	}
}

// Candidate is a position reached by a legal move, seen by the side that
// moved, with a transient score.
type Candidate struct {
	Board Board
	Score float64
}

// Text returns the position text of the candidate's board.
func (c Candidate) Text() string {
	return positionid.TextFromBoard(positionid.Board(c.Board))
}

// StartingPosition returns the initial position.
func StartingPosition() Board {
	var b Board
	for side := range b {
		b[side][5] = 5
		b[side][7] = 3
		b[side][12] = 5
		b[side][23] = 2
	}
	return b
}

// BoardFromText decodes position text.
func BoardFromText(s string) (Board, error) {
	b, err := positionid.BoardFromText(s)
	return Board(b), err
}

// Text encodes board as position text.
func (b Board) Text() string {
	return positionid.TextFromBoard(positionid.Board(b))
}

// SwapSides returns b seen by the other side.
func SwapSides(b Board) Board {
	return Board{b[1], b[0]}
}

// Checkers returns the number of checkers side has on the board.
func (b *Board) Checkers(side int) int {
	n := 0
	for _, c := range b[side] {
		n += int(c)
	}
	return n
}

// backChecker returns the highest occupied point of side, or -1.
func (b *Board) backChecker(side int) int {
	for i := 24; i >= 0; i-- {
		if b[side][i] > 0 {
			return i
		}
	}
	return -1
}

// IsRace reports whether the two sides have passed each other.
func (b *Board) IsRace() bool {
	return b.backChecker(0)+b.backChecker(1) < 23
}

// GameOver reports whether either side has borne off all checkers.
func (b *Board) GameOver() bool {
	return b.backChecker(0) < 0 || b.backChecker(1) < 0
}

// pips returns the pip count of side.
func (b *Board) pips(side int) int {
	n := 0
	for i, c := range b[side] {
		n += int(c) * (i + 1)
	}
	return n
}
