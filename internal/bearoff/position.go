package bearoff

import "sync"

// Points and Checkers are the dimensions of the one-sided tables: a full
// home board of 15 checkers.
const (
	Points   = 6
	Checkers = 15
)

// NumPositions is the number of one-sided positions with up to Checkers
// checkers on Points points, counting the empty board.
var NumPositions = Combination(Points+Checkers, Points)

// combinations[n-1][r-1] = C(n, r)
var (
	combinations    [40][25]int
	combinationOnce sync.Once
)

func initCombination() {
	for i := range combinations {
		combinations[i][0] = i + 1
	}
	for i := 1; i < len(combinations); i++ {
		for j := 1; j < len(combinations[i]); j++ {
			combinations[i][j] = combinations[i-1][j-1] + combinations[i-1][j]
		}
	}
}

// Combination returns C(n, r), or 0 outside the table.
func Combination(n, r int) int {
	if n <= 0 || r <= 0 || n > 40 || r > 25 {
		return 0
	}
	combinationOnce.Do(initCombination)
	return combinations[n-1][r-1]
}

func positionF(bits uint32, n, r int) int {
	if n == r {
		return 0
	}
	if bits&(1<<(n-1)) != 0 {
		return Combination(n-1, r) + positionF(bits, n-1, r-1)
	}
	return positionF(bits, n-1, r)
}

// PositionBearoff ranks a one-sided home board, index 0 being the ace
// point, among all boards of nPoints points and at most nChequers checkers.
// The empty board has index 0.
func PositionBearoff(board []uint8, nPoints, nChequers int) int {
	if nPoints == 0 {
		return 0
	}

	j := nPoints - 1
	for i := 0; i < nPoints; i++ {
		j += int(board[i])
	}
	bits := uint32(1) << j
	for i := 0; i < nPoints-1; i++ {
		j -= int(board[i]) + 1
		bits |= uint32(1) << j
	}

	return positionF(bits, nChequers+nPoints, nPoints)
}

func positionInv(id, n, r int) uint32 {
	if r == 0 {
		return 0
	}
	if n == r {
		return (1 << n) - 1
	}
	c := Combination(n-1, r)
	if id >= c {
		return 1<<(n-1) | positionInv(id-c, n-1, r-1)
	}
	return positionInv(id, n-1, r)
}

// PositionFromBearoff is the inverse of PositionBearoff.
func PositionFromBearoff(id, nPoints, nChequers int) [Points]uint8 {
	var board [Points]uint8

	bits := positionInv(id, nChequers+nPoints, nPoints)
	j := nPoints - 1
	for i := 0; i < nChequers+nPoints; i++ {
		if bits&(1<<i) != 0 {
			if j == 0 {
				break
			}
			j--
		} else {
			board[j]++
		}
	}
	return board
}

// Index is PositionBearoff for a full-size home board.
func Index(board [Points]uint8) int {
	return PositionBearoff(board[:], Points, Checkers)
}

// Count returns the number of checkers on board.
func Count(board [Points]uint8) int {
	n := 0
	for _, c := range board {
		n += int(c)
	}
	return n
}
