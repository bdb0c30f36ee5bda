package engine

import (
	"github.com/yourusername/sagnubg/internal/positionid"
)

// Move is a checker play of up to four steps. Unused steps have From -1.
// Point 24 is the bar and a To below 0 bears the checker off.
type Move struct {
	From [4]int8
	To   [4]int8
}

// MoveList holds the legal plays of a roll. Boards[i] is the position
// after Moves[i], still seen by the mover.
type MoveList struct {
	Moves  []Move
	Boards []Board

	maxSteps int
	maxPips  int
	index    map[positionid.Key]int
}

// GenerateMoves returns every legal play of d0-d1 for side 1 of board,
// one per distinct resulting position. Only plays that use as many dice
// and as many pips as possible are legal.
func GenerateMoves(board Board, d0, d1 int) *MoveList {
	ml := &MoveList{index: make(map[positionid.Key]int)}

	roll := [4]int{d0, d1}
	if d0 == d1 {
		roll[2], roll[3] = d0, d0
	}

	var steps [8]int
	ml.generate(roll, 0, 23, 0, board, &steps)
	if d0 != d1 {
		roll[0], roll[1] = roll[1], roll[0]
		ml.generate(roll, 0, 23, 0, board, &steps)
	}
	return ml
}

// generate plays die depth onward. It reports whether no die from depth on
// could be played, in which case the caller saves the play so far.
func (ml *MoveList) generate(roll [4]int, depth, from, pips int, board Board, steps *[8]int) bool {
	if depth > 3 || roll[depth] == 0 {
		return true
	}
	die := roll[depth]

	if board[1][24] > 0 {
		if board[0][die-1] >= 2 {
			return true
		}
		steps[2*depth], steps[2*depth+1] = 24, 24-die
		next := board
		applyStep(&next, 24, die)
		if ml.generate(roll, depth+1, 23, pips+die, next, steps) {
			ml.save(depth+1, pips+die, steps, next)
		}
		return false
	}

	used := false
	for i := from; i >= 0; i-- {
		if board[1][i] == 0 || !legalStep(&board, i, die) {
			continue
		}
		steps[2*depth], steps[2*depth+1] = i, i-die
		next := board
		applyStep(&next, i, die)

		// doubles are generated in non-increasing point order
		nextFrom := 23
		if roll[0] == roll[1] {
			nextFrom = i
		}
		if ml.generate(roll, depth+1, nextFrom, pips+die, next, steps) {
			ml.save(depth+1, pips+die, steps, next)
		}
		used = true
	}
	return !used
}

// legalStep reports whether the checker on src may move die pips.
func legalStep(board *Board, src, die int) bool {
	dst := src - die
	if dst >= 0 {
		return board[0][23-dst] < 2
	}

	back := 0
	for i := 1; i < 25; i++ {
		if board[1][i] > 0 {
			back = i
		}
	}
	// bearing off: all home, and either exact or from the highest point
	return back <= 5 && (src == back || dst == -1)
}

// applyStep moves one checker of side 1, hitting a lone opposing checker.
func applyStep(board *Board, src, die int) {
	dst := src - die
	board[1][src]--
	if dst < 0 {
		return
	}
	if board[0][23-dst] > 0 {
		board[0][23-dst] = 0
		board[0][24]++
	}
	board[1][dst]++
}

func (ml *MoveList) save(nSteps, pips int, steps *[8]int, board Board) {
	if nSteps < ml.maxSteps || pips < ml.maxPips {
		return
	}
	if nSteps > ml.maxSteps || pips > ml.maxPips {
		ml.Moves, ml.Boards = ml.Moves[:0], ml.Boards[:0]
		clear(ml.index)
	}
	ml.maxSteps, ml.maxPips = nSteps, pips

	m := Move{From: [4]int8{-1, -1, -1, -1}, To: [4]int8{-1, -1, -1, -1}}
	for i := 0; i < nSteps; i++ {
		m.From[i], m.To[i] = int8(steps[2*i]), int8(steps[2*i+1])
	}

	key := positionid.MakeKey(positionid.Board(board))
	if i, ok := ml.index[key]; ok {
		ml.Moves[i] = m
		return
	}
	ml.index[key] = len(ml.Moves)
	ml.Moves = append(ml.Moves, m)
	ml.Boards = append(ml.Boards, board)
}

// Len returns the number of legal plays.
func (ml *MoveList) Len() int { return len(ml.Moves) }

// ApplyMove plays m on board for side 1.
func ApplyMove(board Board, m Move) Board {
	for i := range m.From {
		if m.From[i] < 0 {
			break
		}
		applyStep(&board, int(m.From[i]), int(m.From[i]-m.To[i]))
	}
	return board
}

// CountHits returns how many opposing checkers m sends to the bar.
func CountHits(board Board, m Move) int {
	hits := 0
	for i := range m.From {
		if m.From[i] < 0 {
			break
		}
		if dst := int(m.To[i]); dst >= 0 && board[0][23-dst] == 1 {
			hits++
		}
		applyStep(&board, int(m.From[i]), int(m.From[i]-m.To[i]))
	}
	return hits
}
