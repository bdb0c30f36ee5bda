package neuralnet

import "math/bits"

// Hand crafted contact features, one block of extraInputs per side.
const (
	fOff1 = iota
	fOff2
	fOff3
	fBreakContact
	fBackChequer
	fBackAnchor
	fForwardAnchor
	fPipLoss
	fP1
	fP2
	fBackEscapes
	fAContain
	fAContain2
	fContain
	fContain2
	fMobility
	fMoment2
	fEnter
	fEnter2
	fTiming
	fBackbone
	fBackG
	fBackG1
	fFreePip
	fBackREscapes
)

// escapeTable[m] counts the rolls that jump a checker past the blocks in
// mask m, bit i set when the point i+1 pips ahead is made. escapeBeyond
// only counts landings beyond the nearest block.
var escapeTable, escapeBeyond = buildEscapeTables()

func buildEscapeTables() (all, beyond [1 << 12]int) {
	for mask := range 1 << 12 {
		nearest := bits.TrailingZeros(uint(mask))
		blocked := func(i int) bool { return mask&(1<<i) != 0 }
		for d0 := 0; d0 <= 5; d0++ {
			for d1 := 0; d1 <= d0; d1++ {
				land := d0 + d1 + 1
				if blocked(land) || (blocked(d0) && blocked(d1)) {
					continue
				}
				ways := 2
				if d0 == d1 {
					ways = 1
				}
				all[mask] += ways
				if mask != 0 && land > nearest {
					beyond[mask] += ways
				}
			}
		}
	}
	return all, beyond
}

// blockMask collects the made points among the 12 in front of a checker
// n points from side's bar.
func blockMask(side [25]uint8, n int) int {
	m := 0
	for i := range min(n, 12) {
		if side[24+i-n] >= 2 {
			m |= 1 << i
		}
	}
	return m
}

// Escapes counts the rolls (out of 36) with which a checker n points from
// the bar of side's opponent gets past side's blocks.
func Escapes(side [25]uint8, n int) int {
	return escapeTable[blockMask(side, n)]
}

func escapesBeyond(side [25]uint8, n int) int {
	return escapeBeyond[blockMask(side, n)]
}

// features fills the hand crafted inputs of board against opp into x.
func features(x []float32, board, opp [25]uint8) {
	// distance of opp's rearmost checker from board's bar
	oppBack := 23 - backChecker(opp)

	np := 0
	for i := oppBack + 1; i < 25; i++ {
		np += (i + 1 - oppBack) * int(board[i])
	}
	x[fBreakContact] = float32(np) / (15 + 152)

	free := 0
	for i := 0; i < oppBack; i++ {
		free += (i + 1) * int(board[i])
	}
	x[fFreePip] = float32(free) / 100

	x[fTiming] = timing(board, oppBack)

	back := backChecker(board)
	x[fBackChequer] = float32(back) / 24
	anchor := min(back, 23)
	for anchor >= 0 && board[anchor] < 2 {
		anchor--
	}
	x[fBackAnchor] = float32(anchor) / 24
	x[fForwardAnchor] = forwardAnchor(board, anchor)

	x[fPipLoss], x[fP1], x[fP2] = hitStats(board, opp)

	x[fBackEscapes] = float32(Escapes(board, 23-oppBack)) / 36
	x[fBackREscapes] = float32(escapesBeyond(board, 23-oppBack)) / 36

	worst := 36
	for i := 15; i < 24-oppBack; i++ {
		worst = min(worst, Escapes(board, i))
	}
	x[fAContain] = float32(36-worst) / 36
	x[fAContain2] = x[fAContain] * x[fAContain]
	if oppBack < 0 {
		worst = 36
	}
	for i := 15; i < 24; i++ {
		worst = min(worst, Escapes(board, i))
	}
	x[fContain] = float32(36-worst) / 36
	x[fContain2] = x[fContain] * x[fContain]

	mob := 0
	for i := 6; i < 25; i++ {
		if board[i] > 0 {
			mob += (i - 5) * int(board[i]) * Escapes(opp, i)
		}
	}
	x[fMobility] = float32(mob) / 3600

	x[fMoment2] = moment(board)
	x[fEnter], x[fEnter2] = barEntry(board, opp)
	x[fBackbone] = backbone(board)
	x[fBackG], x[fBackG1] = backGame(board)
}

// forwardAnchor scores the most advanced anchor in the opponent's home
// board, or failing that in its outer board. 2 means none.
func forwardAnchor(board [25]uint8, backAnchor int) float32 {
	for p := 18; p <= backAnchor; p++ {
		if board[p] >= 2 {
			return float32(24-p) / 6
		}
	}
	for p := 17; p >= 12; p-- {
		if board[p] >= 2 {
			return float32(24-p) / 6
		}
	}
	return 2
}

// timing estimates the pips board can play before it must break its home
// board points, with oppBack the reach of the opponent's rear checker.
func timing(board [25]uint8, oppBack int) float32 {
	t := 24 * int(board[24])
	spare := int(board[24])
	m := max(oppBack, 11)
	for i := 23; i > m; i-- {
		if c := int(board[i]); c > 0 && c != 2 {
			n := max(c-2, 1)
			spare += n
			t += i * n
		}
	}
	for i := m; i >= 6; i-- {
		c := int(board[i])
		spare += c
		t += i * c
	}
	for i := 5; i >= 0; i-- {
		switch c := int(board[i]); {
		case c > 2:
			t += i * (c - 2)
			spare += c - 2
		case c < 2 && spare >= 2-c:
			t -= i * (2 - c)
			spare -= 2 - c
		}
	}
	return float32(t) / 100
}

// moment is the rounded up second moment of the checkers behind the mean
// position.
func moment(board [25]uint8) float32 {
	count, sum := 0, 0
	for i, c := range board {
		count += int(c)
		sum += i * int(c)
	}
	if count == 0 {
		return 0
	}
	mean := (sum + count - 1) / count

	k, behind := 0, 0
	for i := mean + 1; i < 25; i++ {
		c := int(board[i])
		behind += c
		k += c * (i - mean) * (i - mean)
	}
	if behind > 0 {
		k = (k + behind - 1) / behind
	}
	return float32(k) / 400
}

// barEntry returns the pips lost entering from the bar and the share of
// rolls that enter against opp's home board.
func barEntry(board, opp [25]uint8) (loss, enter float32) {
	if board[24] > 0 {
		two := board[24] > 1
		l := 0
		for i := range 6 {
			if opp[i] > 1 {
				l += 4 * (i + 1)
			}
			for j := i + 1; j < 6; j++ {
				switch {
				case opp[i] > 1 && opp[j] > 1:
					l += 2 * (i + j + 2)
				case opp[i] > 1 && two:
					l += 2 * (i + 1)
				case opp[i] <= 1 && two && opp[j] > 1:
					l += 2 * (j + 1)
				}
			}
		}
		loss = float32(l) / (36 * (49.0 / 6))
	}

	made := 0
	for _, c := range opp[:6] {
		if c > 1 {
			made++
		}
	}
	enter = float32(36-(made-6)*(made-6)) / 36
	return loss, enter
}

// backbone scores the spacing of board's points against its rearmost one.
func backbone(board [25]uint8) float32 {
	rear := -1
	w, tot := 0, 0
	for p := 23; p > 0; p-- {
		if board[p] < 2 {
			continue
		}
		if rear < 0 {
			rear = p
			continue
		}
		weight := 0
		switch d := rear - p; {
		case d <= 6:
			weight = 11
		case d <= 11:
			weight = 13 - d
		}
		w += weight * int(board[rear])
		tot += int(board[rear])
	}
	if tot == 0 {
		return 0
	}
	return 1 - float32(w)/float32(tot*11)
}

// backGame flags two or more anchors (backg) or exactly one (backg1) in the
// opponent's home board.
func backGame(board [25]uint8) (backg, backg1 float32) {
	anchors := 0
	for _, c := range board[18:24] {
		if c > 1 {
			anchors++
		}
	}
	if anchors == 0 {
		return 0, 0
	}
	tot := 0
	for _, c := range board[18:25] {
		tot += int(c)
	}
	if anchors > 1 {
		return float32(tot-3) / 4, 0
	}
	return 0, float32(tot) / 8
}
