package neuralnet

import "math/bits"

// shot is one way of hitting a blot a given number of pips away.
type shot struct {
	// all is true when every via point must be open, false when either
	// of the first two will do.
	all   bool
	via   [3]int
	faces int
	pips  int
}

// shots lists every way to hit. The comment names the roll and distance.
var shots = [39]shot{
	{true, [3]int{}, 1, 1},           // 1x 1
	{true, [3]int{}, 1, 2},           // 2x 2
	{true, [3]int{1}, 2, 2},          // 11 2
	{true, [3]int{}, 1, 3},           // 3x 3
	{false, [3]int{1, 2}, 2, 3},      // 21 3
	{true, [3]int{1, 2}, 3, 3},       // 11 3
	{true, [3]int{}, 1, 4},           // 4x 4
	{false, [3]int{1, 3}, 2, 4},      // 31 4
	{true, [3]int{2}, 2, 4},          // 22 4
	{true, [3]int{1, 2, 3}, 4, 4},    // 11 4
	{true, [3]int{}, 1, 5},           // 5x 5
	{false, [3]int{1, 4}, 2, 5},      // 41 5
	{false, [3]int{2, 3}, 2, 5},      // 32 5
	{true, [3]int{}, 1, 6},           // 6x 6
	{false, [3]int{1, 5}, 2, 6},      // 51 6
	{false, [3]int{2, 4}, 2, 6},      // 42 6
	{true, [3]int{3}, 2, 6},          // 33 6
	{true, [3]int{2, 4}, 3, 6},       // 22 6
	{false, [3]int{1, 6}, 2, 7},      // 61 7
	{false, [3]int{2, 5}, 2, 7},      // 52 7
	{false, [3]int{3, 4}, 2, 7},      // 43 7
	{false, [3]int{2, 6}, 2, 8},      // 62 8
	{false, [3]int{3, 5}, 2, 8},      // 53 8
	{true, [3]int{4}, 2, 8},          // 44 8
	{true, [3]int{2, 4, 6}, 4, 8},    // 22 8
	{false, [3]int{3, 6}, 2, 9},      // 63 9
	{false, [3]int{4, 5}, 2, 9},      // 54 9
	{true, [3]int{3, 6}, 3, 9},       // 33 9
	{false, [3]int{4, 6}, 2, 10},     // 64 10
	{true, [3]int{5}, 2, 10},         // 55 10
	{false, [3]int{5, 6}, 2, 11},     // 65 11
	{true, [3]int{6}, 2, 12},         // 66 12
	{true, [3]int{4, 8}, 3, 12},      // 44 12
	{true, [3]int{3, 6, 9}, 4, 12},   // 33 12
	{true, [3]int{5, 10}, 3, 15},     // 55 15
	{true, [3]int{4, 8, 12}, 4, 16},  // 44 16
	{true, [3]int{6, 12}, 3, 18},     // 66 18
	{true, [3]int{5, 10, 15}, 4, 20}, // 55 20
	{true, [3]int{6, 12, 18}, 4, 24}, // 66 24
}

// shotsAt[d-1] indexes the shots covering a distance of d pips.
var shotsAt = func() (at [24][]int) {
	for i, s := range shots {
		at[s.pips-1] = append(at[s.pips-1], i)
	}
	return at
}()

// rollShots indexes the shots each of the 21 rolls can make, doubles
// first. -1 pads the non doubles.
var rollShots = [21][4]int{
	{0, 2, 5, 9},     // 11
	{1, 8, 17, 24},   // 22
	{3, 16, 27, 33},  // 33
	{6, 23, 32, 35},  // 44
	{10, 29, 34, 37}, // 55
	{13, 31, 36, 38}, // 66
	{0, 1, 4, -1},    // 21
	{0, 3, 7, -1},    // 31
	{1, 3, 12, -1},   // 32
	{0, 6, 11, -1},   // 41
	{1, 6, 15, -1},   // 42
	{3, 6, 20, -1},   // 43
	{0, 10, 14, -1},  // 51
	{1, 10, 19, -1},  // 52
	{3, 10, 22, -1},  // 53
	{6, 10, 26, -1},  // 54
	{0, 13, 18, -1},  // 61
	{1, 13, 21, -1},  // 62
	{3, 13, 25, -1},  // 63
	{6, 13, 28, -1},  // 64
	{10, 13, 30, -1}, // 65
}

// rollHits is what one roll achieves: checkers hit and the most pips the
// opponent loses.
type rollHits struct {
	checkers int
	pips     int
}

func (r *rollHits) lose(pips int) { r.pips = max(r.pips, pips) }

// highest returns the index of the top set bit of a hitter mask.
func highest(mask int) int { return bits.Len(uint(mask)) - 1 }

// hitters returns, per shot, a mask of the points board can hit a blot of
// opp's from with that shot.
func hitters(board, opp [25]uint8) (from [len(shots)]int) {
	made := 0
	for _, c := range board[:6] {
		if c >= 2 {
			made++
		}
	}
	// blots on our ace and deuce points are only hit with a strong board
	top := 21
	if made > 2 {
		top = 23
	}

	for blot := top; blot >= 0; blot-- {
		if opp[blot] != 1 {
			continue
		}
		for p := 24 - blot; p < 25; p++ {
			if board[p] == 0 || (p < 6 && board[p] == 2) {
				continue
			}
			for _, i := range shotsAt[p-24+blot] {
				if open(&shots[i], opp, blot) {
					from[i] |= 1 << p
				}
			}
		}
	}
	return from
}

// open reports whether the points s passes through on the way to blot are
// free of opp's made points.
func open(s *shot, opp [25]uint8, blot int) bool {
	blocked := func(k int) bool { return opp[blot-s.via[k]] > 1 }
	if !s.all {
		return !(blocked(0) && blocked(1))
	}
	if s.faces == 1 {
		return true
	}
	for k := 0; k < 3 && s.via[k] > 0; k++ {
		if blocked(k) {
			return false
		}
	}
	return true
}

// hitStats returns the average pips opp loses to hits (scaled by 12*36)
// and the chances of hitting at least one and at least two checkers.
func hitStats(board, opp [25]uint8) (pipLoss, p1, p2 float32) {
	from := hitters(board, opp)

	var rolls [21]rollHits
	switch board[24] {
	case 0:
		hitsFree(board, &from, &rolls)
	case 1:
		hitsOneOnBar(opp, &from, &rolls)
	default:
		hitsFromBar(&from, &rolls)
	}

	pips, n1, n2 := 0, 0, 0
	for i, r := range rolls {
		weight := 2
		if i < 6 {
			weight = 1
		}
		pips += weight * r.pips
		if r.checkers > 0 {
			n1 += weight
		}
		if r.checkers > 1 {
			n2 += weight
		}
	}
	return float32(pips) / (12 * 36), float32(n1) / 36, float32(n2) / 36
}

// hitsFree scores the rolls when board has nothing on the bar.
func hitsFree(board [25]uint8, from *[len(shots)]int, rolls *[21]rollHits) {
	for i, row := range rollShots {
		r := &rolls[i]
		last := -1
		for _, si := range row {
			if si < 0 {
				break
			}
			mask := from[si]
			if mask == 0 {
				continue
			}
			s := &shots[si]
			p := highest(mask)
			r.lose(p - s.pips + 1)
			if s.faces > 1 {
				r.checkers = max(r.checkers, 1)
				continue
			}
			if last != p || board[p] > 1 {
				r.checkers++
			}
			last = p
			// a double can also hit with a second checker
			if row[3] >= 0 && mask&^(1<<p) != 0 {
				r.checkers++
			}
		}
	}
}

// hitsOneOnBar scores the rolls when board has one checker on the bar,
// which must enter before anything else moves.
func hitsOneOnBar(opp [25]uint8, from *[len(shots)]int, rolls *[21]rollHits) {
	for i, row := range rollShots {
		r := &rolls[i]
		entered := false
		for j, si := range row {
			if si < 0 {
				break
			}
			mask := from[si]
			if mask == 0 {
				continue
			}
			s := &shots[si]
			if s.faces > 1 {
				if mask&(1<<24) == 0 {
					continue
				}
				r.checkers = max(r.checkers, 1)
				r.lose(25 - s.pips)
				continue
			}
			for p := highest(mask); p > 0; p-- {
				if mask&(1<<p) == 0 {
					continue
				}
				if p != 24 {
					if entered {
						break
					}
					// the other die enters
					if opp[shots[row[1-j]].pips-1] > 1 {
						break
					}
					entered = true
				}
				r.checkers++
				r.lose(p - s.pips + 1)
			}
		}
	}
}

// hitsFromBar scores the rolls when board has two or more checkers on the
// bar: only direct hits while entering count.
func hitsFromBar(from *[len(shots)]int, rolls *[21]rollHits) {
	for i, row := range rollShots {
		r := &rolls[i]
		for _, si := range row[:2] {
			if from[si]&(1<<24) == 0 || shots[si].faces != 1 {
				continue
			}
			r.checkers++
			r.lose(25 - shots[si].pips)
		}
	}
}
