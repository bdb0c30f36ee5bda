package neuralnet

// crashedChequers is the number of active checkers at or below which a
// contact position counts as crashed.
const crashedChequers = 6

// backChecker returns the index of the rearmost checker of side, or -1.
func backChecker(side [25]uint8) int {
	for i := 24; i >= 0; i-- {
		if side[i] > 0 {
			return i
		}
	}
	return -1
}

func chequers(side [25]uint8) int {
	n := 0
	for _, c := range side {
		n += int(c)
	}
	return n
}

// ClassifyPosition picks the evaluator for b. Only standard backgammon is
// handled.
func ClassifyPosition(b Board) PositionClass {
	back, oppBack := backChecker(b[1]), backChecker(b[0])
	switch {
	case back < 0 || oppBack < 0:
		return ClassOver
	case back+oppBack > 22:
		if crashed(b[0]) || crashed(b[1]) {
			return ClassCrashed
		}
		return ClassContact
	case IsBearoff(b, 6, 6):
		return ClassBearoffTS
	case IsBearoff(b, 6, 15):
		return ClassBearoff1
	}
	return ClassRace
}

// crashed reports whether side has too few checkers left in play, counting
// checkers stacked on its ace point or bar as out of play.
func crashed(side [25]uint8) bool {
	tot := chequers(side)
	bar, ace := int(side[24]), int(side[0])
	switch {
	case tot <= crashedChequers:
		return true
	case bar > 1:
		return tot <= crashedChequers+bar ||
			(ace > 1 && 1+tot-(bar+ace) <= crashedChequers)
	}
	return tot <= crashedChequers+ace-1
}

// IsBearoff reports whether both sides have at most maxChequers checkers,
// all within their first points points.
func IsBearoff(b Board, points, maxChequers int) bool {
	for _, side := range b {
		n := 0
		for i, c := range side {
			if c == 0 {
				continue
			}
			if i >= points {
				return false
			}
			n += int(c)
		}
		if n > maxChequers {
			return false
		}
	}
	return true
}
