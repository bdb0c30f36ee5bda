package engine

import (
	"slices"

	"github.com/yourusername/sagnubg/internal/met"
)

// PlyBound limits the moves re-scored at a ply: Moves are always kept,
// and up to Additional more while within Threshold of the best 0-ply
// score.
type PlyBound struct {
	Moves      int
	Additional int
	Threshold  float64
}

var defaultPlyBounds = [4]PlyBound{
	{},
	{Moves: 8},
	{Moves: 2, Additional: 3, Threshold: 0.1},
	{Moves: 2, Additional: 3, Threshold: 0.1},
}

// SetPlyBounds changes the bound used when searching at plies. Only plies
// 1 to 3 have bounds.
func (e *Engine) SetPlyBounds(plies, moves, additional int, threshold float64) {
	if plies > 0 && plies < len(e.bounds) {
		e.bounds[plies] = PlyBound{Moves: moves, Additional: additional, Threshold: threshold}
	}
}

// PlyBounds returns the bound used when searching at plies.
func (e *Engine) PlyBounds(plies int) PlyBound {
	return e.bounds[min(max(plies, 0), len(e.bounds)-1)]
}

// Scorer turns probabilities of the side that just moved into a score,
// higher being better for that side.
type Scorer func(Probs) float64

// MoneyScorer scores by cubeless money equity.
func MoneyScorer(p Probs) float64 { return p.Money() }

// MatchScorer scores at match state s. xOnPlay tells whether the side
// moving is X of s.
func (e *Engine) MatchScorer(s met.State, xOnPlay bool) Scorer {
	if s.Money() {
		return MoneyScorer
	}
	return func(p Probs) float64 { return matchEquity(e.met, p, s, xOnPlay) }
}

func ratio(n, d float64) float64 {
	if d > 0 {
		return n / d
	}
	return 0
}

// matchEquity estimates the cubeful match equity of p by a live cube
// window, widened by backgammons, blended with the dead cube line.
func matchEquity(t *met.Table, p Probs, s met.State, xOnPlay bool) float64 {
	xWins, xG, xBG := p[OutputWin], p[OutputWinGammon], p[OutputWinBackgammon]
	oG, oBG := p[OutputLoseGammon], p[OutputLoseBackgammon]
	if !xOnPlay {
		xWins = 1 - xWins
		xG, xBG, oG, oBG = oG, oBG, xG, xBG
	}
	oWins := 1 - xWins
	xgr, ogr := ratio(xG, xWins), ratio(oG, oWins)
	xAway, oAway, cube := s.XAway, s.OAway, s.Cube

	var el met.Window
	if cube == 1 || s.XOwns || s.Crawford {
		el, _ = t.Windows(xAway, oAway, cube, xgr, ogr)
	} else {
		w, _ := t.Windows(oAway, xAway, cube, ogr, xgr)
		el = w.Reverse()
	}

	eCube := cube
	if cube == 1 && (xAway == 1 || oAway == 1) && !s.Crawford {
		eCube = 2
	}
	xbgr, obgr := ratio(xBG, xG), ratio(oBG, oG)

	var hdif, ldif float64
	if oAway > 1 {
		hdif = t.Value(xAway-3*eCube, oAway) - t.Value(xAway-2*eCube, oAway)
	} else {
		hdif = t.EPost(xAway-3*eCube) - t.EPost(xAway-2*eCube)
	}
	el.YHigh = min(1, el.YHigh+xbgr*xgr*hdif)

	if xAway > 1 {
		ldif = t.Value(xAway, oAway-3*eCube) - t.Value(xAway, oAway-2*eCube)
	} else {
		ldif = -(t.EPost(oAway-3*eCube) - t.EPost(oAway-2*eCube))
	}
	el.YLow = max(-1, el.YLow+obgr*ogr*ldif)

	dead := el
	switch {
	case xWins > el.XHigh:
		el = met.Window{XLow: el.XHigh, YLow: el.YHigh, XHigh: 1, YHigh: t.EWhenWin(xgr, xbgr, xAway, oAway, eCube)}
	case xWins < el.XLow:
		el = met.Window{XLow: 0, YLow: t.EWhenLose(ogr, obgr, xAway, oAway, eCube), XHigh: el.XLow, YHigh: el.YLow}
	}
	live := el.Y(xWins)

	ed := live
	if xAway != 1 && oAway != 1 {
		dyh := t.EWhenWin(xgr, xbgr, xAway, oAway, cube)
		if el.XHigh == 1 {
			dyh = el.YHigh
		}
		dyl := t.EWhenLose(ogr, obgr, xAway, oAway, cube)
		if el.XLow == 0 {
			dyl = el.YLow
		}

		switch {
		case cube == 1 && xWins > dead.XHigh:
			dead.XHigh, dead.YHigh = 1, dyh
			ed = (dead.Y(xWins) + live) / 2
		case cube == 1 && xWins < dead.XLow:
			dead.XLow, dead.YLow = 0, dyl
			ed = (dead.Y(xWins) + live) / 2
		case cube == 1:
			low, high := dead, el
			low.XLow, low.YLow = 0, dyl
			high.XHigh, high.YHigh = 1, dyh
			ed = (low.Y(xWins) + high.Y(xWins)) / 2
		case s.XOwns:
			dead.XHigh, dead.YHigh = 1, dyh
			ed = dead.Y(xWins)
		default:
			dead.XLow, dead.YLow = 0, dyl
			ed = dead.Y(xWins)
		}
	}

	const cubeLife = 0.78
	e1 := cubeLife*live + (1-cubeLife)*ed
	if xOnPlay {
		return e1
	}
	return -e1
}

// scoreBoards scores positions reached by the side on roll: each is
// evaluated from the opponent's side and inverted.
func (e *Engine) scoreBoards(cands []Candidate, plies int, score Scorer) error {
	for i := range cands {
		p, err := e.EvaluateProbs(SwapSides(cands[i].Board), plies)
		if err != nil {
			return err
		}
		cands[i].Score = score(p.Invert())
	}
	return nil
}

func sortCandidates(cands []Candidate) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}

func candidates(ml *MoveList) []Candidate {
	cands := make([]Candidate, ml.Len())
	for i, b := range ml.Boards {
		cands[i].Board = b
	}
	return cands
}

// FindBestMove plays d0-d1 for the side on roll and returns the resulting
// position, still seen by the mover. It reports false, returning board
// unchanged, when there is no legal move. Moves are ranked at 0-ply and the
// leaders allowed by the ply bound are re-scored at plies.
func (e *Engine) FindBestMove(board Board, d0, d1, plies int, score Scorer) (Board, bool, error) {
	ml := GenerateMoves(board, d0, d1)
	switch ml.Len() {
	case 0:
		return board, false, nil
	case 1:
		return ml.Boards[0], true, nil
	}

	cands := candidates(ml)
	if err := e.scoreBoards(cands, 0, score); err != nil {
		return board, false, err
	}
	sortCandidates(cands)

	if plies > 0 {
		bound := e.PlyBounds(plies)
		n := len(cands)
		keep := min(bound.Moves, n)
		limit := min(n, keep+bound.Additional)
		best := cands[0].Score
		for keep < limit && cands[keep].Score >= best-bound.Threshold {
			keep++
		}
		cands = cands[:max(keep, 1)]

		if err := e.scoreBoards(cands, plies, score); err != nil {
			return board, false, err
		}
	}

	best := 0
	for i := range cands {
		if cands[i].Score >= cands[best].Score {
			best = i
		}
	}
	return cands[best].Board, true, nil
}

// FindBestMoves returns the 0-ply money ranking of every play of d0-d1
// within threshold of the best, at most limit of them.
func (e *Engine) FindBestMoves(board Board, d0, d1, limit int, threshold float64) ([]Candidate, error) {
	ml := GenerateMoves(board, d0, d1)
	if ml.Len() == 0 {
		return nil, nil
	}

	cands := candidates(ml)
	if err := e.scoreBoards(cands, 0, MoneyScorer); err != nil {
		return nil, err
	}
	sortCandidates(cands)

	n := 1
	for n < len(cands) && cands[n].Score >= cands[0].Score-threshold {
		n++
	}
	return cands[:min(n, max(limit, 1))], nil
}
