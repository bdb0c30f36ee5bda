package engine

import (
	"fmt"
	"time"

	"github.com/yourusername/sagnubg/internal/met"
)

// Cube efficiency of the dead cube line.
const (
	centeredLiveWeight = 0.65
	ownedLiveWeight    = 0.7
	raceMagic          = 0.060658192655657979
)

// CubeDecision is the outcome of a cube analysis.
type CubeDecision struct {
	ND, DT, DD float64 // match winning chances after no double, double/take, double/drop
	Double     bool
	Take       bool
	TooGood    bool
}

// decide sets the actions from the three equities. When passing is right
// the side doubles unless it has gammon chances worth playing for.
func (d *CubeDecision) decide(winGammon float64) {
	d.Take = d.DT < d.DD
	d.TooGood = false
	switch {
	case d.Take:
		d.Double = d.DT >= d.ND
	case winGammon == 0 || d.DD > d.ND:
		d.Double = true
	default:
		d.Double = false
		d.TooGood = true
	}
}

// Action is the decision as the batch protocol writes it.
func (d CubeDecision) Action() string {
	switch {
	case d.TooGood:
		return "TG"
	case d.Double && d.Take:
		return "D/T"
	case d.Double:
		return "D/D"
	}
	return "ND"
}

// FlipState returns s seen by the other side.
func FlipState(s met.State) met.State {
	f := s
	f.XAway, f.OAway = s.OAway, s.XAway
	if s.Cube > 1 {
		f.XOwns = !s.XOwns
	}
	return f
}

// round4 keeps four decimals, truncating toward zero after adding a half.
func round4(f float64) float64 {
	return float64(int64(f*10000+0.5)) / 10000
}

// estimateRolls estimates the rolls the race leader still needs from an
// adjusted pip count.
func estimateRolls(b *Board) float64 {
	var pips [2]int
	for side := range b {
		for i, c := range b[side] {
			pips[side] += (i + 1) * int(c)
		}
		pips[side] *= 2
		for i := 0; i < 5; i++ {
			pips[side] += (5 - i) * int(b[side][i])
		}
	}
	return float64(min(pips[0], pips[1])) / (2 * 8.16)
}

// liveWeight is the weight of the live cube line for an owned cube. In a
// race it grows with the rolls left and the redouble incentive.
func (e *Engine) liveWeight(b *Board, xAway, oAway, cube int, xgr, ogr float64) float64 {
	if !b.IsRace() {
		return ownedLiveWeight
	}

	c, d := e.met.Windows(oAway, xAway, 2*cube, ogr, xgr)
	lp := min(c.XLow, d.XLow)
	gain := d.YHigh - c.YHigh
	lose := c.E(lp) - d.E(lp)
	if lose == 0 {
		return 1
	}
	incentive := gain / lose
	return raceMagic * estimateRolls(b) * (2 * incentive / (incentive + 1))
}

// StaticCube is the 0-ply cube decision of the side on roll at b, which
// must have access to the cube. s is seen by that side.
func (e *Engine) StaticCube(b Board, s met.State) (CubeDecision, Probs, error) {
	p, err := e.EvaluateProbs(b, 0)
	if err != nil {
		return CubeDecision{}, Probs{}, err
	}

	xWins := p[OutputWin]
	oWins := 1 - xWins
	xgr, ogr := ratio(p[OutputWinGammon], xWins), ratio(p[OutputLoseGammon], oWins)
	xAway, oAway, cube := s.XAway, s.OAway, s.Cube
	t := e.met

	win, doubled := t.Windows(xAway, oAway, cube, xgr, ogr)

	var nd float64
	if cube == 1 {
		dead := met.Window{
			XLow: 0, YLow: t.EWhenLose(ogr, 0, xAway, oAway, cube),
			XHigh: 1, YHigh: t.EWhenWin(xgr, 0, xAway, oAway, cube),
		}

		var ld, dl, ll float64
		if xWins >= win.XLow {
			w := dead
			w.XLow, w.YLow = win.XLow, win.YLow
			ld = w.Y(xWins)
		}
		if xWins <= win.XHigh {
			w := dead
			w.XHigh, w.YHigh = win.XHigh, win.YHigh
			dl = w.Y(xWins)
		}
		switch {
		case xWins > win.XHigh:
			w := dead
			w.XLow, w.YLow = win.XHigh, win.YHigh
			ll = w.Y(xWins)
			dl = ll
		case xWins < win.XLow:
			w := dead
			w.XHigh, w.YHigh = win.XLow, win.YLow
			ll = w.Y(xWins)
			ld = ll
		default:
			ll = win.Y(xWins)
		}
		nd = centeredLiveWeight*ll + (1-centeredLiveWeight)/2*(dl+ld)
	} else {
		w := win
		w.XHigh, w.YHigh = 1, t.EWhenWin(xgr, 0, xAway, oAway, cube)
		ndd := w.Y(xWins)

		ndl := win.Y(xWins)
		if xWins > win.XHigh {
			w.XLow, w.YLow = win.XHigh, win.YHigh
			ndl = w.Y(xWins)
		}

		l := e.liveWeight(&b, xAway, oAway, cube, xgr, ogr)
		nd = l*ndl + (1-l)*ndd
	}

	w := doubled
	w.XLow, w.YLow = 0, t.EWhenLose(ogr, 0, xAway, oAway, 2*cube)
	dtd := w.Y(xWins)
	dtl := doubled.Y(xWins)
	if xWins < doubled.XLow {
		w.XHigh, w.YHigh = doubled.XLow, doubled.YLow
		dtl = w.Y(xWins)
	}

	nd = round4(nd)
	l := e.liveWeight(&b, xAway, oAway, cube, xgr, ogr)
	dt := dtl
	if xAway > 2*cube {
		dt = l*dtl + (1-l)*dtd
	}
	dt = round4(dt)
	dd := round4(win.YHigh)

	d := CubeDecision{ND: met.EquityToProb(nd), DT: met.EquityToProb(dt), DD: met.EquityToProb(dd)}
	d.decide(p[OutputWinGammon])
	return d, p, nil
}

// CubeOptions controls AnalyzeCube. Match is seen by the side on roll,
// which must have access to the cube.
type CubeOptions struct {
	Match met.State
	Games int
}

// CubeResult is a cube analysis by cubeful rollouts.
type CubeResult struct {
	CubeDecision
	Probs Probs // 0-ply cubeless probabilities
}

// AnalyzeCube decides whether the side on roll at b should double by
// rolling out the no double and double/take lines over the same dice.
func (e *Engine) AnalyzeCube(b Board, opts CubeOptions) (CubeResult, error) {
	s := opts.Match
	if s.Cube < 1 {
		s.Cube = 1
	}
	if s.Money() {
		return CubeResult{}, fmt.Errorf("cube analysis needs a match score")
	}
	if s.Cube > 1 && !s.XOwns {
		return CubeResult{}, fmt.Errorf("side on roll has no access to a %d cube", s.Cube)
	}
	games := max(opts.Games, 1)
	start := time.Now()

	p, err := e.EvaluateProbs(b, 0)
	if err != nil {
		return CubeResult{}, err
	}
	e.dice.StartSave(games)

	nd, err := e.RolloutCubeful(b, games, s)
	if err != nil {
		return CubeResult{}, err
	}

	taken := s
	taken.Cube, taken.XOwns = 2*s.Cube, false
	e.dice.StartRetrieve()
	dt, err := e.RolloutCubeful(b, games, taken)
	if err != nil {
		return CubeResult{}, err
	}

	r := CubeResult{Probs: p}
	r.ND = met.EquityToProb(nd)
	r.DT = met.EquityToProb(dt)
	r.DD = met.EquityToProb(e.met.Value(s.XAway-s.Cube, s.OAway))
	r.decide(p[OutputWinGammon])

	e.log.Debug().
		Str("position", b.Text()).
		Int("games", games).
		Float64("nd", r.ND).
		Float64("dt", r.DT).
		Str("action", r.Action()).
		Float64("seconds", time.Since(start).Seconds()).
		Msg("cube analysis")
	return r, nil
}

// RolloutCubeful returns the average match equity of games cubeful games
// from b, for the side on roll (X of s). Both sides make 0-ply cube
// decisions from their second turn on and play match-aware 0-ply moves.
// The games continue the dice generator's current recording.
func (e *Engine) RolloutCubeful(b Board, games int, s met.State) (float64, error) {
	var total float64
	for ng := 0; ng < games; ng++ {
		if ng > 0 {
			e.dice.Next()
		}

		eq, single, err := e.cubefulGame(b, s)
		if err != nil {
			return 0, fmt.Errorf("cubeful rollout game %d: %w", ng, err)
		}
		total += eq
		if single {
			games = 1
			break
		}
	}
	return total / float64(games), nil
}

// cubefulGame plays one game from b and returns X's match equity. It
// reports single when the cube was dead from the start, making every
// game alike.
func (e *Engine) cubefulGame(b Board, s met.State) (eq float64, single bool, err error) {
	xToPlay := true
	first := true

	for !b.GameOver() {
		if !first && (s.Cube == 1 || xToPlay == s.XOwns) {
			seen := s
			if !xToPlay {
				seen = FlipState(s)
			}
			d, _, err := e.StaticCube(b, seen)
			if err != nil {
				return 0, false, err
			}
			if d.Double {
				if !d.Take {
					if xToPlay {
						return e.met.Value(s.XAway-s.Cube, s.OAway), false, nil
					}
					return e.met.Value(s.XAway, s.OAway-s.Cube), false, nil
				}
				s.Cube *= 2
				s.XOwns = !xToPlay
				if s.CubeDead() {
					break
				}
			}
		}

		d0, d1 := e.dice.Roll()
		if first {
			if s.CubeDead() {
				single = true
				break
			}
			first = false
		}

		next, _, err := e.FindBestMove(b, d0, d1, 0, e.MatchScorer(s, xToPlay))
		if err != nil {
			return 0, false, err
		}
		b = SwapSides(next)
		xToPlay = !xToPlay
	}

	p, err := e.EvaluateProbs(b, 2)
	if err != nil {
		return 0, false, err
	}
	if !xToPlay {
		p = p.Invert()
	}

	xWins, oWins := p[OutputWin], 1-p[OutputWin]
	xgr, ogr := ratio(p[OutputWinGammon], xWins), ratio(p[OutputLoseGammon], oWins)
	xbgr := ratio(p[OutputWinBackgammon], p[OutputWinGammon])
	obgr := ratio(p[OutputLoseBackgammon], p[OutputLoseGammon])

	eq = xWins*e.met.EWhenWin(xgr, xbgr, s.XAway, s.OAway, s.Cube) +
		oWins*e.met.EWhenLose(ogr, obgr, s.XAway, s.OAway, s.Cube)
	return eq, single, nil
}
