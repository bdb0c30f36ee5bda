package engine

import (
	"fmt"

	"github.com/yourusername/sagnubg/internal/bearoff"
)

// One-sided race rollouts: each side brings its checkers home alone with
// a fixed heuristic, and the rolls it needed are combined with the bearoff
// distribution of the home board it reached.

const (
	osrMaxRolls  = bearoff.MaxRolls
	osrMaxGammon = 15
)

// osrGame is a single bear-in. Points run from 0 (the 24 point) to 23 (the
// ace point); 18 and up is home. lc is a lower bound on the rearmost
// occupied point.
type osrGame struct {
	b    [24]int
	lc   int
	nOut int
}

var quadrant = [24]int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3}

func crosses(from, to int) bool { return quadrant[from] != quadrant[to] }

// run plays until every checker is home and returns the rolls used. A
// non-zero r1 fixes the first roll.
func (g *osrGame) run(rng *RNG, r1, r2 int) int {
	rolls := 0
	for g.nOut > 0 {
		var dice [2]int
		if rolls == 0 && r1 > 0 {
			dice = [2]int{r1, r2}
		} else {
			dice[0], dice[1] = rng.RollDice()
		}
		if dice[0] < dice[1] {
			dice[0], dice[1] = dice[1], dice[0]
		}
		rolls++

		if dice[0] != dice[1] {
			g.playNonDouble(dice)
		} else {
			g.playDouble(dice[0])
		}
	}
	return rolls
}

// take removes a checker from point k.
func (g *osrGame) take(k int) {
	g.b[k]--
	if g.lc == k && g.b[k] == 0 {
		g.lc++
	}
}

// step moves a checker from k by d, counting it in when it reaches home.
func (g *osrGame) step(k, d int) {
	g.take(k)
	g.b[k+d]++
	if k+d >= 18 {
		g.nOut--
	}
}

func (g *osrGame) skipEmpty() {
	for g.lc < 18 && g.b[g.lc] == 0 {
		g.lc++
	}
}

func (g *osrGame) playNonDouble(dice [2]int) {
	b := &g.b
	d0, d1 := dice[0], dice[1]

	// both dice bring a checker exactly in
	if far, near := 18-d0, 18-d1; b[far] > 0 && b[near] > 0 {
		b[far]--
		b[near]--
		b[18] += 2
		g.nOut -= 2
		if g.lc == far && b[far] == 0 {
			g.lc++
		}
		return
	}

	// one checker exactly in with the whole roll
	if both := 18 - (d0 + d1); b[both] > 0 {
		g.take(both)
		b[18]++
		g.nOut--
		return
	}

	for nd := 0; nd < 2 && g.nOut > 0; nd++ {
		d := dice[nd]
		dice[nd] = 0

		if b[18-d] > 0 {
			b[18-d]--
			b[18]++
			g.nOut--
			continue
		}

		g.skipEmpty()

		// keep the big die for bearing off when the small one brings the
		// last checker in
		if g.nOut == 1 && nd == 0 && g.lc+d1 >= 18 && b[24-d1] == 0 && b[24-d] > 0 {
			dice[nd] = d
			continue
		}

		k := g.lc
		for ; k+d < 18; k++ {
			if b[k] > 0 && crosses(k, k+d) {
				g.take(k)
				b[k+d]++
				break
			}
		}
		if k+d >= 18 {
			for k = g.lc; k < 18; k++ {
				if b[k] > 0 {
					g.step(k, d)
					break
				}
			}
		}
	}

	if g.nOut > 0 {
		return
	}

	// everything is in; spend a leftover die
	d := max(dice[0], dice[1])
	if d == 0 {
		return
	}
	if b[24-d] > 0 {
		b[24-d]--
		return
	}
	for k := 18; k+d < 24; k++ {
		if b[k] > 0 && b[k+d] == 0 {
			b[k]--
			b[k+d]++
			return
		}
	}
	for k := 18; k < 24; k++ {
		if b[k] > 0 {
			b[k]--
			if k+d < 24 {
				b[k+d]++
			}
			return
		}
	}
}

func (g *osrGame) playDouble(d int) {
	b := &g.b
	nd := 4

	for nd > 0 && g.nOut > 0 && b[18-d] > 0 {
		b[18-d]--
		b[18]++
		nd--
		g.nOut--
	}

	if g.nOut > 0 {
		// one checker in with several dice
		for n := nd; n > 1; n-- {
			if i := 18 - n*d; i >= 0 && b[i] > 0 {
				b[i]--
				nd -= n
				b[18]++
				g.nOut--
				n = nd
			}
		}

		if g.nOut > 0 && nd > 0 {
			g.skipEmpty()

			first := true
			for k := g.lc; k < 18; k++ {
				if b[k] == 0 {
					continue
				}
				if crosses(k, k+d) && (first || k+d < 18) {
					for b[k] > 0 && nd > 0 && g.nOut > 0 {
						g.step(k, d)
						nd--
					}
				}
				if g.nOut == 0 || nd == 0 {
					break
				}
				first = b[k] == 0
			}

			for g.nOut > 0 && nd > 0 {
				for k := g.lc; k < 18; k++ {
					if b[k] == 0 {
						continue
					}
					for b[k] > 0 && nd > 0 && g.nOut > 0 {
						g.step(k, d)
						nd--
					}
					if nd == 0 || g.nOut == 0 {
						break
					}
				}
			}
		}
	}

	if g.nOut > 0 {
		return
	}

	for nd > 0 {
		switch {
		case b[24-d] > 0:
			b[24-d]--
			nd--
			continue
		case nd >= 2 && d <= 3 && b[24-2*d] > 0:
			b[24-2*d]--
			nd -= 2
			continue
		case nd >= 3 && d <= 2 && b[24-3*d] > 0:
			b[24-3*d]--
			nd -= 3
			continue
		case nd >= 4 && d <= 1 && b[24-4*d] > 0:
			b[24-4*d]--
			nd -= 4
			continue
		}

		moved := false
		for k := 18; nd > 0 && k < 24; k++ {
			for b[k] > 0 && nd > 0 {
				moved = true
				b[k]--
				nd--
				if k+d < 24 {
					b[k+d]++
				}
			}
		}
		if !moved {
			nd = 0
		}
	}
}

// homeOf returns the home board of an osr board, ace point first.
func homeOf(b *[24]int) (h [bearoff.Points]uint8) {
	for j := range h {
		h[j] = uint8(b[23-j])
	}
	return h
}

// oneSided is the rolls-to-finish distribution of one side, with the
// distribution of rolls before its first checker is off.
type oneSided struct {
	checkers int
	off      [osrMaxRolls]float64
	gammon   [osrMaxGammon]float64
}

// oneSidedRace computes the distributions of side, running games
// bear-ins when it has checkers outside its home board.
func (e *Engine) oneSidedRace(side *[25]uint8, games int) (oneSided, error) {
	var (
		res   oneSided
		board [24]int
		out   int
	)
	for k := range board {
		nc := int(side[23-k])
		board[k] = nc
		res.checkers += nc
		if k < 18 {
			out += nc
		}
	}

	if out == 0 {
		if res.checkers == bearoff.Checkers {
			res.gammon[1] = 1
		} else {
			res.gammon[0] = 1
		}
		dist, err := e.bearoff.Distribution(homeOf(&board))
		if err != nil {
			return res, err
		}
		res.off = dist.Off
		return res, nil
	}

	var counts [osrMaxGammon]int
	base := uint64(e.rng.Uint32())
	fixedFirst := games%36 == 0
	var r1, r2 int

	for i := 0; i < games; i++ {
		if fixedFirst {
			r1, r2 = i%6+1, (i/6)%6+1
		}
		e.rng.Seed(base + uint64(i))

		g := osrGame{b: board, nOut: out}
		nr := g.run(e.rng, r1, r2)

		home := 0
		for k := 18; k < 24; k++ {
			home += g.b[k]
		}
		first := nr
		if home == bearoff.Checkers {
			first++
		}
		counts[min(first, osrMaxGammon-1)]++

		dist, err := e.bearoff.Distribution(homeOf(&g.b))
		if err != nil {
			return res, err
		}
		for k, p := range dist.Off {
			res.off[min(nr+k, osrMaxRolls-1)] += p
		}
	}

	for n := range res.off {
		res.off[n] /= float64(games)
	}
	for n, c := range counts {
		res.gammon[n] = float64(c) / float64(games)
	}
	return res, nil
}

// RaceProbs estimates a race by one-sided rollouts of games games per
// side. The RNG is consumed and left reseeded.
func (e *Engine) RaceProbs(b Board, games int) (Probs, error) {
	games = max(games, 1)

	onBase := uint64(e.rng.Uint32())
	oppBase := uint64(e.rng.Uint32())

	e.rng.Seed(onBase)
	on, err := e.oneSidedRace(&b[1], games)
	if err != nil {
		return Probs{}, fmt.Errorf("race rollout: %w", err)
	}
	e.rng.Seed(oppBase)
	opp, err := e.oneSidedRace(&b[0], games)
	if err != nil {
		return Probs{}, fmt.Errorf("race rollout: %w", err)
	}

	var p Probs
	var w float64
	for io := range on.off {
		s := 0.0
		for ix := io; ix < osrMaxRolls; ix++ {
			s += opp.off[ix]
		}
		w += on.off[io] * s
	}

	var lg float64
	if on.checkers == bearoff.Checkers {
		for io := range on.gammon {
			s := 0.0
			for ix := 0; ix < io; ix++ {
				s += opp.off[ix]
			}
			lg += on.gammon[io] * s
		}
		if lg > 0 {
			if bg, err := e.raceBackgammon(&b, 0); err != nil {
				return Probs{}, err
			} else if bg > 0 {
				p[OutputLoseBackgammon] = bg
			}
		}
	}

	var wg float64
	if opp.checkers == bearoff.Checkers {
		for ix := range opp.gammon {
			s := 0.0
			for io := 0; io <= ix; io++ {
				s += on.off[io]
			}
			wg += opp.gammon[ix] * s
		}
		if wg > 0 {
			if bg, err := e.raceBackgammon(&b, 1); err != nil {
				return Probs{}, err
			} else if bg > 0 {
				p[OutputWinBackgammon] = bg
			}
		}
	}

	p[OutputWin] = min(w, 1)
	p[OutputWinGammon] = min(wg, 1, p[OutputWin])
	p[OutputLoseGammon] = min(lg, 1, 1-p[OutputWin])
	return p, nil
}

// raceBackgammon estimates the chance that side wins a backgammon: its
// bear-off raced against the loser clearing side's home board, both
// treated as one-sided bearoffs with side 1 on roll.
func (e *Engine) raceBackgammon(b *Board, side int) (float64, error) {
	menHome := 0
	for i := 0; i < 6; i++ {
		menHome += int(b[side][i])
	}
	oppPips := 0
	for i := 22; i >= 18; i-- {
		oppPips += int(b[1-side][i]) * (i - 17)
	}

	behind := 0
	if side == 1 {
		behind = 1
	}
	if (menHome+3)/4-behind > (oppPips+2)/3 {
		return 0, nil
	}

	var race Board
	copy(race[side][:bearoff.Points], b[side][:bearoff.Points])
	copy(race[1-side][:bearoff.Points], b[1-side][18:24])

	p, err := e.evaluateBearoff(&race)
	if err != nil {
		return 0, err
	}
	if side == 1 {
		return p[OutputWin], nil
	}
	return 1 - p[OutputWin], nil
}
