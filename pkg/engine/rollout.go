package engine

import (
	"fmt"
	"math"
	"time"
)

// EndsAt says where a rollout game stops and is evaluated.
type EndsAt int

const (
	EndsAtRace EndsAt = iota
	EndsAtBearoff
	EndsAtOver
	EndsAtAuto
)

func (t EndsAt) String() string {
	switch t {
	case EndsAtRace:
		return "race"
	case EndsAtBearoff:
		return "bearoff"
	case EndsAtOver:
		return "over"
	case EndsAtAuto:
		return "auto"
	}
	return fmt.Sprintf("EndsAt(%d)", int(t))
}

// raceLeafGames is the number of one-sided games used to evaluate a race
// at the end of a rollout game.
const raceLeafGames = 576

// progressEvery is how many games pass between progress reports.
const progressEvery = 36

// RolloutOptions controls Rollout.
type RolloutOptions struct {
	Plies    int    // search depth of the moves played
	Truncate int    // maximum turns per game
	Games    int    // number of games
	Seq      int    // dice sequence index; negative to bypass the dice generator
	EndsAt   EndsAt // where games stop

	// Progress, when set, is called as games complete.
	Progress func(RolloutProgress)
}

// DefaultRolloutOptions returns the options of a plain position rollout.
func DefaultRolloutOptions() RolloutOptions {
	return RolloutOptions{
		Truncate: 1024,
		Games:    1296,
		EndsAt:   EndsAtAuto,
	}
}

// RolloutProgress reports a running rollout.
type RolloutProgress struct {
	Games int
	Total int
	Mean  Probs
}

// RolloutResult holds the averaged outcome of a rollout, from the side on
// roll.
type RolloutResult struct {
	Mean   Probs
	StdDev Probs
	Games  int
}

// Equity is the money equity of the mean outcome.
func (r *RolloutResult) Equity() float64 { return r.Mean.Money() }

// inBearoff reports whether all checkers of both sides are on their home
// boards or off.
func (b *Board) inBearoff() bool {
	for i := 6; i < 25; i++ {
		if b[0][i] > 0 || b[1][i] > 0 {
			return false
		}
	}
	return true
}

// RolloutTarget returns where rollouts of b should stop: at the race for
// contact positions, at the bearoff for races, and at the end for
// bearoffs.
func (e *Engine) RolloutTarget(b Board) EndsAt {
	if !b.IsRace() {
		return EndsAtRace
	}
	if b.inBearoff() {
		return EndsAtOver
	}
	return EndsAtBearoff
}

func (t EndsAt) reached(b *Board) bool {
	switch t {
	case EndsAtOver:
		return b.GameOver()
	case EndsAtBearoff:
		return b.GameOver() || b.inBearoff()
	case EndsAtRace:
		return b.IsRace()
	}
	return false
}

// Rollout plays opts.Games games from b, each until the target is reached
// or opts.Truncate turns were played, and averages the evaluation of the
// final positions. With opts.Seq >= 0 the games draw their dice from the
// engine's dice generator, so rollouts of sibling positions share dice.
func (e *Engine) Rollout(b Board, opts RolloutOptions) (RolloutResult, error) {
	games := max(opts.Games, 1)
	start := time.Now()

	if opts.Seq >= 0 {
		if opts.Seq == 0 || e.dice.CurNSeq() != games {
			e.dice.StartSave(games)
		} else {
			e.dice.StartRetrieve()
		}
	} else {
		e.dice.EndSave(games)
	}

	target := opts.EndsAt
	if target == EndsAtAuto {
		target = e.RolloutTarget(b)
	}

	var sum, sumSq Probs
	for ng := 0; ng < games; ng++ {
		if ng > 0 {
			e.dice.Next()
		}

		p, err := e.rolloutGame(b, target, opts)
		if err != nil {
			return RolloutResult{}, fmt.Errorf("rollout game %d: %w", ng, err)
		}
		for i, x := range p {
			x = min(max(x, 0), 1)
			sum[i] += x
			sumSq[i] += x * x
		}

		if opts.Progress != nil && ((ng+1)%progressEvery == 0 || ng+1 == games) {
			var mean Probs
			for i := range sum {
				mean[i] = sum[i] / float64(ng+1)
			}
			opts.Progress(RolloutProgress{Games: ng + 1, Total: games, Mean: mean})
		}
	}

	r := RolloutResult{Games: games}
	for i := range sum {
		r.Mean[i] = sum[i] / float64(games)
		if games > 1 {
			v := sumSq[i]/float64(games) - r.Mean[i]*r.Mean[i]
			r.StdDev[i] = math.Sqrt(max(v, 0))
		}
	}

	e.log.Debug().
		Str("position", b.Text()).
		Int("games", games).
		Stringer("target", target).
		Float64("seconds", time.Since(start).Seconds()).
		Msg("rollout")
	return r, nil
}

// rolloutGame plays one game and returns its leaf evaluation from the
// side on roll at b.
func (e *Engine) rolloutGame(b Board, target EndsAt, opts RolloutOptions) (Probs, error) {
	turn := 0
	for ; !target.reached(&b) && turn < opts.Truncate; turn++ {
		d0, d1 := e.dice.Roll()
		next, _, err := e.FindBestMove(b, d0, d1, opts.Plies, MoneyScorer)
		if err != nil {
			return Probs{}, err
		}
		b = SwapSides(next)
	}

	var (
		p   Probs
		err error
	)
	switch target {
	case EndsAtRace:
		if b.IsRace() && !b.GameOver() {
			if opts.Seq >= 0 {
				e.rng.Seed(e.dice.CurSeed() + 1)
			}
			p, err = e.RaceProbs(b, raceLeafGames)
		} else {
			p, err = e.EvaluateProbs(b, 1)
		}
	default:
		p, err = e.EvaluateProbs(b, 0)
	}
	if err != nil {
		return Probs{}, err
	}

	if turn&1 == 1 {
		p = p.Invert()
	}
	return p, nil
}
