package engine

import (
	"golang.org/x/sync/errgroup"
)

// roll is one of the 21 distinct rolls with its weight out of 36.
type roll struct {
	d0, d1 int
	weight float64
}

var allRolls = func() []roll {
	rolls := make([]roll, 0, 21)
	for d0 := 1; d0 <= 6; d0++ {
		for d1 := 1; d1 <= d0; d1++ {
			w := 2.0
			if d0 == d1 {
				w = 1
			}
			rolls = append(rolls, roll{d0, d1, w})
		}
	}
	return rolls
}()

// parallelPlies is the lookahead depth from which the rolls are evaluated
// concurrently.
const parallelPlies = 2

// evaluatePlied averages, over the opponent's rolls, the plies-1
// evaluation after the opponent's best 0-ply play.
func (e *Engine) evaluatePlied(b Board, plies int) (Probs, error) {
	var results [21]Probs

	evalRoll := func(i int) error {
		r := allRolls[i]
		next, err := e.lookaheadMove(b, r.d0, r.d1)
		if err != nil {
			return err
		}
		results[i], err = e.EvaluateProbs(SwapSides(next), plies-1)
		return err
	}

	if plies >= parallelPlies {
		var g errgroup.Group
		for i := range allRolls {
			g.Go(func() error { return evalRoll(i) })
		}
		if err := g.Wait(); err != nil {
			return Probs{}, err
		}
	} else {
		for i := range allRolls {
			if err := evalRoll(i); err != nil {
				return Probs{}, err
			}
		}
	}

	// summed in roll order so the result does not depend on scheduling
	var sum Probs
	for i, r := range allRolls {
		for k := range sum {
			sum[k] += r.weight * results[i][k]
		}
	}

	// the results are the opponent's; turn them back
	return Probs{
		1 - sum[OutputWin]/36,
		sum[OutputLoseGammon] / 36,
		sum[OutputLoseBackgammon] / 36,
		sum[OutputWinGammon] / 36,
		sum[OutputWinBackgammon] / 36,
	}, nil
}

// lookaheadMove is the 0-ply money choice of the side on roll inside a
// lookahead. With shortcuts on, the pruning nets thin the plays first.
func (e *Engine) lookaheadMove(b Board, d0, d1 int) (Board, error) {
	ml := GenerateMoves(b, d0, d1)
	switch ml.Len() {
	case 0:
		return b, nil
	case 1:
		return ml.Boards[0], nil
	}

	cands := candidates(ml)
	if e.shortcuts {
		cands = e.pruneCandidates(e.pruningNet(&b), cands)
	}
	if err := e.scoreBoards(cands, 0, MoneyScorer); err != nil {
		return b, err
	}

	best := 0
	for i := range cands {
		if cands[i].Score > cands[best].Score {
			best = i
		}
	}
	return cands[best].Board, nil
}
