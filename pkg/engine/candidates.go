package engine

import (
	"fmt"
)

// twoPlyThreshold is how far below the best 0-ply play a candidate may
// score and still be looked at 2-ply.
const twoPlyThreshold = 5.0

// CandidateOptions controls SelectCandidates.
type CandidateOptions struct {
	Moves2PlyLimit int  // plays kept after 0-ply ranking
	RolloutLimit   int  // plays kept for rollouts
	Include0Ply    bool // keep the best 0-ply play first whatever its 2-ply score

	// Evaluated, when set, is called after each 2-ply evaluation.
	Evaluated func(Candidate)
}

// SelectCandidates picks the plays of d0-d1 worth rolling out. The 0-ply
// leaders are evaluated 2-ply and ranked. The boards returned are seen by
// the opponent, who is on roll; scores are the mover's money equity.
func (e *Engine) SelectCandidates(board Board, d0, d1 int, opts CandidateOptions) ([]Candidate, error) {
	cands, err := e.FindBestMoves(board, d0, d1, opts.Moves2PlyLimit, twoPlyThreshold)
	if err != nil {
		return nil, err
	}

	for i := range cands {
		cands[i].Board = SwapSides(cands[i].Board)
		p, err := e.EvaluateProbs(cands[i].Board, 2)
		if err != nil {
			return nil, fmt.Errorf("evaluate candidate %s: %w", cands[i].Text(), err)
		}
		cands[i].Score = -p.Money()
		if opts.Evaluated != nil {
			opts.Evaluated(cands[i])
		}
	}

	return keepCandidates(cands, opts.RolloutLimit, opts.Include0Ply), nil
}

// keepCandidates orders 2-ply scored plays and cuts them to limit. With
// pin the 0-ply play stays first, and it is kept on top of limit others
// when it scores at least as well as the first play the cut drops.
func keepCandidates(cands []Candidate, limit int, pin bool) []Candidate {
	// a pinned 0-ply play also pins the last one
	n := len(cands)
	offset := 0
	if pin {
		offset = 1
	}
	if n-offset > offset {
		sortCandidates(cands[offset : n-offset])
	}

	limit = max(limit, 0)
	if pin && limit < n && cands[0].Score >= cands[limit].Score {
		return cands[:limit+1]
	}
	return cands[:min(n, limit)]
}

// RankOptions controls RankByRollout.
type RankOptions struct {
	Games    int
	Truncate int
	EndsAt   EndsAt

	// Started, when set, is called before each candidate's rollout.
	Started  func(k int, c Candidate)
	Progress func(RolloutProgress)
}

// DefaultRankOptions returns the options of candidate rollouts stopping at
// target.
func DefaultRankOptions(target EndsAt) RankOptions {
	return RankOptions{Games: 1296, Truncate: 512, EndsAt: target}
}

// RankByRollout rolls out each candidate from the opponent's side and
// ranks by the mover's equity. Every rollout restarts the RNG from seed,
// and they share one dice recording. report, when set, receives each
// finished rollout.
func (e *Engine) RankByRollout(cands []Candidate, seed uint64, opts RankOptions, report func(k int, c Candidate, r RolloutResult)) ([]Candidate, error) {
	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)

	for k := range ranked {
		if opts.Started != nil {
			opts.Started(k, ranked[k])
		}

		e.rng.Seed(seed)
		r, err := e.Rollout(ranked[k].Board, RolloutOptions{
			Truncate: opts.Truncate,
			Games:    opts.Games,
			Seq:      k,
			EndsAt:   opts.EndsAt,
			Progress: opts.Progress,
		})
		if err != nil {
			return nil, fmt.Errorf("rollout of candidate %d: %w", k, err)
		}
		ranked[k].Score = -r.Equity()
		if report != nil {
			report(k, ranked[k], r)
		}
	}

	sortCandidates(ranked)
	return ranked, nil
}
