package engine

import (
	"math/bits"

	"github.com/yourusername/sagnubg/internal/neuralnet"
)

// Pruning keeps MinPruneMoves plus log2 of the number of plays, at most
// MaxPruneMoves.
const (
	MinPruneMoves = 5
	MaxPruneMoves = 16
)

// pruneCount returns how many of n plays survive pruning.
func pruneCount(n int) int {
	return min(MinPruneMoves+bits.Len(uint(n))-1, MaxPruneMoves)
}

// pruningNet returns the pruning net for the class of the position before
// the move, or nil when the class has none.
func (e *Engine) pruningNet(b *Board) *netSlot {
	switch neuralnet.ClassifyPosition(neuralnet.Board(*b)) {
	case neuralnet.ClassContact:
		return e.pContact
	case neuralnet.ClassCrashed:
		return e.pCrashed
	case neuralnet.ClassRace:
		return e.pRace
	}
	return nil
}

// pruneCandidates ranks cands with net and keeps the leaders. Each
// position is scored from the opponent's side on the base inputs and
// inverted.
func (e *Engine) pruneCandidates(net *netSlot, cands []Candidate) []Candidate {
	keep := pruneCount(len(cands))
	if net == nil || keep >= len(cands) {
		return cands
	}

	in := e.inputs.Get().([]float32)
	defer e.inputs.Put(in)

	for i := range cands {
		opp := SwapSides(cands[i].Board)
		neuralnet.BaseInputsInto(neuralnet.Board(opp), in[:neuralnet.NumPruningInputs])
		cands[i].Score = net.evaluate(in[:neuralnet.NumPruningInputs]).Invert().Money()
	}
	sortCandidates(cands)
	return cands[:keep]
}
