package neuralnet

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTextNet appends a net with deterministic weights in the gnubg text
// layout.
func writeTextNet(b *strings.Builder, cInput, cHidden int) {
	fmt.Fprintf(b, "%d %d %d 0 0.1 1.0\n", cInput, cHidden, NumOutputs)
	n := cInput*cHidden + cHidden*NumOutputs + cHidden + NumOutputs
	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "%f\n", float64(i%7-3)/4)
	}
}

func syntheticWeights(version string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GNU Backgammon %s\n", version)
	for _, in := range []int{NumContactInputs, NumRaceInputs, NumContactInputs, NumPruningInputs, NumPruningInputs, NumPruningInputs} {
		writeTextNet(&b, in, 3)
	}
	return b.String()
}

func TestReadWeightsText(t *testing.T) {
	w, err := ReadWeightsText(strings.NewReader(syntheticWeights("0.16")))
	require.NoError(t, err)

	assert.Equal(t, "0.16", w.Version)
	require.NoError(t, w.Validate())
	assert.Equal(t, uint32(NumRaceInputs), w.Race.CInput)
	assert.Contains(t, w.String(), "weights 0.16")
}

func TestReadWeightsTextBadHeader(t *testing.T) {
	_, err := ReadWeightsText(strings.NewReader("Something Else 1.0\n"))
	assert.ErrorIs(t, err, ErrBadWeights)

	_, err = ReadWeightsText(strings.NewReader("GNU Backgammon 1.0\n1 2\n"))
	assert.Error(t, err)
}

func TestReadWeightsBinaryBadMagic(t *testing.T) {
	_, err := ReadWeightsBinary(strings.NewReader("\x00\x00\x00\x00\x00\x00\x00\x00"))
	assert.ErrorIs(t, err, ErrBadWeights)
}

func TestEvaluateFastMatchesEvaluate(t *testing.T) {
	w, err := ReadWeightsText(strings.NewReader(syntheticWeights("test")))
	require.NoError(t, err)

	var board Board
	board[0][5], board[0][7], board[0][12], board[0][23] = 5, 3, 5, 2
	board[1] = board[0]

	inputs := ContactInputs(board)
	want := w.Contact.Evaluate(inputs)

	got := make([]float32, NumOutputs)
	w.Contact.EvaluateFast(inputs, got, NewEvaluateBuffer(w.Contact.CHidden))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-3, "output %d", i)
	}

	// a nil buffer allocates its own
	w.Contact.EvaluateFast(inputs, got, nil)
	assert.InDelta(t, want[0], got[0], 1e-3)
}

func TestSigmoidFast(t *testing.T) {
	sigmoidTableOnce.Do(initSigmoidTable)
	assert.Equal(t, 1.0, sigmoidFast(-9))
	assert.Equal(t, 0.0, sigmoidFast(9))
	assert.InDelta(t, 0.5, sigmoidFast(0), 1e-3)
	assert.InDelta(t, float64(sigmoid(1.5)), sigmoidFast(1.5), 1e-4)
}
