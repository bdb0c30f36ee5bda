// Package neuralnet evaluates gnubg neural nets: weights files, the input
// encodings of each position class, and the forward pass.
package neuralnet

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// NeuralNet is one fully connected net with a single hidden layer.
// HiddenWeight is laid out input-major, OutputWeight output-major.
type NeuralNet struct {
	CInput          uint32
	CHidden         uint32
	COutput         uint32
	NTrained        int32
	RBetaHidden     float32
	RBetaOutput     float32
	HiddenWeight    []float32
	OutputWeight    []float32
	HiddenThreshold []float32
	OutputThreshold []float32

	hidden64, output64 []float64
}

// netHeader is the fixed part that starts every net in a binary file.
type netHeader struct {
	Inputs, Hidden, Outputs uint32
	Trained                 int32
	BetaHidden, BetaOutput  float32
}

func newNet(h netHeader) (*NeuralNet, error) {
	if h.Inputs < 1 || h.Hidden < 1 || h.Outputs < 1 {
		return nil, fmt.Errorf("%w: net shape %d-%d-%d", ErrBadWeights, h.Inputs, h.Hidden, h.Outputs)
	}
	if !(h.BetaHidden > 0 && h.BetaOutput > 0) {
		return nil, fmt.Errorf("%w: beta %g/%g", ErrBadWeights, h.BetaHidden, h.BetaOutput)
	}
	return &NeuralNet{
		CInput:          h.Inputs,
		CHidden:         h.Hidden,
		COutput:         h.Outputs,
		NTrained:        h.Trained,
		RBetaHidden:     h.BetaHidden,
		RBetaOutput:     h.BetaOutput,
		HiddenWeight:    make([]float32, h.Inputs*h.Hidden),
		OutputWeight:    make([]float32, h.Hidden*h.Outputs),
		HiddenThreshold: make([]float32, h.Hidden),
		OutputThreshold: make([]float32, h.Outputs),
	}, nil
}

// parameters lists the weight arrays in file order.
func (nn *NeuralNet) parameters() []struct {
	name string
	vals []float32
} {
	return []struct {
		name string
		vals []float32
	}{
		{"hidden weights", nn.HiddenWeight},
		{"output weights", nn.OutputWeight},
		{"hidden thresholds", nn.HiddenThreshold},
		{"output thresholds", nn.OutputThreshold},
	}
}

// LoadBinary reads one net in the little endian layout of gnubg.wd.
func LoadBinary(r io.Reader) (*NeuralNet, error) {
	var h netHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("net header: %w", err)
	}
	nn, err := newNet(h)
	if err != nil {
		return nil, err
	}
	for _, p := range nn.parameters() {
		if err := binary.Read(r, binary.LittleEndian, p.vals); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	nn.prepare()
	return nn, nil
}

// LoadText reads one net in the layout of gnubg.weights: a header line
// "inputs hidden outputs trained betaHidden betaOutput" and then one value
// per line. r should be a bufio.Reader or another io.RuneScanner.
func LoadText(r io.Reader) (*NeuralNet, error) {
	var h netHeader
	var trained string
	if _, err := fmt.Fscan(r, &h.Inputs, &h.Hidden, &h.Outputs, &trained, &h.BetaHidden, &h.BetaOutput); err != nil {
		return nil, fmt.Errorf("net header: %w", err)
	}
	h.Trained = 1
	nn, err := newNet(h)
	if err != nil {
		return nil, err
	}
	for _, p := range nn.parameters() {
		for i := range p.vals {
			if _, err := fmt.Fscan(r, &p.vals[i]); err != nil {
				return nil, fmt.Errorf("%s %d: %w", p.name, i, err)
			}
		}
	}
	nn.prepare()
	return nn, nil
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(float64(x))))
}

// Evaluate runs the net in float32 with an exact sigmoid. The engine uses
// EvaluateFast; this is the reference it is checked against.
func (nn *NeuralNet) Evaluate(input []float32) []float32 {
	out := make([]float32, nn.COutput)
	nn.EvaluateInto(input, out)
	return out
}

// EvaluateInto is Evaluate writing into output.
func (nn *NeuralNet) EvaluateInto(input, output []float32) {
	nh := int(nn.CHidden)
	hidden := make([]float32, nh)
	copy(hidden, nn.HiddenThreshold)

	for i, x := range input[:nn.CInput] {
		if x == 0 {
			continue
		}
		row := nn.HiddenWeight[i*nh : (i+1)*nh]
		for j, w := range row {
			if x == 1 {
				hidden[j] += w
			} else {
				hidden[j] += w * x
			}
		}
	}
	for j := range hidden {
		hidden[j] = sigmoid(-nn.RBetaHidden * hidden[j])
	}

	for o := range output[:nn.COutput] {
		sum := nn.OutputThreshold[o]
		for j, w := range nn.OutputWeight[o*nh : (o+1)*nh] {
			sum += hidden[j] * w
		}
		output[o] = sigmoid(-nn.RBetaOutput * sum)
	}
}
