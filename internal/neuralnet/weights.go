package neuralnet

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Binary weights file constants
const (
	WeightsMagicBinary = 472.3782
	minBinaryVersion   = 1.0
	maxBinaryVersion   = 2.0
)

// ErrBadWeights reports a weights file that does not parse.
var ErrBadWeights = errors.New("bad weights file")

// Weights holds the evaluation nets and the pruning nets of a weights file,
// in the order gnubg stores them.
type Weights struct {
	Version string

	Contact  *NeuralNet
	Race     *NeuralNet
	Crashed  *NeuralNet
	PContact *NeuralNet
	PCrashed *NeuralNet
	PRace    *NeuralNet
}

// nets returns pointers to the net slots in file order.
func (w *Weights) nets() []struct {
	name string
	net  **NeuralNet
} {
	return []struct {
		name string
		net  **NeuralNet
	}{
		{"contact", &w.Contact},
		{"race", &w.Race},
		{"crashed", &w.Crashed},
		{"pruning contact", &w.PContact},
		{"pruning crashed", &w.PCrashed},
		{"pruning race", &w.PRace},
	}
}

// LoadWeights reads a weights file, binary when the name ends in .wd and
// text otherwise.
func LoadWeights(path string) (*Weights, error) {
	if strings.EqualFold(filepath.Ext(path), ".wd") {
		return LoadWeightsBinary(path)
	}
	return LoadWeightsText(path)
}

// LoadWeightsBinary loads a binary weights file (gnubg.wd).
func LoadWeightsBinary(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weights file: %w", err)
	}
	defer f.Close()

	return ReadWeightsBinary(bufio.NewReader(f))
}

// ReadWeightsBinary parses binary weights from r.
func ReadWeightsBinary(r io.Reader) (*Weights, error) {
	var magic, version float32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading magic number: %w", err)
	}
	if math.Abs(float64(magic)-WeightsMagicBinary) > 0.001 {
		return nil, fmt.Errorf("%w: magic number %f", ErrBadWeights, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version < minBinaryVersion || version > maxBinaryVersion {
		return nil, fmt.Errorf("%w: version %f", ErrBadWeights, version)
	}

	w := &Weights{Version: fmt.Sprintf("%.2f", version)}
	for _, slot := range w.nets() {
		nn, err := LoadBinary(r)
		if err != nil {
			return nil, fmt.Errorf("loading %s net: %w", slot.name, err)
		}
		*slot.net = nn
	}
	return w, nil
}

// LoadWeightsText loads a text weights file (gnubg.weights).
func LoadWeightsText(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weights file: %w", err)
	}
	defer f.Close()

	return ReadWeightsText(bufio.NewReader(f))
}

// ReadWeightsText parses text weights from r. The first line reads
// "GNU Backgammon <version>".
func ReadWeightsText(r io.Reader) (*Weights, error) {
	var h1, h2, version string
	if _, err := fmt.Fscanln(r, &h1, &h2, &version); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h1 != "GNU" || h2 != "Backgammon" {
		return nil, fmt.Errorf("%w: header %q", ErrBadWeights, h1+" "+h2)
	}

	w := &Weights{Version: version}
	for _, slot := range w.nets() {
		nn, err := LoadText(r)
		if err != nil {
			return nil, fmt.Errorf("loading %s net: %w", slot.name, err)
		}
		*slot.net = nn
	}
	return w, nil
}

// Validate checks the dimensions the input encoders rely on.
func (w *Weights) Validate() error {
	for _, slot := range w.nets() {
		nn := *slot.net
		if nn == nil {
			return fmt.Errorf("%s net missing", slot.name)
		}
		if nn.COutput != NumOutputs {
			return fmt.Errorf("%s net has %d outputs, expected %d", slot.name, nn.COutput, NumOutputs)
		}
	}

	checks := []struct {
		name string
		nn   *NeuralNet
		in   uint32
	}{
		{"contact", w.Contact, NumContactInputs},
		{"crashed", w.Crashed, NumContactInputs},
		{"race", w.Race, NumRaceInputs},
		{"pruning contact", w.PContact, NumPruningInputs},
		{"pruning crashed", w.PCrashed, NumPruningInputs},
		{"pruning race", w.PRace, NumPruningInputs},
	}
	for _, c := range checks {
		if c.nn.CInput != c.in {
			return fmt.Errorf("%s net has %d inputs, expected %d", c.name, c.nn.CInput, c.in)
		}
	}
	return nil
}

func (w *Weights) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "weights %s", w.Version)
	for _, slot := range w.nets() {
		if nn := *slot.net; nn != nil {
			fmt.Fprintf(&b, " %s:%d-%d-%d", slot.name, nn.CInput, nn.CHidden, nn.COutput)
		}
	}
	return b.String()
}
