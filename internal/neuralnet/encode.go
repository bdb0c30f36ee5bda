package neuralnet

// Board holds each side's checkers counted from that side's own ace point:
// index 0-23 are points 1-24 and index 24 is the bar. Side 1 is on roll.
type Board [2][25]uint8

// PositionClass selects the evaluator for a position.
type PositionClass int

const (
	ClassOver PositionClass = iota
	ClassBearoff2
	ClassBearoffTS
	ClassBearoff1
	ClassBearoffOS
	ClassRace
	ClassCrashed
	ClassContact
)

const (
	NumOutputs = 5

	unitsPerPoint = 4
	// extraInputs is the number of hand crafted features per side.
	extraInputs = 25

	NumPruningInputs = 25 * unitsPerPoint * 2
	NumContactInputs = NumPruningInputs + 2*extraInputs

	raceMenOff     = 23 * unitsPerPoint
	raceCrossovers = raceMenOff + 14
	halfRaceInputs = raceCrossovers + 1
	NumRaceInputs  = 2 * halfRaceInputs
)

// encodePoint writes the four units for n checkers. A point marks 1, 2 or
// 3+ checkers one-hot; the bar marks them cumulatively. Both carry the
// checkers past the third in halves.
func encodePoint(dst []float32, n uint8, bar bool) {
	n = min(n, 15)
	dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
	switch {
	case n == 0:
		return
	case bar:
		for i := range min(int(n), 3) {
			dst[i] = 1
		}
	default:
		dst[min(n, 3)-1] = 1
	}
	if n > 3 {
		dst[3] = float32(n-3) / 2
	}
}

// BaseInputsInto writes the NumPruningInputs point encoding of b, side 0
// first. The pruning nets read only these.
func BaseInputsInto(b Board, inputs []float32) {
	for side := range b {
		half := inputs[side*25*unitsPerPoint:]
		for p, n := range b[side] {
			encodePoint(half[p*unitsPerPoint:], n, p == 24)
		}
	}
}

// BaseInputs is BaseInputsInto on a fresh slice.
func BaseInputs(b Board) []float32 {
	in := make([]float32, NumPruningInputs)
	BaseInputsInto(b, in)
	return in
}

// RaceInputsInto writes the NumRaceInputs encoding of a position without
// contact: points 1-23, men off one-hot and the crossovers still needed.
func RaceInputsInto(b Board, inputs []float32) {
	for side := range b {
		half := inputs[side*halfRaceInputs : (side+1)*halfRaceInputs]
		off := 15
		for p := range 23 {
			n := b[side][p]
			off -= int(n)
			encodePoint(half[p*unitsPerPoint:], n, false)
		}
		for k := range 14 {
			half[raceMenOff+k] = 0
			if off == k+1 {
				half[raceMenOff+k] = 1
			}
		}
		cross := 0
		for quarter := 1; quarter < 4; quarter++ {
			for p := 6 * quarter; p < 6*quarter+6; p++ {
				cross += int(b[side][p]) * quarter
			}
		}
		half[raceCrossovers] = float32(cross) / 10
	}
}

// RaceInputs is RaceInputsInto on a fresh slice.
func RaceInputs(b Board) []float32 {
	in := make([]float32, NumRaceInputs)
	RaceInputsInto(b, in)
	return in
}

// ContactInputsInto writes the NumContactInputs encoding used by the
// contact net.
func ContactInputsInto(b Board, inputs []float32) {
	contactInputs(b, inputs, 3)
}

// CrashedInputsInto writes the NumContactInputs encoding used by the
// crashed net. It differs from the contact one only in how men off are
// bucketed.
func CrashedInputsInto(b Board, inputs []float32) {
	contactInputs(b, inputs, 5)
}

// ContactInputs is ContactInputsInto on a fresh slice.
func ContactInputs(b Board) []float32 {
	in := make([]float32, NumContactInputs)
	ContactInputsInto(b, in)
	return in
}

// CrashedInputs is CrashedInputsInto on a fresh slice.
func CrashedInputs(b Board) []float32 {
	in := make([]float32, NumContactInputs)
	CrashedInputsInto(b, in)
	return in
}

func contactInputs(b Board, inputs []float32, bucket int) {
	BaseInputsInto(b, inputs)
	for side := range b {
		own, opp := b[side], b[1-side]
		x := inputs[NumPruningInputs+side*extraInputs : NumPruningInputs+(side+1)*extraInputs]
		// Each half holds the features of the other side, as in training.
		// The crashed net takes that side's men off too.
		menOff := opp
		if bucket == 3 {
			menOff = own
		}
		encodeMenOff(x, menOff, bucket)
		features(x, opp, own)
	}
}

// encodeMenOff spreads the checkers borne off over three units of bucket
// checkers each.
func encodeMenOff(x []float32, side [25]uint8, bucket int) {
	off := 15
	for _, n := range side {
		off -= int(n)
	}
	x[fOff1], x[fOff2], x[fOff3] = 0, 0, 0
	switch {
	case off <= bucket:
		x[fOff1] = float32(off) / float32(bucket)
	case off <= 2*bucket:
		x[fOff1] = 1
		x[fOff2] = float32(off-bucket) / float32(bucket)
	default:
		x[fOff1], x[fOff2] = 1, 1
		x[fOff3] = float32(off-2*bucket) / float32(bucket)
	}
}
