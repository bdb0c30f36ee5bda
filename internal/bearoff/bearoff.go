// Package bearoff provides one-sided bearoff distributions: for a home
// board, the probability of needing exactly n rolls to bear off every
// checker, and n rolls to bear off the first one. Distributions come from a
// gnubg .bd one-sided database or are generated on demand.
package bearoff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
)

// MaxRolls is the number of buckets in a distribution. The last bucket
// holds everything at MaxRolls-1 rolls or more.
const MaxRolls = 32

// Distribution holds rolls-to-finish probabilities of a one-sided
// position. Off[n] is the probability that bearing off all checkers takes n
// rolls. Gammon[n] is the same for the first checker.
type Distribution struct {
	Off    [MaxRolls]float64
	Gammon [MaxRolls]float64
}

// Mean returns the mean and standard deviation of the rolls needed to bear
// off completely.
func (d *Distribution) Mean() (mean, stddev float64) {
	return stat.PopMeanStdDev(rollCounts[:], d.Off[:])
}

var rollCounts = func() (x [MaxRolls]float64) {
	for i := range x {
		x[i] = float64(i)
	}
	return x
}()

// Source yields the distribution of a home board, index 0 being the ace
// point.
type Source interface {
	Distribution(board [Points]uint8) (Distribution, error)
}

// ErrUnsupported is returned for database files this package cannot read.
var ErrUnsupported = errors.New("unsupported bearoff database")

const headerSize = 40

// Database is a gnubg one-sided bearoff database held in memory.
type Database struct {
	NPoints    int
	NChequers  int
	Compressed bool
	HasGammon  bool
	ND         bool // normal distribution approximation

	data     []byte
	filename string
}

// Load reads a one-sided bearoff database. Two-sided and hypergammon
// databases are rejected with ErrUnsupported.
func Load(filename string) (*Database, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read bearoff database: %w", err)
	}
	db, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	db.filename = filename
	return db, nil
}

func parse(data []byte) (*Database, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("bearoff database too small: %d bytes", len(data))
	}
	header := string(data[:headerSize])
	if header[:5] != "gnubg" {
		return nil, errors.New("not a gnubg bearoff database")
	}
	if header[6:8] != "OS" {
		return nil, fmt.Errorf("%w: type %q", ErrUnsupported, header[6:8])
	}

	db := &Database{data: data}
	if _, err := fmt.Sscanf(header[9:14], "%02d-%02d", &db.NPoints, &db.NChequers); err != nil {
		return nil, fmt.Errorf("failed to parse points/checkers: %w", err)
	}
	if db.NPoints != Points {
		return nil, fmt.Errorf("%w: %d points", ErrUnsupported, db.NPoints)
	}
	db.HasGammon = header[15] == '1'
	db.Compressed = header[17] == '1'
	db.ND = header[19] == '1'
	return db, nil
}

// Filename returns the file the database was read from.
func (db *Database) Filename() string { return db.filename }

// Positions returns the number of positions the database covers.
func (db *Database) Positions() int {
	return Combination(db.NPoints+db.NChequers, db.NPoints)
}

// Distribution looks board up in the database.
func (db *Database) Distribution(board [Points]uint8) (Distribution, error) {
	if n := Count(board); n > db.NChequers {
		return Distribution{}, fmt.Errorf("%d checkers exceed database size %d", n, db.NChequers)
	}
	return db.Get(PositionBearoff(board[:], db.NPoints, db.NChequers))
}

// Get returns the distribution of the position with index id.
func (db *Database) Get(id int) (Distribution, error) {
	switch {
	case db.ND:
		return db.getND(id)
	case db.Compressed:
		return db.getCompressed(id)
	default:
		return db.getUncompressed(id)
	}
}

func (db *Database) u16(off int) float64 {
	return float64(binary.LittleEndian.Uint16(db.data[off:])) / 65535.0
}

func (db *Database) f32(off int) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(db.data[off:])))
}

func (db *Database) getND(id int) (d Distribution, err error) {
	off := headerSize + id*16
	if off+16 > len(db.data) {
		return d, fmt.Errorf("position %d out of range", id)
	}

	mean, stddev := db.f32(off), db.f32(off+4)
	gmean, gstddev := db.f32(off+8), db.f32(off+12)
	for i := range d.Off {
		d.Off[i] = normal(float64(i), mean, stddev)
		d.Gammon[i] = normal(float64(i), gmean, gstddev)
	}
	return d, nil
}

func (db *Database) getCompressed(id int) (d Distribution, err error) {
	entry := 6
	if db.HasGammon {
		entry = 8
	}
	idx := headerSize + id*entry
	if idx+entry > len(db.data) {
		return d, fmt.Errorf("position %d out of range", id)
	}

	offset := int(binary.LittleEndian.Uint32(db.data[idx:]))
	nz, ioff := int(db.data[idx+4]), int(db.data[idx+5])
	var nzg, ioffg int
	if db.HasGammon {
		nzg, ioffg = int(db.data[idx+6]), int(db.data[idx+7])
	}

	start := headerSize + db.Positions()*entry + 2*offset
	if start+2*(nz+nzg) > len(db.data) || ioff+nz > MaxRolls || ioffg+nzg > MaxRolls {
		return d, fmt.Errorf("corrupt index entry for position %d", id)
	}
	for i := 0; i < nz; i++ {
		d.Off[ioff+i] = db.u16(start + 2*i)
	}
	for i := 0; i < nzg; i++ {
		d.Gammon[ioffg+i] = db.u16(start + 2*nz + 2*i)
	}
	return d, nil
}

func (db *Database) getUncompressed(id int) (d Distribution, err error) {
	record := 2 * MaxRolls
	if db.HasGammon {
		record *= 2
	}
	off := headerSize + id*record
	if off+record > len(db.data) {
		return d, fmt.Errorf("position %d out of range", id)
	}

	for i := range d.Off {
		d.Off[i] = db.u16(off + 2*i)
	}
	if db.HasGammon {
		for i := range d.Gammon {
			d.Gammon[i] = db.u16(off + 2*MaxRolls + 2*i)
		}
	}
	return d, nil
}

func normal(x, mu, sigma float64) float64 {
	const epsilon = 1e-7
	if sigma <= epsilon {
		if math.Abs(mu-x) < epsilon {
			return 1
		}
		return 0
	}
	xm := (x - mu) / sigma
	return math.Exp(-xm*xm/2) / (sigma * math.Sqrt(2*math.Pi))
}
