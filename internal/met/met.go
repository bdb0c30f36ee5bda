// Package met provides match equity tables indexed by away scores, and the
// market-window and gammon-value arithmetic built on them.
package met

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MaxAway is the largest away score a table covers.
const MaxAway = 25

// Table holds match winning probabilities. Pre[i][j] is the probability of
// winning for the side needing i+1 points when the other side needs j+1.
// Post[i] is the probability of winning needing i+1 against a side at
// 1-away after the Crawford game.
type Table struct {
	Name string
	Pre  [MaxAway][MaxAway]float64
	Post [MaxAway - 1]float64
}

// Default returns the built-in table: the mec 26% gammon-rate table with
// the Snowie 2.1 table laid over scores up to 15-away.
func Default() *Table {
	t := &Table{Name: "mec26+Snowie", Pre: mec26, Post: postCrawford}
	for i := range snowie {
		copy(t.Pre[i][:len(snowie[i])], snowie[i][:])
	}
	return t
}

// Prob is the probability of winning the match needing a1 points against
// an opponent needing a2. A side needing 0 or less has won.
func (t *Table) Prob(a1, a2 int) float64 {
	if a1 <= 0 {
		return 1
	}
	if a2 <= 0 {
		return 0
	}
	return t.Pre[min(a1, MaxAway)-1][min(a2, MaxAway)-1]
}

// Value is Prob as an equity in [-1,1].
func (t *Table) Value(a1, a2 int) float64 {
	return ProbToEquity(t.Prob(a1, a2))
}

// ProbPost is the post-Crawford winning probability needing away points
// against a side at 1-away.
func (t *Table) ProbPost(away int) float64 {
	if away <= 0 {
		return 1
	}
	return t.Post[min(away, len(t.Post))-1]
}

// EPost is ProbPost as an equity.
func (t *Table) EPost(away int) float64 {
	return 2*t.ProbPost(away) - 1
}

// ProbCrawford is Prob, reading the post-Crawford table when one side is
// at 1-away and the game is not the Crawford game.
func (t *Table) ProbCrawford(xAway, oAway int, crawford bool) float64 {
	if (xAway == 1 || oAway == 1) && !crawford {
		if xAway == 1 {
			return 1 - t.ProbPost(oAway)
		}
		return t.ProbPost(xAway)
	}
	return t.Prob(xAway, oAway)
}

// ProbToEquity maps a match winning probability to [-1,1].
func ProbToEquity(p float64) float64 { return 2*p - 1 }

// EquityToProb is the inverse of ProbToEquity.
func EquityToProb(e float64) float64 { return (1 + e) / 2 }

// metFile is the subset of the gnubg MET XML read here.
type metFile struct {
	Name string `xml:"info>name"`
	Pre  []struct {
		Cells []string `xml:"me"`
	} `xml:"pre-crawford-table>row"`
	Post []struct {
		Player string   `xml:"player,attr"`
		Cells  []string `xml:"row>me"`
	} `xml:"post-crawford-table"`
}

// LoadXML reads a gnubg match equity table file.
func LoadXML(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open MET: %w", err)
	}
	defer f.Close()
	return ParseXML(f)
}

// ParseXML parses a gnubg match equity table. Scores the file does not
// cover keep the values of the default table, and only the first
// post-Crawford table for player 0 (or both) is read.
func ParseXML(r io.Reader) (*Table, error) {
	var doc metFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse MET: %w", err)
	}

	t := Default()
	t.Name = strings.TrimSpace(doc.Name)
	for i, row := range doc.Pre[:min(len(doc.Pre), MaxAway)] {
		if err := parseCells(t.Pre[i][:], row.Cells); err != nil {
			return nil, fmt.Errorf("pre-Crawford row %d: %w", i+1, err)
		}
	}
	for _, post := range doc.Post {
		switch post.Player {
		case "", "0", "both":
			if err := parseCells(t.Post[:], post.Cells); err != nil {
				return nil, fmt.Errorf("post-Crawford: %w", err)
			}
			return t, nil
		}
	}
	return t, nil
}

// parseCells fills dst from the leading cells; extra cells are ignored.
func parseCells(dst []float64, cells []string) error {
	for j, c := range cells[:min(len(cells), len(dst))] {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return fmt.Errorf("column %d: %w", j+1, err)
		}
		dst[j] = v
	}
	return nil
}
