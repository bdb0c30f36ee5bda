package batch

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yourusername/sagnubg/pkg/engine"
)

// num formats x the way a C++ ostream prints a float by default.
func num(x float64) string {
	return strconv.FormatFloat(float64(float32(x)), 'g', 6, 32)
}

// probs formats the five outputs separated by spaces.
func probs(p engine.Probs) string {
	return strings.Join(lo.Map(p[:], func(x float64, _ int) string { return num(x) }), " ")
}

// scanInt reads a leading optionally signed decimal integer from s, the way
// an istream extracts a long. ok is false when s has no digits.
func scanInt(s string) (n int64, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:j], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// atoi is scanInt with 0 for no digits.
func atoi(s string) int {
	n, _ := scanInt(strings.TrimSpace(s))
	return int(n)
}

// split returns the command character and the fields after it. ok is false
// for empty or whitespace-only lines.
func split(line string) (cmd byte, args []string, ok bool) {
	t := strings.TrimLeft(line, " \t\r\n\v\f")
	if t == "" {
		return 0, nil, false
	}
	return t[0], strings.Fields(t[1:]), true
}

// lineReader yields lines without their newline. complete is false for a
// final line that ended at EOF without one.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns io.EOF once no characters are left.
func (lr *lineReader) next() (line string, complete bool, err error) {
	line, err = lr.r.ReadString('\n')
	switch {
	case err == nil:
		return line[:len(line)-1], true, nil
	case errors.Is(err, io.EOF) && line != "":
		return line, false, nil
	default:
		return "", false, err
	}
}
