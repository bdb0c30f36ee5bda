// Package getopt implements GNU getopt_long argument scanning.
//
// All scanning state lives in a Parser value, so several parsers can run
// over different argument vectors in the same process.
package getopt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// HasArg tells whether a long option takes an argument.
type HasArg int

const (
	NoArgument HasArg = iota
	RequiredArgument
	OptionalArgument
)

// Option describes one long option. When Flag is non-nil, Next stores Val
// through it and returns 0; otherwise Next returns Val.
type Option struct {
	Name   string
	HasArg HasArg
	Flag   *int
	Val    int
}

// Ordering controls how options and non-options may be interleaved.
type Ordering int

const (
	// Permute moves non-options to the end of the argument list.
	Permute Ordering = iota
	// RequireOrder stops at the first non-option.
	RequireOrder
	// ReturnInOrder returns each non-option as option code 0 with the
	// argument in OptArg.
	ReturnInOrder
)

// Parser scans one argument vector. Args[0] is the program name.
type Parser struct {
	// OptInd is the index of the next element of Args to be scanned.
	OptInd int
	// OptArg holds the argument of the last option, or "" if none.
	OptArg string
	// OptOpt holds the option character that caused the last error.
	OptOpt int
	// LongIndex is the table index of the last long option matched.
	LongIndex int
	// Opterr enables diagnostics on Stderr.
	Opterr bool
	Stderr io.Writer

	args     []string
	short    string
	long     []Option
	longOnly bool
	ordering Ordering

	nextChar    string
	firstNonopt int
	lastNonopt  int
}

// New creates a parser over args. An empty shortOpts string is derived
// from the long option table.
func New(args []string, shortOpts string, longOpts []Option, longOnly bool) *Parser {
	if shortOpts == "" {
		shortOpts = ShortFromLong(longOpts)
	}
	p := &Parser{
		OptInd:      1,
		LongIndex:   -1,
		Opterr:      true,
		Stderr:      os.Stderr,
		args:        append([]string(nil), args...),
		long:        longOpts,
		longOnly:    longOnly,
		firstNonopt: 1,
		lastNonopt:  1,
	}
	switch {
	case strings.HasPrefix(shortOpts, "-"):
		p.ordering = ReturnInOrder
		shortOpts = shortOpts[1:]
	case strings.HasPrefix(shortOpts, "+"):
		p.ordering = RequireOrder
		shortOpts = shortOpts[1:]
	case os.Getenv("POSIXLY_CORRECT") != "":
		p.ordering = RequireOrder
	}
	p.short = shortOpts
	return p
}

// ShortFromLong builds a short option string from the long options whose
// Val is a printable character.
func ShortFromLong(longOpts []Option) string {
	var sb strings.Builder
	for _, o := range longOpts {
		if o.Flag != nil || o.Val <= ' ' || o.Val > '~' {
			continue
		}
		sb.WriteByte(byte(o.Val))
		switch o.HasArg {
		case RequiredArgument:
			sb.WriteString(":")
		case OptionalArgument:
			sb.WriteString("::")
		}
	}
	return sb.String()
}

// Ordering reports the ordering mode in effect.
func (p *Parser) Ordering() Ordering { return p.ordering }

// Args returns the argument vector, permuted so far.
func (p *Parser) Args() []string { return p.args }

// Rest returns the arguments from OptInd on. After Next returned -1 these
// are the non-option arguments.
func (p *Parser) Rest() []string {
	if p.OptInd >= len(p.args) {
		return nil
	}
	return p.args[p.OptInd:]
}

func nonOption(s string) bool {
	return len(s) < 2 || s[0] != '-'
}

func (p *Parser) errorf(format string, a ...any) {
	if !p.Opterr || p.Stderr == nil {
		return
	}
	prog := "getopt"
	if len(p.args) > 0 {
		prog = p.args[0]
	}
	fmt.Fprintf(p.Stderr, "%s: "+format+"\n", append([]any{prog}, a...)...)
}

func (p *Parser) missingArgCode() int {
	if strings.HasPrefix(p.short, ":") {
		return ':'
	}
	return '?'
}

// exchange swaps the block of skipped non-options [firstNonopt,lastNonopt)
// with the block of options [lastNonopt,OptInd).
func (p *Parser) exchange() {
	first, last, cur := p.firstNonopt, p.lastNonopt, p.OptInd
	nonopts := append([]string(nil), p.args[first:last]...)
	n := copy(p.args[first:], p.args[last:cur])
	copy(p.args[first+n:], nonopts)
	p.firstNonopt += cur - last
	p.lastNonopt = cur
}

// Next returns the next option code, or -1 when scanning is done.
func (p *Parser) Next() int {
	argc := len(p.args)
	p.OptArg = ""

	if p.nextChar == "" {
		if p.lastNonopt > p.OptInd {
			p.lastNonopt = p.OptInd
		}
		if p.firstNonopt > p.OptInd {
			p.firstNonopt = p.OptInd
		}

		if p.ordering == Permute {
			if p.firstNonopt != p.lastNonopt && p.lastNonopt != p.OptInd {
				p.exchange()
			} else if p.lastNonopt != p.OptInd {
				p.firstNonopt = p.OptInd
			}
			for p.OptInd < argc && nonOption(p.args[p.OptInd]) {
				p.OptInd++
			}
			p.lastNonopt = p.OptInd
		}

		if p.OptInd != argc && p.args[p.OptInd] == "--" {
			p.OptInd++
			if p.firstNonopt != p.lastNonopt && p.lastNonopt != p.OptInd {
				p.exchange()
			} else if p.firstNonopt == p.lastNonopt {
				p.firstNonopt = p.OptInd
			}
			p.lastNonopt = argc
			p.OptInd = argc
		}

		if p.OptInd == argc {
			if p.firstNonopt != p.lastNonopt {
				p.OptInd = p.firstNonopt
			}
			return -1
		}

		arg := p.args[p.OptInd]
		if nonOption(arg) {
			if p.ordering == RequireOrder {
				return -1
			}
			p.OptArg = arg
			p.OptInd++
			return 0
		}

		if len(p.long) > 0 {
			if arg[1] == '-' {
				p.nextChar = arg[2:]
				return p.longOption("--")
			}
			if p.longOnly && (len(arg) > 2 || !strings.ContainsRune(p.short, rune(arg[1]))) {
				p.nextChar = arg[1:]
				if code := p.longOption("-"); code != -1 {
					return code
				}
			}
		}
		p.nextChar = arg[1:]
	}

	c := int(p.nextChar[0])
	p.nextChar = p.nextChar[1:]
	idx := strings.IndexByte(p.short, byte(c))
	if p.nextChar == "" {
		p.OptInd++
	}
	if idx < 0 || c == ':' || c == ';' {
		p.errorf("invalid option -- '%c'", c)
		p.OptOpt = c
		return '?'
	}

	colons := p.short[idx+1:]
	if strings.HasPrefix(colons, ":") {
		if strings.HasPrefix(colons, "::") {
			if p.nextChar != "" {
				p.OptArg = p.nextChar
				p.OptInd++
			}
		} else if p.nextChar != "" {
			p.OptArg = p.nextChar
			p.OptInd++
		} else if p.OptInd == argc {
			p.errorf("option requires an argument -- '%c'", c)
			p.OptOpt = c
			c = p.missingArgCode()
		} else {
			p.OptArg = p.args[p.OptInd]
			p.OptInd++
		}
		p.nextChar = ""
	}
	return c
}

// longOption matches p.nextChar against the long option table. It returns
// -1 only in long-only mode when the word should be retried as short
// options.
func (p *Parser) longOption(prefix string) int {
	name, value, hasValue := strings.Cut(p.nextChar, "=")

	found := -1
	for i, o := range p.long {
		if o.Name == name {
			found = i
			break
		}
	}

	if found < 0 {
		ambiguous := false
		for i, o := range p.long {
			if !strings.HasPrefix(o.Name, name) {
				continue
			}
			if found < 0 {
				found = i
				continue
			}
			f := p.long[found]
			if p.longOnly || o.HasArg != f.HasArg || o.Flag != f.Flag || o.Val != f.Val {
				ambiguous = true
			}
		}
		if ambiguous {
			p.errorf("option '%s%s' is ambiguous", prefix, name)
			p.nextChar = ""
			p.OptInd++
			p.OptOpt = 0
			return '?'
		}
	}

	if found < 0 {
		arg := p.args[p.OptInd]
		if !p.longOnly || arg[1] == '-' || !strings.ContainsRune(p.short, rune(p.nextChar[0])) {
			p.errorf("unrecognized option '%s%s'", prefix, name)
			p.nextChar = ""
			p.OptInd++
			p.OptOpt = 0
			return '?'
		}
		return -1
	}

	o := p.long[found]
	p.OptInd++
	p.nextChar = ""
	if hasValue {
		if o.HasArg == NoArgument {
			p.errorf("option '%s%s' doesn't allow an argument", prefix, o.Name)
			p.OptOpt = o.Val
			return '?'
		}
		p.OptArg = value
	} else if o.HasArg == RequiredArgument {
		if p.OptInd >= len(p.args) {
			p.errorf("option '%s%s' requires an argument", prefix, o.Name)
			p.OptOpt = o.Val
			return p.missingArgCode()
		}
		p.OptArg = p.args[p.OptInd]
		p.OptInd++
	}

	p.LongIndex = found
	if o.Flag != nil {
		*o.Flag = o.Val
		return 0
	}
	return o.Val
}
