// Package recognizer classifies single cells into token types. Recognizers
// never look at parser state or the model; mappers decide what a recognized
// cell means in context.
package recognizer

import (
	"regexp"
	"strings"

	"github.com/chriserin/rfl/internal/token"
)

// Recognizer matches one cell. Implementations may keep a small match buffer,
// so a Recognizer must not be shared between concurrent parses; use Clone.
type Recognizer interface {
	Recognize(line int, cell string) (token.Type, bool)
	Type() token.Type
	Clone() Recognizer
}

// words splits a cell into lower-cased words, dropping a trailing colon.
func words(cell string) []string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimSuffix(cell, ":")
	return strings.Fields(strings.ToLower(cell))
}

// wordRecognizer accepts a cell whose words equal one of its alternatives.
// "SuiteSetup" and "Suite   Setup" both read as the words [suite setup]
// because the comparison joins words before matching.
type wordRecognizer struct {
	typ          token.Type
	alternatives [][]string
	bracketed    bool

	lastLine  int
	lastWords []string
}

func newWords(typ token.Type, alternatives ...string) *wordRecognizer {
	r := &wordRecognizer{typ: typ}
	for _, alt := range alternatives {
		r.alternatives = append(r.alternatives, strings.Fields(strings.ToLower(alt)))
	}
	return r
}

func newBracketed(typ token.Type, alternatives ...string) *wordRecognizer {
	r := newWords(typ, alternatives...)
	r.bracketed = true
	return r
}

func (r *wordRecognizer) Type() token.Type { return r.typ }

func (r *wordRecognizer) Recognize(line int, cell string) (token.Type, bool) {
	if r.bracketed {
		trimmed := strings.TrimSpace(cell)
		if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
			return token.Unknown, false
		}
		cell = trimmed[1 : len(trimmed)-1]
	}
	ws := words(cell)
	if len(ws) == 0 {
		return token.Unknown, false
	}
	joined := strings.Join(ws, "")
	for _, alt := range r.alternatives {
		if joined == strings.Join(alt, "") {
			r.lastLine = line
			r.lastWords = append(r.lastWords[:0], ws...)
			return r.typ, true
		}
	}
	return token.Unknown, false
}

func (r *wordRecognizer) Clone() Recognizer {
	return &wordRecognizer{
		typ:          r.typ,
		alternatives: r.alternatives,
		bracketed:    r.bracketed,
	}
}

// patternRecognizer matches the whole cell against a regular expression.
type patternRecognizer struct {
	typ     token.Type
	pattern *regexp.Regexp

	lastLine  int
	lastMatch []string
}

func newPattern(typ token.Type, expr string) *patternRecognizer {
	return &patternRecognizer{typ: typ, pattern: regexp.MustCompile(expr)}
}

func (r *patternRecognizer) Type() token.Type { return r.typ }

func (r *patternRecognizer) Recognize(line int, cell string) (token.Type, bool) {
	m := r.pattern.FindStringSubmatch(cell)
	if m == nil {
		return token.Unknown, false
	}
	r.lastLine = line
	r.lastMatch = m
	return r.typ, true
}

func (r *patternRecognizer) Clone() Recognizer {
	return &patternRecognizer{typ: r.typ, pattern: r.pattern}
}

// headerRecognizer matches "*** Name ***" with any number of asterisks on
// either side, ignoring case and spacing of the name.
type headerRecognizer struct {
	typ   token.Type
	names []string

	lastName string
}

var headerPattern = regexp.MustCompile(`^\*+\s*([^*]*?)\s*\**$`)

func newHeader(typ token.Type, names ...string) *headerRecognizer {
	r := &headerRecognizer{typ: typ}
	for _, n := range names {
		r.names = append(r.names, squash(n))
	}
	return r
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func (r *headerRecognizer) Type() token.Type { return r.typ }

func (r *headerRecognizer) Recognize(_ int, cell string) (token.Type, bool) {
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return token.Unknown, false
	}
	name := squash(m[1])
	for _, n := range r.names {
		if name == n {
			r.lastName = name
			return r.typ, true
		}
	}
	return token.Unknown, false
}

func (r *headerRecognizer) Clone() Recognizer {
	return &headerRecognizer{typ: r.typ, names: r.names}
}

// anyHeader matches any star-prefixed header. It runs after the known
// headers so it only claims user-defined or misspelled tables.
type anyHeader struct{}

func (anyHeader) Type() token.Type { return token.UserOwnTableHeader }

func (anyHeader) Recognize(_ int, cell string) (token.Type, bool) {
	if strings.HasPrefix(strings.TrimSpace(cell), "*") {
		return token.UserOwnTableHeader, true
	}
	return token.Unknown, false
}

func (a anyHeader) Clone() Recognizer { return a }

// HeaderName returns the table name of a header cell, e.g. "Test Cases" for
// "*** Test Cases ***".
func HeaderName(cell string) string {
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ")
}
