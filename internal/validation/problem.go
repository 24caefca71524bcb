// Package validation runs version-gated rules over a parsed model.File and
// reports the problems they find.
package validation

import (
	"fmt"

	"github.com/chriserin/rfl/internal/token"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity is the inverse of String.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ProblemKind is the closed set of problems rules can raise.
type ProblemKind int

const (
	DuplicatedSetting ProblemKind = iota
	DuplicatedSettingOld
	DeprecatedTableHeader
	DeprecatedSettingName
	MetadataKeyInSettingColumn
	TimeoutMessageDeprecated
	LibraryAliasNotUpperCase
	DictionaryNotSupported
	ScalarAsListOld
	ScalarAsList
	UnknownSetting
)

type kindInfo struct {
	code     string
	severity Severity
	format   string
}

var kindInfos = map[ProblemKind]kindInfo{
	DuplicatedSetting: {"duplicated-setting", Error,
		"Setting '%s' is duplicated%s"},
	DuplicatedSettingOld: {"duplicated-setting-old", Warning,
		"Setting '%s' is duplicated. Only the first declaration is used in Robot Framework older than 3.0"},
	DeprecatedTableHeader: {"deprecated-table-header", Warning,
		"Table header '%s' is deprecated. Use '*** %s ***' instead"},
	DeprecatedSettingName: {"deprecated-setting-name", Warning,
		"Setting name '%s' is deprecated. Use '%s' instead"},
	MetadataKeyInSettingColumn: {"metadata-key-in-setting-column", Warning,
		"Metadata key '%s' is written in the setting column. Use 'Metadata' followed by the key in the next cell"},
	TimeoutMessageDeprecated: {"timeout-message-deprecated", Warning,
		"Timeout message in '%s' is deprecated since Robot Framework 3.0"},
	LibraryAliasNotUpperCase: {"library-alias-not-upper-case", Warning,
		"Library alias marker '%s' should be written as 'WITH NAME'"},
	DictionaryNotSupported: {"dictionary-not-supported", Error,
		"Dictionary variable '%s' is not supported in Robot Framework older than 2.9"},
	ScalarAsListOld: {"scalar-as-list-old", Info,
		"Scalar variable '%s' has several values and is handled as a list"},
	ScalarAsList: {"scalar-as-list", Warning,
		"Scalar variable '%s' with several values is deprecated. Declare a list variable instead"},
	UnknownSetting: {"unknown-setting", Error,
		"Unknown setting '%s'"},
}

// Kinds returns every problem kind in declaration order.
func Kinds() []ProblemKind {
	kinds := make([]ProblemKind, 0, len(kindInfos))
	for k := DuplicatedSetting; k <= UnknownSetting; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindByCode looks a kind up by its code.
func KindByCode(code string) (ProblemKind, bool) {
	for k, info := range kindInfos {
		if info.code == code {
			return k, true
		}
	}
	return 0, false
}

func (k ProblemKind) Code() string { return kindInfos[k].code }

func (k ProblemKind) Severity() Severity { return kindInfos[k].severity }

func (k ProblemKind) String() string { return k.Code() }

// Region locates a problem in the source.
type Region struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// RegionOf covers a single token.
func RegionOf(file string, t *token.Token) Region {
	return Region{File: file, Line: t.Line, Column: t.Column, Start: t.Offset, End: t.End()}
}

// Span covers first through last.
func Span(file string, first, last *token.Token) Region {
	r := RegionOf(file, first)
	r.End = last.End()
	return r
}

type Problem struct {
	Kind     ProblemKind `json:"-"`
	Code     string      `json:"code"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
	Region   Region      `json:"region"`
}

// NewProblem formats kind's message with args at its default severity.
func NewProblem(kind ProblemKind, region Region, args ...any) Problem {
	info := kindInfos[kind]
	return Problem{
		Kind:     kind,
		Code:     info.code,
		Severity: info.severity,
		Message:  fmt.Sprintf(info.format, args...),
		Region:   region,
	}
}

// WithSeverity overrides the default severity.
func (p Problem) WithSeverity(s Severity) Problem {
	p.Severity = s
	return p
}

func (p Problem) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", p.Region.File, p.Region.Line, p.Region.Column, p.Severity, p.Message, p.Code)
}
