// Package model is the document tree built by the parser. Mappers are the
// only writers; after parsing everything here is read-only.
package model

import (
	"github.com/chriserin/rfl/internal/lexer"
	"github.com/chriserin/rfl/internal/token"
)

// TableKind identifies a section type.
type TableKind int

const (
	SettingsTable TableKind = iota
	VariablesTable
	TestCasesTable
	KeywordsTable
	UnknownTable
)

var tableNames = map[TableKind]string{
	SettingsTable:  "Settings",
	VariablesTable: "Variables",
	TestCasesTable: "Test Cases",
	KeywordsTable:  "Keywords",
	UnknownTable:   "Unknown",
}

func (k TableKind) String() string {
	return tableNames[k]
}

// Line is a source line with every token it produced, separators included.
type Line struct {
	Number int
	Tokens []*token.Token
	EOL    *token.Token
	Source lexer.Line
}

// Raw rebuilds the exact source text of the line.
func (l *Line) Raw() string {
	n := 0
	for _, t := range l.Tokens {
		n += len(t.Raw)
	}
	buf := make([]byte, 0, n+2)
	for _, t := range l.Tokens {
		buf = append(buf, t.Raw...)
	}
	if l.EOL != nil {
		buf = append(buf, l.EOL.Raw...)
	}
	return string(buf)
}

// TableHeader is a "*** Name ***" line.
type TableHeader struct {
	Declaration *token.Token
	Columns     []*token.Token
}

// Section records where a header starts a table region. A section ends
// where the next one begins.
type Section struct {
	Kind      TableKind
	Header    *TableHeader
	BeginLine int
	EndLine   int
}

// File is the root of the document tree.
type File struct {
	Name          string
	Lines         []*Line
	Sections      []*Section
	SettingTable  *SettingTable
	VariableTable *VariableTable
	TestCaseTable *TestCaseTable
	KeywordTable  *KeywordTable
}

func NewFile(name string) *File {
	return &File{
		Name:          name,
		SettingTable:  &SettingTable{},
		VariableTable: &VariableTable{},
		TestCaseTable: &TestCaseTable{},
		KeywordTable:  &KeywordTable{},
	}
}

// TokensBetween returns every token on lines begin..end inclusive.
func (f *File) TokensBetween(begin, end int) []*token.Token {
	var out []*token.Token
	for _, l := range f.Lines {
		if l.Number < begin || l.Number > end {
			continue
		}
		out = append(out, l.Tokens...)
	}
	return out
}

type SettingTable struct {
	Headers  []*TableHeader
	Settings []*Setting
	Unknown  []*UnknownSetting
}

func (t *SettingTable) Present() bool { return len(t.Headers) > 0 }

// First returns the bound setting of kind, or nil.
func (t *SettingTable) First(kind SettingKind) *Setting {
	for _, s := range t.Settings {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// All returns every bound setting of kind in source order.
func (t *SettingTable) All(kind SettingKind) []*Setting {
	var out []*Setting
	for _, s := range t.Settings {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// VariableKind follows the sigil of the declaration.
type VariableKind int

const (
	Scalar VariableKind = iota
	List
	Dictionary
	UnknownVariable
)

var variableNames = map[VariableKind]string{
	Scalar:          "scalar",
	List:            "list",
	Dictionary:      "dictionary",
	UnknownVariable: "unknown",
}

func (k VariableKind) String() string {
	return variableNames[k]
}

type Variable struct {
	Kind        VariableKind
	Declaration *token.Token
	Values      []*token.Token
	Comment     []*token.Token
}

// Name is the declaration without a trailing "=".
func (v *Variable) Name() string {
	name := v.Declaration.Text
	for len(name) > 0 && (name[len(name)-1] == '=' || name[len(name)-1] == ' ') {
		name = name[:len(name)-1]
	}
	return name
}

type VariableTable struct {
	Headers   []*TableHeader
	Variables []*Variable
}

func (t *VariableTable) Present() bool { return len(t.Headers) > 0 }

// EntryKind tells test cases and user keywords apart.
type EntryKind int

const (
	TestCase EntryKind = iota
	UserKeyword
)

func (k EntryKind) String() string {
	if k == TestCase {
		return "test case"
	}
	return "keyword"
}

// ExecutableRow is a keyword call with its arguments.
type ExecutableRow struct {
	Action    *token.Token
	Arguments []*token.Token
	Comment   []*token.Token
	Line      int
}

// Entry is a test case or a user keyword.
type Entry struct {
	Kind      EntryKind
	Name      *token.Token
	Settings  []*Setting
	Unknown   []*UnknownSetting
	Rows      []*ExecutableRow
	BeginLine int
	EndLine   int
}

// Setting returns the bound setting of kind, or nil.
func (e *Entry) Setting(kind SettingKind) *Setting {
	for _, s := range e.Settings {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

type TestCaseTable struct {
	Headers []*TableHeader
	Entries []*Entry
}

func (t *TestCaseTable) Present() bool { return len(t.Headers) > 0 }

type KeywordTable struct {
	Headers []*TableHeader
	Entries []*Entry
}

func (t *KeywordTable) Present() bool { return len(t.Headers) > 0 }
