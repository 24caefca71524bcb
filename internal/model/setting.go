package model

import (
	"strings"

	"github.com/chriserin/rfl/internal/token"
)

// SettingKind is the closed set of settings the parser binds.
type SettingKind int

const (
	Library SettingKind = iota
	Resource
	VariablesImport
	Documentation
	Metadata
	SuiteSetup
	SuiteTeardown
	TestSetup
	TestTeardown
	ForceTags
	DefaultTags
	TestTemplate
	TestTimeout
	Tags
	Setup
	Teardown
	Template
	Timeout
	Arguments
	Return
)

var settingNames = map[SettingKind]string{
	Library:         "Library",
	Resource:        "Resource",
	VariablesImport: "Variables",
	Documentation:   "Documentation",
	Metadata:        "Metadata",
	SuiteSetup:      "Suite Setup",
	SuiteTeardown:   "Suite Teardown",
	TestSetup:       "Test Setup",
	TestTeardown:    "Test Teardown",
	ForceTags:       "Force Tags",
	DefaultTags:     "Default Tags",
	TestTemplate:    "Test Template",
	TestTimeout:     "Test Timeout",
	Tags:            "Tags",
	Setup:           "Setup",
	Teardown:        "Teardown",
	Template:        "Template",
	Timeout:         "Timeout",
	Arguments:       "Arguments",
	Return:          "Return",
}

func (k SettingKind) String() string {
	if name, ok := settingNames[k]; ok {
		return name
	}
	return "Unknown"
}

// SingleValued kinds bind only their first declaration; later ones become
// duplicates of it.
func (k SettingKind) SingleValued() bool {
	switch k {
	case Library, Resource, VariablesImport, Metadata:
		return false
	}
	return true
}

// Duplicate is a later declaration of an already bound single-valued
// setting. Its declaration token carries a duplication marker tag.
type Duplicate struct {
	Declaration *token.Token
	Values      []*token.Token
	Comment     []*token.Token
}

// Setting is one bound setting declaration with its values.
type Setting struct {
	Kind        SettingKind
	Declaration *token.Token
	Values      []*token.Token
	Comment     []*token.Token
	Duplicates  []*Duplicate
}

func (s *Setting) valuesOf(typ token.Type) []*token.Token {
	var out []*token.Token
	for _, v := range s.Values {
		if v.Type() == typ {
			out = append(out, v)
		}
	}
	return out
}

func (s *Setting) firstOf(typ token.Type) *token.Token {
	for _, v := range s.Values {
		if v.Type() == typ {
			return v
		}
	}
	return nil
}

// KeywordName is the fixture or template keyword.
func (s *Setting) KeywordName() *token.Token { return s.firstOf(token.SettingKeywordName) }

// Arguments returns keyword arguments for fixtures, argument names for
// [Arguments], and import arguments for Library, Resource and Variables.
func (s *Setting) Arguments() []*token.Token {
	switch s.Kind {
	case Library:
		return s.valuesOf(token.SettingLibraryArgument)
	case Resource, VariablesImport:
		return s.valuesOf(token.SettingFileArgument)
	case Arguments:
		return s.valuesOf(token.SettingArgumentName)
	}
	return s.valuesOf(token.SettingKeywordArgument)
}

func (s *Setting) Tags() []*token.Token { return s.valuesOf(token.SettingTagName) }

func (s *Setting) TimeoutValue() *token.Token { return s.firstOf(token.SettingTimeoutValue) }

// MessageArguments are the cells after a timeout value.
func (s *Setting) MessageArguments() []*token.Token { return s.valuesOf(token.SettingTimeoutMessage) }

func (s *Setting) LibraryName() *token.Token { return s.firstOf(token.SettingLibraryName) }

// AliasMarker is the "WITH NAME" cell of a library import, if any.
func (s *Setting) AliasMarker() *token.Token { return s.firstOf(token.SettingLibraryAliasMarker) }

func (s *Setting) Alias() *token.Token { return s.firstOf(token.SettingLibraryAliasValue) }

func (s *Setting) FileName() *token.Token { return s.firstOf(token.SettingFileName) }

// MetadataKey is nil for the legacy "Meta: key" form, where the key sits in
// the declaration cell itself.
func (s *Setting) MetadataKey() *token.Token { return s.firstOf(token.SettingMetadataKey) }

// InlineMetadataKey returns the key of a "Meta: key" declaration.
func (s *Setting) InlineMetadataKey() (string, bool) {
	if s.Kind != Metadata || s.Declaration == nil {
		return "", false
	}
	text := s.Declaration.Text
	i := strings.IndexByte(text, ':')
	if i < 0 || !strings.EqualFold(strings.TrimSpace(text[:i]), "meta") {
		return "", false
	}
	key := strings.TrimSpace(text[i+1:])
	return key, key != ""
}

func (s *Setting) Text() []*token.Token { return s.valuesOf(token.SettingDocumentationText) }

func (s *Setting) ReturnValues() []*token.Token { return s.valuesOf(token.SettingReturnValue) }

// Occurrences is 1 plus the number of duplicates.
func (s *Setting) Occurrences() int {
	return 1 + len(s.Duplicates)
}

// UnknownSetting collects the cells following an unrecognized setting name.
type UnknownSetting struct {
	Declaration *token.Token
	Trash       []*token.Token
}

func (u *UnknownSetting) AddTrash(t *token.Token) {
	u.Trash = append(u.Trash, t)
}
