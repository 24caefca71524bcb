package recognizer

import "github.com/chriserin/rfl/internal/token"

// Context selects the recognizer list for the table being parsed.
type Context int

const (
	ContextNone Context = iota
	ContextSettings
	ContextVariables
	ContextTestCases
	ContextKeywords
)

var contextNames = map[Context]string{
	ContextNone:      "none",
	ContextSettings:  "settings",
	ContextVariables: "variables",
	ContextTestCases: "test cases",
	ContextKeywords:  "keywords",
}

func (c Context) String() string {
	if name, ok := contextNames[c]; ok {
		return name
	}
	return "unknown"
}

// Template is the immutable, shareable recognizer configuration. It is only
// read after construction, so many parses may call NewSet concurrently.
type Template struct {
	byContext map[Context][]Recognizer
}

// Set is a private working copy of a Template for a single parse.
type Set struct {
	byContext map[Context][]Recognizer
}

// NewTemplate builds a template from per-context recognizer lists. Order
// within a list is priority order.
func NewTemplate(lists map[Context][]Recognizer) *Template {
	t := &Template{byContext: make(map[Context][]Recognizer, len(lists))}
	for ctx, recs := range lists {
		t.byContext[ctx] = append([]Recognizer(nil), recs...)
	}
	return t
}

// NewSet returns freshly cloned recognizers. No instance is shared with the
// template or with any other Set.
func (t *Template) NewSet() *Set {
	s := &Set{byContext: make(map[Context][]Recognizer, len(t.byContext))}
	for ctx, recs := range t.byContext {
		clones := make([]Recognizer, len(recs))
		for i, r := range recs {
			clones[i] = r.Clone()
		}
		s.byContext[ctx] = clones
	}
	return s
}

// Recognizers returns the working list for ctx.
func (s *Set) Recognizers(ctx Context) []Recognizer {
	return s.byContext[ctx]
}

// Recognize runs ctx's recognizers in order; the first match wins.
func (s *Set) Recognize(ctx Context, line int, cell string) token.Type {
	for _, r := range s.byContext[ctx] {
		if typ, ok := r.Recognize(line, cell); ok {
			return typ
		}
	}
	return token.Unknown
}

func headers() []Recognizer {
	return []Recognizer{
		newHeader(token.SettingsTableHeader, "Setting", "Settings", "Metadata"),
		newHeader(token.VariablesTableHeader, "Variable", "Variables"),
		newHeader(token.TestCasesTableHeader, "Test Case", "Test Cases"),
		newHeader(token.KeywordsTableHeader, "Keyword", "Keywords", "User Keyword", "User Keywords"),
		anyHeader{},
	}
}

func generic() []Recognizer {
	return []Recognizer{
		newPattern(token.StartHashComment, `^\s*#`),
		newPattern(token.PreviousLineContinue, `^\s*\.\.\.\s*$`),
	}
}

func join(lists ...[]Recognizer) []Recognizer {
	var out []Recognizer
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Default is the built-in recognizer template.
var Default = NewTemplate(map[Context][]Recognizer{
	ContextNone: join(headers(), generic()),
	ContextSettings: join(headers(), generic(), []Recognizer{
		newWords(token.SettingLibraryDeclaration, "Library"),
		newWords(token.SettingLibraryAliasMarker, "WITH NAME"),
		newWords(token.SettingVariablesDeclaration, "Variables"),
		newWords(token.SettingResourceDeclaration, "Resource"),
		newWords(token.SettingDocumentationDeclaration, "Documentation", "Document"),
		newWords(token.SettingMetadataDeclaration, "Metadata"),
		newPattern(token.SettingMetadataDeclaration, `(?i)^\s*meta\s*:\s*(\S.*)$`),
		newWords(token.SettingSuiteSetupDeclaration, "Suite Setup", "Suite Precondition"),
		newWords(token.SettingSuiteTeardownDeclaration, "Suite Teardown", "Suite Postcondition"),
		newWords(token.SettingForceTagsDeclaration, "Force Tags"),
		newWords(token.SettingDefaultTagsDeclaration, "Default Tags"),
		newWords(token.SettingTestSetupDeclaration, "Test Setup", "Test Precondition"),
		newWords(token.SettingTestTeardownDeclaration, "Test Teardown", "Test Postcondition"),
		newWords(token.SettingTestTemplateDeclaration, "Test Template"),
		newWords(token.SettingTestTimeoutDeclaration, "Test Timeout"),
	}),
	ContextVariables: join(headers(), generic(), []Recognizer{
		newPattern(token.VariablesScalarDeclaration, `^\$\{.*\}\s*=?$`),
		newPattern(token.VariablesListDeclaration, `^@\{.*\}\s*=?$`),
		newPattern(token.VariablesDictionaryDeclaration, `^&\{.*\}\s*=?$`),
	}),
	ContextTestCases: join(headers(), generic(), []Recognizer{
		newBracketed(token.TestCaseSettingDocumentation, "Documentation", "Document"),
		newBracketed(token.TestCaseSettingTags, "Tags"),
		newBracketed(token.TestCaseSettingSetup, "Setup", "Precondition"),
		newBracketed(token.TestCaseSettingTeardown, "Teardown", "Postcondition"),
		newBracketed(token.TestCaseSettingTemplate, "Template"),
		newBracketed(token.TestCaseSettingTimeout, "Timeout"),
	}),
	ContextKeywords: join(headers(), generic(), []Recognizer{
		newBracketed(token.KeywordSettingDocumentation, "Documentation", "Document"),
		newBracketed(token.KeywordSettingTags, "Tags"),
		newBracketed(token.KeywordSettingArguments, "Arguments"),
		newBracketed(token.KeywordSettingReturn, "Return"),
		newBracketed(token.KeywordSettingTeardown, "Teardown", "Postcondition"),
		newBracketed(token.KeywordSettingTimeout, "Timeout"),
	}),
})
