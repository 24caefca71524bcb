package token

import "strings"

// Type is a classification tag attached to a token. A token carries an
// ordered list of them, most specific first.
type Type int

const (
	Unknown Type = iota
	Separator
	EndOfLine
	PreviousLineContinue
	StartHashComment
	CommentContinue

	// Table headers
	SettingsTableHeader
	VariablesTableHeader
	TestCasesTableHeader
	KeywordsTableHeader
	UserOwnTableHeader
	TableHeaderColumn

	// Settings table declarations
	SettingLibraryDeclaration
	SettingLibraryAliasMarker
	SettingResourceDeclaration
	SettingVariablesDeclaration
	SettingDocumentationDeclaration
	SettingMetadataDeclaration
	SettingSuiteSetupDeclaration
	SettingSuiteTeardownDeclaration
	SettingTestSetupDeclaration
	SettingTestTeardownDeclaration
	SettingForceTagsDeclaration
	SettingDefaultTagsDeclaration
	SettingTestTemplateDeclaration
	SettingTestTimeoutDeclaration
	SettingUnknownDeclaration
	SettingNameDuplication

	// Setting values, shared by the settings table and local settings
	SettingLibraryName
	SettingLibraryArgument
	SettingLibraryAliasValue
	SettingLibraryUnwantedArgument
	SettingFileName
	SettingFileArgument
	SettingDocumentationText
	SettingMetadataKey
	SettingMetadataValue
	SettingKeywordName
	SettingKeywordArgument
	SettingTagName
	SettingTimeoutValue
	SettingTimeoutMessage
	SettingArgumentName
	SettingReturnValue
	SettingUnknownArgument

	// Variables table
	VariablesScalarDeclaration
	VariablesListDeclaration
	VariablesDictionaryDeclaration
	VariablesUnknownDeclaration
	VariablesValue

	// Test cases table
	TestCaseName
	TestCaseSettingDocumentation
	TestCaseSettingTags
	TestCaseSettingSetup
	TestCaseSettingTeardown
	TestCaseSettingTemplate
	TestCaseSettingTimeout
	TestCaseSettingUnknownDeclaration
	TestCaseSettingNameDuplication
	TestCaseAction
	TestCaseActionArgument

	// Keywords table
	KeywordName
	KeywordSettingDocumentation
	KeywordSettingTags
	KeywordSettingArguments
	KeywordSettingReturn
	KeywordSettingTeardown
	KeywordSettingTimeout
	KeywordSettingUnknownDeclaration
	KeywordSettingNameDuplication
	KeywordAction
	KeywordActionArgument
)

var typeNames = map[Type]string{
	Unknown:              "UNKNOWN",
	Separator:            "SEPARATOR",
	EndOfLine:            "EOL",
	PreviousLineContinue: "PREVIOUS_LINE_CONTINUE",
	StartHashComment:     "START_HASH_COMMENT",
	CommentContinue:      "COMMENT_CONTINUE",

	SettingsTableHeader:  "SETTINGS_TABLE_HEADER",
	VariablesTableHeader: "VARIABLES_TABLE_HEADER",
	TestCasesTableHeader: "TEST_CASES_TABLE_HEADER",
	KeywordsTableHeader:  "KEYWORDS_TABLE_HEADER",
	UserOwnTableHeader:   "USER_OWN_TABLE_HEADER",
	TableHeaderColumn:    "TABLE_HEADER_COLUMN",

	SettingLibraryDeclaration:       "SETTING_LIBRARY_DECLARATION",
	SettingLibraryAliasMarker:       "SETTING_LIBRARY_ALIAS",
	SettingResourceDeclaration:      "SETTING_RESOURCE_DECLARATION",
	SettingVariablesDeclaration:     "SETTING_VARIABLES_DECLARATION",
	SettingDocumentationDeclaration: "SETTING_DOCUMENTATION_DECLARATION",
	SettingMetadataDeclaration:      "SETTING_METADATA_DECLARATION",
	SettingSuiteSetupDeclaration:    "SETTING_SUITE_SETUP_DECLARATION",
	SettingSuiteTeardownDeclaration: "SETTING_SUITE_TEARDOWN_DECLARATION",
	SettingTestSetupDeclaration:     "SETTING_TEST_SETUP_DECLARATION",
	SettingTestTeardownDeclaration:  "SETTING_TEST_TEARDOWN_DECLARATION",
	SettingForceTagsDeclaration:     "SETTING_FORCE_TAGS_DECLARATION",
	SettingDefaultTagsDeclaration:   "SETTING_DEFAULT_TAGS_DECLARATION",
	SettingTestTemplateDeclaration:  "SETTING_TEST_TEMPLATE_DECLARATION",
	SettingTestTimeoutDeclaration:   "SETTING_TEST_TIMEOUT_DECLARATION",
	SettingUnknownDeclaration:       "SETTING_UNKNOWN_DECLARATION",
	SettingNameDuplication:          "SETTING_NAME_DUPLICATION",

	SettingLibraryName:             "SETTING_LIBRARY_NAME",
	SettingLibraryArgument:         "SETTING_LIBRARY_ARGUMENT",
	SettingLibraryAliasValue:       "SETTING_LIBRARY_ALIAS_VALUE",
	SettingLibraryUnwantedArgument: "SETTING_LIBRARY_UNWANTED_ARGUMENT",
	SettingFileName:                "SETTING_FILE_NAME",
	SettingFileArgument:            "SETTING_FILE_ARGUMENT",
	SettingDocumentationText:       "SETTING_DOCUMENTATION_TEXT",
	SettingMetadataKey:             "SETTING_METADATA_KEY",
	SettingMetadataValue:           "SETTING_METADATA_VALUE",
	SettingKeywordName:             "SETTING_KEYWORD_NAME",
	SettingKeywordArgument:         "SETTING_KEYWORD_ARGUMENT",
	SettingTagName:                 "SETTING_TAG_NAME",
	SettingTimeoutValue:            "SETTING_TIMEOUT_VALUE",
	SettingTimeoutMessage:          "SETTING_TIMEOUT_MESSAGE",
	SettingArgumentName:            "SETTING_ARGUMENT_NAME",
	SettingReturnValue:             "SETTING_RETURN_VALUE",
	SettingUnknownArgument:         "SETTING_UNKNOWN_ARGUMENT",

	VariablesScalarDeclaration:     "VARIABLES_SCALAR_DECLARATION",
	VariablesListDeclaration:       "VARIABLES_LIST_DECLARATION",
	VariablesDictionaryDeclaration: "VARIABLES_DICTIONARY_DECLARATION",
	VariablesUnknownDeclaration:    "VARIABLES_UNKNOWN_DECLARATION",
	VariablesValue:                 "VARIABLES_VALUE",

	TestCaseName:                      "TEST_CASE_NAME",
	TestCaseSettingDocumentation:      "TEST_CASE_SETTING_DOCUMENTATION",
	TestCaseSettingTags:               "TEST_CASE_SETTING_TAGS_DECLARATION",
	TestCaseSettingSetup:              "TEST_CASE_SETTING_SETUP",
	TestCaseSettingTeardown:           "TEST_CASE_SETTING_TEARDOWN",
	TestCaseSettingTemplate:           "TEST_CASE_SETTING_TEMPLATE",
	TestCaseSettingTimeout:            "TEST_CASE_SETTING_TIMEOUT",
	TestCaseSettingUnknownDeclaration: "TEST_CASE_SETTING_UNKNOWN_DECLARATION",
	TestCaseSettingNameDuplication:    "TEST_CASE_SETTING_NAME_DUPLICATION",
	TestCaseAction:                    "TEST_CASE_ACTION_NAME",
	TestCaseActionArgument:            "TEST_CASE_ACTION_ARGUMENT",

	KeywordName:                      "KEYWORD_NAME",
	KeywordSettingDocumentation:      "KEYWORD_SETTING_DOCUMENTATION",
	KeywordSettingTags:               "KEYWORD_SETTING_TAGS",
	KeywordSettingArguments:          "KEYWORD_SETTING_ARGUMENTS",
	KeywordSettingReturn:             "KEYWORD_SETTING_RETURN",
	KeywordSettingTeardown:           "KEYWORD_SETTING_TEARDOWN",
	KeywordSettingTimeout:            "KEYWORD_SETTING_TIMEOUT",
	KeywordSettingUnknownDeclaration: "KEYWORD_SETTING_UNKNOWN_DECLARATION",
	KeywordSettingNameDuplication:    "KEYWORD_SETTING_NAME_DUPLICATION",
	KeywordAction:                    "KEYWORD_ACTION_NAME",
	KeywordActionArgument:            "KEYWORD_ACTION_ARGUMENT",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN_TYPE"
}

// IsHeader reports whether t starts a table section.
func (t Type) IsHeader() bool {
	switch t {
	case SettingsTableHeader, VariablesTableHeader, TestCasesTableHeader, KeywordsTableHeader, UserOwnTableHeader:
		return true
	}
	return false
}

// IsDuplication reports whether t marks a repeated setting declaration.
func (t Type) IsDuplication() bool {
	return t == SettingNameDuplication || t == TestCaseSettingNameDuplication || t == KeywordSettingNameDuplication
}

// Token is a classified span of one source line.
type Token struct {
	Raw    string
	Text   string
	Types  []Type
	Offset int // 0-based byte offset into the file
	Line   int // 1-based
	Column int // 1-based byte column
}

// New builds a token whose Text is the normalized form of raw.
func New(raw string, typ Type, offset, line, column int) *Token {
	return &Token{
		Raw:    raw,
		Text:   Normalize(raw),
		Types:  []Type{typ},
		Offset: offset,
		Line:   line,
		Column: column,
	}
}

// Normalize collapses whitespace runs to a single space.
func Normalize(raw string) string {
	if !strings.ContainsAny(raw, " \t") {
		return raw
	}
	return strings.Join(strings.Fields(raw), " ")
}

// Type returns the most specific tag.
func (t *Token) Type() Type {
	if len(t.Types) == 0 {
		return Unknown
	}
	return t.Types[0]
}

// Is reports whether typ appears anywhere in the tag list.
func (t *Token) Is(typ Type) bool {
	for _, tt := range t.Types {
		if tt == typ {
			return true
		}
	}
	return false
}

// Prepend makes typ the most specific tag.
func (t *Token) Prepend(typ Type) {
	t.Types = append([]Type{typ}, t.Types...)
}

// InsertAt places typ at index i, clamped to the list bounds.
func (t *Token) InsertAt(i int, typ Type) {
	if i < 0 {
		i = 0
	}
	if i > len(t.Types) {
		i = len(t.Types)
	}
	t.Types = append(t.Types, Unknown)
	copy(t.Types[i+1:], t.Types[i:])
	t.Types[i] = typ
}

// Len is the raw length in bytes.
func (t *Token) Len() int {
	return len(t.Raw)
}

// End is the offset just past the token.
func (t *Token) End() int {
	return t.Offset + len(t.Raw)
}
