package recognizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/rfl/internal/token"
)

func TestRecognize_SettingWords(t *testing.T) {
	s := Default.NewSet()
	cases := map[string]token.Type{
		"Test Timeout":   token.SettingTestTimeoutDeclaration,
		"test   timeout": token.SettingTestTimeoutDeclaration,
		"TestTimeout":    token.SettingTestTimeoutDeclaration,
		"Library:":       token.SettingLibraryDeclaration,
		"Suite Setup":    token.SettingSuiteSetupDeclaration,
		"WITH NAME":      token.SettingLibraryAliasMarker,
		"with name":      token.SettingLibraryAliasMarker,
		"Meta: Version":  token.SettingMetadataDeclaration,
		"Document":       token.SettingDocumentationDeclaration,
	}
	for cell, want := range cases {
		assert.Equal(t, want, s.Recognize(ContextSettings, 1, cell), cell)
	}
}

func TestRecognize_WholeCellOnly(t *testing.T) {
	s := Default.NewSet()
	assert.Equal(t, token.Unknown, s.Recognize(ContextSettings, 1, "Test Timeout Extra"))
	assert.Equal(t, token.Unknown, s.Recognize(ContextSettings, 1, "${Test Timeout}"))
	assert.Equal(t, token.Unknown, s.Recognize(ContextSettings, 1, "My Library"))
}

func TestRecognize_Headers(t *testing.T) {
	s := Default.NewSet()
	assert.Equal(t, token.TestCasesTableHeader, s.Recognize(ContextNone, 1, "*** Test Cases ***"))
	assert.Equal(t, token.TestCasesTableHeader, s.Recognize(ContextKeywords, 1, "*testcase"))
	assert.Equal(t, token.SettingsTableHeader, s.Recognize(ContextNone, 1, "*** Metadata ***"))
	assert.Equal(t, token.KeywordsTableHeader, s.Recognize(ContextSettings, 1, "***User Keywords***"))
	assert.Equal(t, token.UserOwnTableHeader, s.Recognize(ContextNone, 1, "*** Comments ***"))
	assert.Equal(t, "Test Cases", HeaderName("***  Test   Cases ***"))
}

func TestRecognize_LocalSettingsAreBracketed(t *testing.T) {
	s := Default.NewSet()
	assert.Equal(t, token.TestCaseSettingTags, s.Recognize(ContextTestCases, 1, "[Tags]"))
	assert.Equal(t, token.TestCaseSettingTags, s.Recognize(ContextTestCases, 1, "[ tags ]"))
	assert.Equal(t, token.Unknown, s.Recognize(ContextTestCases, 1, "Tags"))
	assert.Equal(t, token.KeywordSettingArguments, s.Recognize(ContextKeywords, 1, "[Arguments]"))
	assert.Equal(t, token.Unknown, s.Recognize(ContextTestCases, 1, "[Arguments]"))
}

func TestRecognize_Variables(t *testing.T) {
	s := Default.NewSet()
	assert.Equal(t, token.VariablesScalarDeclaration, s.Recognize(ContextVariables, 1, "${name} ="))
	assert.Equal(t, token.VariablesListDeclaration, s.Recognize(ContextVariables, 1, "@{items}"))
	assert.Equal(t, token.VariablesDictionaryDeclaration, s.Recognize(ContextVariables, 1, "&{map}="))
	assert.Equal(t, token.Unknown, s.Recognize(ContextVariables, 1, "name"))
}

func TestRecognize_Generic(t *testing.T) {
	s := Default.NewSet()
	assert.Equal(t, token.StartHashComment, s.Recognize(ContextTestCases, 1, "# note"))
	assert.Equal(t, token.PreviousLineContinue, s.Recognize(ContextSettings, 1, "..."))
	assert.Equal(t, token.Unknown, s.Recognize(ContextSettings, 1, "...."))
}

func TestNewSet_IndependentInstances(t *testing.T) {
	a := Default.NewSet()
	b := Default.NewSet()
	ra := a.Recognizers(ContextSettings)
	rb := b.Recognizers(ContextSettings)
	require.Equal(t, len(ra), len(rb))
	for i := range ra {
		if _, ok := ra[i].(anyHeader); ok {
			continue
		}
		assert.NotSame(t, ra[i], rb[i])
	}
}

func TestNewSet_MatchBufferNotShared(t *testing.T) {
	a := Default.NewSet()
	b := Default.NewSet()

	a.Recognize(ContextSettings, 7, "Test Timeout")
	wa := findWords(a, token.SettingTestTimeoutDeclaration)
	wb := findWords(b, token.SettingTestTimeoutDeclaration)
	require.NotNil(t, wa)
	require.NotNil(t, wb)
	assert.Equal(t, 7, wa.lastLine)
	assert.Equal(t, []string{"test", "timeout"}, wa.lastWords)
	assert.Equal(t, 0, wb.lastLine)
	assert.Empty(t, wb.lastWords)
}

func TestNewSet_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]token.Type, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := Default.NewSet()
			cell := "Test Timeout"
			if i%2 == 1 {
				cell = "Force Tags"
			}
			for j := 0; j < 100; j++ {
				results[i] = s.Recognize(ContextSettings, j, cell)
			}
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if i%2 == 1 {
			assert.Equal(t, token.SettingForceTagsDeclaration, r)
		} else {
			assert.Equal(t, token.SettingTestTimeoutDeclaration, r)
		}
	}
}

func findWords(s *Set, typ token.Type) *wordRecognizer {
	for _, r := range s.Recognizers(ContextSettings) {
		if w, ok := r.(*wordRecognizer); ok && w.typ == typ {
			return w
		}
	}
	return nil
}
