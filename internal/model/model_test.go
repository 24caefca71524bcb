package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chriserin/rfl/internal/token"
)

func tok(raw string, types ...token.Type) *token.Token {
	t := token.New(raw, types[0], 0, 1, 1)
	t.Types = types
	return t
}

func TestSetting_AccessorsFilterByLeadingTag(t *testing.T) {
	s := &Setting{
		Kind:        Library,
		Declaration: tok("Library", token.SettingLibraryDeclaration),
		Values: []*token.Token{
			tok("Remote", token.SettingLibraryName),
			tok("http://host", token.SettingLibraryArgument),
			tok("WITH NAME", token.SettingLibraryAliasMarker, token.SettingLibraryArgument),
			tok("R", token.SettingLibraryAliasValue),
		},
	}
	assert.Equal(t, "Remote", s.LibraryName().Text)
	assert.Len(t, s.Arguments(), 1)
	assert.Equal(t, "WITH NAME", s.AliasMarker().Text)
	assert.Equal(t, "R", s.Alias().Text)
	assert.Equal(t, 1, s.Occurrences())
}

func TestSetting_TimeoutMessage(t *testing.T) {
	s := &Setting{
		Kind: Timeout,
		Values: []*token.Token{
			tok("1 min", token.SettingTimeoutValue),
			tok("too", token.SettingTimeoutMessage),
			tok("slow", token.SettingTimeoutMessage),
		},
	}
	assert.Equal(t, "1 min", s.TimeoutValue().Text)
	assert.Len(t, s.MessageArguments(), 2)
}

func TestSetting_InlineMetadataKey(t *testing.T) {
	s := &Setting{Kind: Metadata, Declaration: tok("Meta: Version", token.SettingMetadataDeclaration)}
	key, ok := s.InlineMetadataKey()
	assert.True(t, ok)
	assert.Equal(t, "Version", key)

	s.Declaration = tok("Metadata", token.SettingMetadataDeclaration)
	_, ok = s.InlineMetadataKey()
	assert.False(t, ok)
}

func TestSettingKind_SingleValued(t *testing.T) {
	assert.True(t, Tags.SingleValued())
	assert.True(t, SuiteSetup.SingleValued())
	assert.False(t, Library.SingleValued())
	assert.False(t, Metadata.SingleValued())
	assert.Equal(t, "Suite Setup", SuiteSetup.String())
}

func TestVariable_NameStripsEquals(t *testing.T) {
	v := &Variable{Declaration: tok("${x} =", token.VariablesScalarDeclaration)}
	assert.Equal(t, "${x}", v.Name())
}

func TestLine_Raw(t *testing.T) {
	l := &Line{
		Tokens: []*token.Token{tok("  ", token.Separator), tok("Log", token.TestCaseAction)},
		EOL:    tok("\n", token.EndOfLine),
	}
	assert.Equal(t, "  Log\n", l.Raw())
}
