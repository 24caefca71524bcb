package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/rfl/internal/lexer"
	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/token"
	"github.com/chriserin/rfl/internal/version"
)

var (
	rf29 = version.New(2, 9)
	rf31 = version.New(3, 1)
)

func parse(t *testing.T, src string, v version.Version) *model.File {
	t.Helper()
	f, err := Parse("suite.robot", []byte(src), Options{Version: v})
	require.NoError(t, err)
	return f
}

func texts(toks []*token.Token) []string {
	var out []string
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out
}

func countDuplicationMarkers(f *model.File) int {
	n := 0
	for _, l := range f.Lines {
		for _, t := range l.Tokens {
			for _, typ := range t.Types {
				if typ.IsDuplication() {
					n++
				}
			}
		}
	}
	return n
}

func TestParse_DuplicatedTestCaseTags(t *testing.T) {
	f := parse(t, `*** Test Cases ***
My Test
    [Tags]    a    b
    [Tags]    c
    Log    hello
`, rf31)

	require.Len(t, f.TestCaseTable.Entries, 1)
	e := f.TestCaseTable.Entries[0]
	assert.Equal(t, "My Test", e.Name.Text)
	assert.Equal(t, token.TestCaseName, e.Name.Type())

	require.Len(t, e.Settings, 1)
	tags := e.Setting(model.Tags)
	require.NotNil(t, tags)
	assert.Equal(t, []string{"a", "b"}, texts(tags.Tags()))
	assert.Equal(t, 3, tags.Declaration.Line)

	require.Len(t, tags.Duplicates, 1)
	dup := tags.Duplicates[0]
	assert.Equal(t, token.TestCaseSettingNameDuplication, dup.Declaration.Type())
	assert.True(t, dup.Declaration.Is(token.TestCaseSettingTags))
	assert.Equal(t, []string{"c"}, texts(dup.Values))

	require.Len(t, e.Rows, 1)
	assert.Equal(t, "Log", e.Rows[0].Action.Text)
	assert.Equal(t, []string{"hello"}, texts(e.Rows[0].Arguments))
}

func TestParse_NDuplicatesGiveNMinusOneMarkers(t *testing.T) {
	for n := 2; n <= 5; n++ {
		var b strings.Builder
		b.WriteString("*** Keywords ***\nMy Keyword\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "    [Timeout]    %d s\n", i+1)
		}
		b.WriteString("    No Operation\n")

		f := parse(t, b.String(), rf31)
		kw := f.KeywordTable.Entries[0]
		timeout := kw.Setting(model.Timeout)
		require.NotNil(t, timeout)
		assert.Equal(t, "1 s", timeout.TimeoutValue().Text)
		assert.Len(t, timeout.Duplicates, n-1)
		assert.Equal(t, n, timeout.Occurrences())
		assert.Equal(t, n-1, countDuplicationMarkers(f), "n=%d", n)
	}
}

func TestParse_OldVersionInsertsMarkerAfterDeclaration(t *testing.T) {
	src := `*** Settings ***
Suite Setup    Open Browser
Suite Setup    Close Browser
`
	old := parse(t, src, rf29)
	setup := old.SettingTable.First(model.SuiteSetup)
	require.NotNil(t, setup)
	assert.Equal(t, "Open Browser", setup.KeywordName().Text)
	require.Len(t, setup.Duplicates, 1)
	decl := setup.Duplicates[0].Declaration
	assert.Equal(t, []token.Type{token.SettingSuiteSetupDeclaration, token.SettingNameDuplication}, decl.Types)

	current := parse(t, src, rf31)
	decl = current.SettingTable.First(model.SuiteSetup).Duplicates[0].Declaration
	assert.Equal(t, []token.Type{token.SettingNameDuplication, token.SettingSuiteSetupDeclaration}, decl.Types)
}

func TestParse_UnknownSettingCollectsTrash(t *testing.T) {
	f := parse(t, `*** Settings ***
Foo Bar    x    y
Library    Collections
`, rf31)

	st := f.SettingTable
	require.Len(t, st.Unknown, 1)
	bucket := st.Unknown[0]
	assert.Equal(t, "Foo Bar", bucket.Declaration.Text)
	assert.Equal(t, token.SettingUnknownDeclaration, bucket.Declaration.Type())
	assert.Equal(t, []string{"x", "y"}, texts(bucket.Trash))
	for _, tr := range bucket.Trash {
		assert.Equal(t, token.SettingUnknownArgument, tr.Type())
	}

	lib := st.First(model.Library)
	require.NotNil(t, lib)
	assert.Equal(t, "Collections", lib.LibraryName().Text)
}

func TestParse_RecoversAfterUnknownLocalSetting(t *testing.T) {
	f := parse(t, `*** Test Cases ***
Case
    [Bogus]    1    2
    [Tags]    smoke
    Log    ok
`, rf31)

	e := f.TestCaseTable.Entries[0]
	require.Len(t, e.Unknown, 1)
	assert.Equal(t, token.TestCaseSettingUnknownDeclaration, e.Unknown[0].Declaration.Type())
	assert.Equal(t, []string{"1", "2"}, texts(e.Unknown[0].Trash))
	assert.Equal(t, []string{"smoke"}, texts(e.Setting(model.Tags).Tags()))
	require.Len(t, e.Rows, 1)
}

func TestParse_LibraryImportChain(t *testing.T) {
	f := parse(t, "*** Settings ***\nLibrary    Remote    http://x:8270    WITH NAME    Svc    extra\n", rf31)

	lib := f.SettingTable.First(model.Library)
	require.NotNil(t, lib)
	assert.Equal(t, "Remote", lib.LibraryName().Text)
	assert.Equal(t, []string{"http://x:8270"}, texts(lib.Arguments()))
	require.NotNil(t, lib.AliasMarker())
	assert.Equal(t, "WITH NAME", lib.AliasMarker().Text)
	assert.Equal(t, "Svc", lib.Alias().Text)
	assert.Equal(t, token.SettingLibraryUnwantedArgument, lib.Values[len(lib.Values)-1].Type())
}

func TestParse_LibrariesAreNotDuplicates(t *testing.T) {
	f := parse(t, "*** Settings ***\nLibrary    A\nLibrary    B\n", rf31)
	assert.Len(t, f.SettingTable.All(model.Library), 2)
	assert.Zero(t, countDuplicationMarkers(f))
}

func TestParse_ContinuationExtendsActiveSetting(t *testing.T) {
	f := parse(t, `*** Settings ***
Force Tags    a
...    b
# standalone comment
...    c
Default Tags    d
`, rf31)

	force := f.SettingTable.First(model.ForceTags)
	require.NotNil(t, force)
	assert.Equal(t, []string{"a", "b", "c"}, texts(force.Tags()))
	assert.Equal(t, []string{"d"}, texts(f.SettingTable.First(model.DefaultTags).Tags()))
}

func TestParse_TrailingCommentAttachesToSetting(t *testing.T) {
	f := parse(t, "*** Settings ***\nTest Timeout    1 min    # too slow    really\n", rf31)

	timeout := f.SettingTable.First(model.TestTimeout)
	require.NotNil(t, timeout)
	assert.Equal(t, "1 min", timeout.TimeoutValue().Text)
	assert.Empty(t, timeout.MessageArguments())
	require.Len(t, timeout.Comment, 2)
	assert.Equal(t, token.StartHashComment, timeout.Comment[0].Type())
	assert.Equal(t, token.CommentContinue, timeout.Comment[1].Type())
}

func TestParse_MetadataForms(t *testing.T) {
	f := parse(t, "*** Settings ***\nMetadata    Version    1.0\nMeta: Owner    QA team\n", rf29)

	all := f.SettingTable.All(model.Metadata)
	require.Len(t, all, 2)
	assert.Equal(t, "Version", all[0].MetadataKey().Text)
	assert.Nil(t, all[1].MetadataKey())
	key, ok := all[1].InlineMetadataKey()
	assert.True(t, ok)
	assert.Equal(t, "Owner", key)
	assert.Equal(t, token.SettingMetadataValue, all[1].Values[0].Type())
}

func TestParse_Variables(t *testing.T) {
	f := parse(t, `*** Variables ***
${NAME}    Robot
@{ITEMS}    a    b
...    c
&{MAP}    k=v
plain    value
`, rf31)

	vars := f.VariableTable.Variables
	require.Len(t, vars, 4)
	assert.Equal(t, model.Scalar, vars[0].Kind)
	assert.Equal(t, model.List, vars[1].Kind)
	assert.Equal(t, []string{"a", "b", "c"}, texts(vars[1].Values))
	assert.Equal(t, model.Dictionary, vars[2].Kind)
	assert.Equal(t, model.UnknownVariable, vars[3].Kind)
	assert.Equal(t, token.VariablesUnknownDeclaration, vars[3].Declaration.Type())
}

func TestParse_EntryBoundaries(t *testing.T) {
	f := parse(t, `*** Test Cases ***
First
    Log    a

    Log    b
Second
    No Operation
`, rf31)

	entries := f.TestCaseTable.Entries
	require.Len(t, entries, 2)
	assert.Len(t, entries[0].Rows, 2)
	assert.Equal(t, 2, entries[0].BeginLine)
	assert.Equal(t, 5, entries[0].EndLine)
	assert.Equal(t, 6, entries[1].BeginLine)
	assert.Equal(t, 7, entries[1].EndLine)
}

func TestParse_SectionsAndHeaders(t *testing.T) {
	f := parse(t, `*** Settings ***
Library    A
*** Comments ***
anything    goes here
*** Keywords ***    Column
Kw
    No Operation
`, rf31)

	require.Len(t, f.Sections, 3)
	assert.Equal(t, model.SettingsTable, f.Sections[0].Kind)
	assert.Equal(t, 1, f.Sections[0].BeginLine)
	assert.Equal(t, 2, f.Sections[0].EndLine)
	assert.Equal(t, model.UnknownTable, f.Sections[1].Kind)
	assert.Equal(t, model.KeywordsTable, f.Sections[2].Kind)
	assert.Equal(t, 7, f.Sections[2].EndLine)

	require.Len(t, f.KeywordTable.Headers, 1)
	assert.Equal(t, []string{"Column"}, texts(f.KeywordTable.Headers[0].Columns))
	assert.Len(t, f.KeywordTable.Entries, 1)
	assert.Empty(t, f.TestCaseTable.Entries)
}

func TestParse_PipeFormat(t *testing.T) {
	f := parse(t, `| *** Test Cases *** |
| Case  | Log | hi |
|       | [Tags] | t1 |
`, rf31)

	require.Len(t, f.TestCaseTable.Entries, 1)
	e := f.TestCaseTable.Entries[0]
	assert.Equal(t, "Case", e.Name.Text)
	require.Len(t, e.Rows, 1)
	assert.Equal(t, "Log", e.Rows[0].Action.Text)
	assert.Equal(t, []string{"t1"}, texts(e.Setting(model.Tags).Tags()))
}

func TestParse_RoundTripsSource(t *testing.T) {
	src := "*** Settings ***\r\nLibrary\tOperatingSystem\r\n\r\n| *** Test Cases *** |\n| Case | Log | x  y |\n" +
		"*** Keywords ***\nKw    [Arguments]    ${a}    # note\n    ...    ${b}\n   \nno newline at end"
	f := parse(t, src, rf31)

	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.Raw())
	}
	assert.Equal(t, src, b.String())

	for _, l := range f.Lines {
		for _, tok := range l.Tokens {
			assert.Equal(t, src[tok.Offset:tok.End()], tok.Raw)
			assert.NotEmpty(t, tok.Types)
		}
	}
}

func TestParse_ConcurrentParsesShareNothing(t *testing.T) {
	a := "*** Settings ***\nTest Timeout    1 min\nForce Tags    a\n"
	b := "*** Test Cases ***\nCase\n    [Timeout]    2 min\n    Log    x\n"

	wantA := parse(t, a, rf31)
	wantB := parse(t, b, rf31)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src, want := a, wantA
			if i%2 == 1 {
				src, want = b, wantB
			}
			got, err := Parse("f.robot", []byte(src), Options{Version: rf31})
			if err != nil {
				errs <- err
				return
			}
			if !sameTypes(want, got) {
				errs <- fmt.Errorf("parse %d differs from sequential parse", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func sameTypes(a, b *model.File) bool {
	if len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		ta, tb := a.Lines[i].Tokens, b.Lines[i].Tokens
		if len(ta) != len(tb) {
			return false
		}
		for j := range ta {
			if fmt.Sprint(ta[j].Types) != fmt.Sprint(tb[j].Types) {
				return false
			}
		}
	}
	return true
}

func TestParse_TrashWithoutBucketIsInternalError(t *testing.T) {
	p := &fileParser{
		file:   model.NewFile("broken.robot"),
		stack:  NewStack(),
		log:    slog.New(slog.DiscardHandler),
		source: lexer.Line{Number: 4},
	}
	p.stack.Push(StateSettingTable)
	p.stack.Push(StateSettingUnknown)

	err := mapUnknownTrash(p, token.New("x", token.Unknown, 0, 4, 1))
	var ie *InternalError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "broken.robot", ie.File)
	assert.Equal(t, 4, ie.Line)
	assert.Equal(t, StateSettingUnknown, ie.State)
	assert.Contains(t, err.Error(), "broken.robot:4")
}

func TestParse_LocalTrashWithoutEntryIsInternalError(t *testing.T) {
	p := &fileParser{file: model.NewFile("k.robot"), stack: NewStack(), log: slog.New(slog.DiscardHandler)}
	p.stack.Push(StateKeywordTable)
	p.stack.Push(StateKeywordSettingUnknown)

	err := mapLocalTrash(p, token.New("x", token.Unknown, 0, 1, 1))
	var ie *InternalError
	require.ErrorAs(t, err, &ie)
}

func TestMappersFor_VersionVariantsAreExclusive(t *testing.T) {
	for _, v := range []version.Version{version.New(2, 5), rf29, version.New(3, 0), rf31, version.New(4, 0)} {
		seen := map[string]bool{}
		for _, m := range mappersFor(v) {
			base := strings.TrimSuffix(m.name, " (old)")
			assert.False(t, seen[base], "%s has two %q mappers", v, base)
			seen[base] = true
		}
		assert.True(t, seen["setting declaration"])
		assert.True(t, seen["local setting declaration"])
	}
}

func TestStack_PopNeverRemovesSentinel(t *testing.T) {
	s := NewStack()
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackUnderflow)
	assert.Equal(t, StateStart, s.Top())

	s.Push(StateSettingTable)
	s.Push(StateSettingForceTags)
	require.NoError(t, s.PopTo(StateSettingTable))
	assert.Equal(t, 2, s.Depth())

	assert.ErrorIs(t, s.PopTo(StateKeywordRow), ErrStackUnderflow)
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "inside test-case tags", StateTestCaseSettingTags.String())
}

func FuzzParse(f *testing.F) {
	f.Add("*** Settings ***\nFoo    x\n...    y\n")
	f.Add("*** Test Cases ***\nT\n    [Bogus]    a\n    ...    b\n\n    [Tags]    x\n    [Tags]    y\n")
	f.Add("| *** Keywords *** |\n| K | [Arguments] | ${a} |\n|   | ... | ${b} |\n")
	f.Add("    ...    orphan\n*** Variables ***\n...\n${x}\n")
	f.Fuzz(func(t *testing.T, src string) {
		for _, v := range []version.Version{rf29, rf31} {
			file, err := Parse("fuzz.robot", []byte(src), Options{Version: v})
			require.NoError(t, err)
			var b strings.Builder
			for _, l := range file.Lines {
				b.WriteString(l.Raw())
			}
			require.Equal(t, src, b.String())
		}
	})
}
