package parser

import (
	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/recognizer"
	"github.com/chriserin/rfl/internal/token"
	"github.com/chriserin/rfl/internal/version"
)

// mapper attaches one token to the document tree. For any reachable state
// and token exactly one enabled mapper, or the fallback, can map it.
type mapper struct {
	name     string
	versions version.Range
	canMap   func(p *fileParser, t *token.Token) bool
	apply    func(p *fileParser, t *token.Token) error
}

// mappers is in priority order. Version variants of one mapper have
// disjoint ranges.
var mappers = []mapper{
	{name: "table header", versions: version.Any(), canMap: canMapHeader, apply: mapHeader},
	{name: "comment continue", versions: version.Any(), canMap: canMapCommentContinue, apply: mapCommentContinue},
	{name: "comment", versions: version.Any(), canMap: canMapComment, apply: mapComment},
	{name: "header column", versions: version.Any(), canMap: inState(StateHeaderColumns), apply: mapHeaderColumn},
	{name: "previous line continue", versions: version.Any(), canMap: canMapContinuation, apply: mapNothing},

	{name: "library name", versions: version.Any(), canMap: inState(StateSettingLibraryImport), apply: mapLibraryName},
	{name: "library alias marker", versions: version.Any(), canMap: canMapAliasMarker, apply: mapAliasMarker},
	{name: "library argument", versions: version.Any(), canMap: inState(StateSettingLibraryNameOrPath, StateSettingLibraryArguments), apply: mapLibraryArgument},
	{name: "library alias", versions: version.Any(), canMap: inState(StateSettingLibraryAlias), apply: mapAliasValue},
	{name: "library unwanted argument", versions: version.Any(), canMap: inState(StateSettingLibraryAliasValue), apply: mapUnwantedArgument},

	{name: "setting declaration", versions: version.AtLeast(version.New(3, 0)), canMap: canMapGlobalDeclaration, apply: mapGlobalDeclaration(0)},
	{name: "setting declaration (old)", versions: version.LessThan(version.New(3, 0)), canMap: canMapGlobalDeclaration, apply: mapGlobalDeclaration(1)},
	{name: "unknown setting", versions: version.Any(), canMap: inState(StateSettingTable), apply: mapUnknownSetting},
	{name: "unknown setting trash", versions: version.Any(), canMap: inState(StateSettingUnknown, StateSettingUnknownTrash), apply: mapUnknownTrash},
	{name: "setting value", versions: version.Any(), canMap: canMapSettingValue, apply: mapSettingValue},

	{name: "variable declaration", versions: version.Any(), canMap: inState(StateVariableTable), apply: mapVariableDeclaration},
	{name: "variable value", versions: version.Any(), canMap: canMapVariableValue, apply: mapVariableValue},

	{name: "entry name", versions: version.Any(), canMap: canMapEntryName, apply: mapEntryName},
	{name: "local setting declaration", versions: version.AtLeast(version.New(3, 0)), canMap: canMapLocalDeclaration, apply: mapLocalDeclaration(0)},
	{name: "local setting declaration (old)", versions: version.LessThan(version.New(3, 0)), canMap: canMapLocalDeclaration, apply: mapLocalDeclaration(1)},
	{name: "local unknown setting", versions: version.Any(), canMap: canMapLocalUnknown, apply: mapLocalUnknown},
	{name: "local unknown setting trash", versions: version.Any(), canMap: canMapLocalTrash, apply: mapLocalTrash},
	{name: "step action", versions: version.Any(), canMap: canMapAction, apply: mapAction},
	{name: "step argument", versions: version.Any(), canMap: canMapActionArgument, apply: mapActionArgument},

	{name: "fallback", versions: version.Any(), canMap: func(*fileParser, *token.Token) bool { return true }, apply: mapFallback},
}

func mappersFor(v version.Version) []mapper {
	var out []mapper
	for _, m := range mappers {
		if m.versions.Contains(v) {
			out = append(out, m)
		}
	}
	return out
}

func inState(states ...State) func(*fileParser, *token.Token) bool {
	return func(p *fileParser, _ *token.Token) bool {
		return p.stack.Is(states...)
	}
}

func mapNothing(*fileParser, *token.Token) error { return nil }

func mapFallback(_ *fileParser, t *token.Token) error {
	if t.Type() != token.Unknown {
		t.Prepend(token.Unknown)
	}
	return nil
}

// Headers and comments

var headerTables = map[token.Type]struct {
	kind model.TableKind
	ctx  recognizer.Context
}{
	token.SettingsTableHeader:  {model.SettingsTable, recognizer.ContextSettings},
	token.VariablesTableHeader: {model.VariablesTable, recognizer.ContextVariables},
	token.TestCasesTableHeader: {model.TestCasesTable, recognizer.ContextTestCases},
	token.KeywordsTableHeader:  {model.KeywordsTable, recognizer.ContextKeywords},
	token.UserOwnTableHeader:   {model.UnknownTable, recognizer.ContextNone},
}

func canMapHeader(p *fileParser, t *token.Token) bool {
	return t.Type().IsHeader() && p.cell == 0 && !p.source.Indented
}

func mapHeader(p *fileParser, t *token.Token) error {
	p.closeEntry()
	p.closeSection(p.source.Number - 1)
	p.clearActive()
	p.stack.Reset()

	target := headerTables[t.Type()]
	h := &model.TableHeader{Declaration: t}
	switch target.kind {
	case model.SettingsTable:
		p.file.SettingTable.Headers = append(p.file.SettingTable.Headers, h)
	case model.VariablesTable:
		p.file.VariableTable.Headers = append(p.file.VariableTable.Headers, h)
	case model.TestCasesTable:
		p.file.TestCaseTable.Headers = append(p.file.TestCaseTable.Headers, h)
	case model.KeywordsTable:
		p.file.KeywordTable.Headers = append(p.file.KeywordTable.Headers, h)
	}
	p.section = &model.Section{Kind: target.kind, Header: h, BeginLine: p.source.Number}
	p.file.Sections = append(p.file.Sections, p.section)

	p.table = target.kind
	p.inTable = true
	p.context = target.ctx
	p.header = h
	p.stack.Push(tableState(target.kind))
	p.stack.Push(StateHeaderColumns)
	return nil
}

func mapHeaderColumn(p *fileParser, t *token.Token) error {
	t.Prepend(token.TableHeaderColumn)
	p.header.Columns = append(p.header.Columns, t)
	return nil
}

func canMapComment(_ *fileParser, t *token.Token) bool {
	return t.Type() == token.StartHashComment
}

func mapComment(p *fileParser, t *token.Token) error {
	p.attachComment(t)
	p.stack.Push(StateComment)
	return nil
}

func canMapCommentContinue(p *fileParser, _ *token.Token) bool {
	return p.stack.Top() == StateComment
}

func mapCommentContinue(p *fileParser, t *token.Token) error {
	t.Prepend(token.CommentContinue)
	p.attachComment(t)
	return nil
}

// attachComment adds a trailing comment to whatever the line is building.
// Comment-only lines attach nowhere.
func (p *fileParser) attachComment(t *token.Token) {
	if p.cell == 0 {
		return
	}
	switch {
	case p.dup != nil:
		p.dup.Comment = append(p.dup.Comment, t)
	case p.setting != nil:
		p.setting.Comment = append(p.setting.Comment, t)
	case p.variable != nil:
		p.variable.Comment = append(p.variable.Comment, t)
	case p.row != nil:
		p.row.Comment = append(p.row.Comment, t)
	}
}

func canMapContinuation(p *fileParser, t *token.Token) bool {
	return t.Type() == token.PreviousLineContinue && p.cell == 0
}

// Library imports

func mapLibraryName(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingLibraryName)
	p.addValue(t)
	return p.advance(StateSettingLibraryNameOrPath)
}

func canMapAliasMarker(p *fileParser, t *token.Token) bool {
	return t.Type() == token.SettingLibraryAliasMarker &&
		p.stack.Is(StateSettingLibraryNameOrPath, StateSettingLibraryArguments)
}

func mapAliasMarker(p *fileParser, t *token.Token) error {
	t.Types = append(t.Types, token.SettingLibraryArgument)
	p.addValue(t)
	return p.advance(StateSettingLibraryAlias)
}

func mapLibraryArgument(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingLibraryArgument)
	p.addValue(t)
	if p.stack.Top() == StateSettingLibraryArguments {
		return nil
	}
	return p.advance(StateSettingLibraryArguments)
}

func mapAliasValue(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingLibraryAliasValue)
	p.addValue(t)
	return p.advance(StateSettingLibraryAliasValue)
}

func mapUnwantedArgument(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingLibraryUnwantedArgument)
	p.addValue(t)
	return nil
}

// Settings table

var globalDeclarations = map[token.Type]model.SettingKind{
	token.SettingLibraryDeclaration:       model.Library,
	token.SettingResourceDeclaration:      model.Resource,
	token.SettingVariablesDeclaration:     model.VariablesImport,
	token.SettingDocumentationDeclaration: model.Documentation,
	token.SettingMetadataDeclaration:      model.Metadata,
	token.SettingSuiteSetupDeclaration:    model.SuiteSetup,
	token.SettingSuiteTeardownDeclaration: model.SuiteTeardown,
	token.SettingTestSetupDeclaration:     model.TestSetup,
	token.SettingTestTeardownDeclaration:  model.TestTeardown,
	token.SettingForceTagsDeclaration:     model.ForceTags,
	token.SettingDefaultTagsDeclaration:   model.DefaultTags,
	token.SettingTestTemplateDeclaration:  model.TestTemplate,
	token.SettingTestTimeoutDeclaration:   model.TestTimeout,
}

func canMapGlobalDeclaration(p *fileParser, t *token.Token) bool {
	if p.stack.Top() != StateSettingTable {
		return false
	}
	_, ok := globalDeclarations[t.Type()]
	return ok
}

// mapGlobalDeclaration binds the first declaration of a single-valued
// setting. Later ones are recorded as duplicates with the marker tag at
// markerAt.
func mapGlobalDeclaration(markerAt int) func(*fileParser, *token.Token) error {
	return func(p *fileParser, t *token.Token) error {
		kind := globalDeclarations[t.Type()]
		table := p.file.SettingTable
		if bound := table.First(kind); bound != nil && kind.SingleValued() {
			p.bindDuplicate(bound, t, token.SettingNameDuplication, markerAt)
		} else {
			p.setting = &model.Setting{Kind: kind, Declaration: t}
			table.Settings = append(table.Settings, p.setting)
		}
		p.stack.Push(globalSettingStates[kind])
		return nil
	}
}

func (p *fileParser) bindDuplicate(bound *model.Setting, t *token.Token, marker token.Type, markerAt int) {
	t.InsertAt(markerAt, marker)
	d := &model.Duplicate{Declaration: t}
	bound.Duplicates = append(bound.Duplicates, d)
	p.setting = bound
	p.dup = d
	p.log.Debug("duplicated setting",
		"setting", bound.Kind.String(),
		"line", t.Line,
		"first_line", bound.Declaration.Line)
}

func mapUnknownSetting(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingUnknownDeclaration)
	table := p.file.SettingTable
	table.Unknown = append(table.Unknown, &model.UnknownSetting{Declaration: t})
	p.stack.Push(StateSettingUnknown)
	p.log.Debug("unknown setting", "name", t.Text, "line", t.Line)
	return nil
}

func mapUnknownTrash(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingUnknownArgument)
	buckets := p.file.SettingTable.Unknown
	if len(buckets) == 0 {
		return p.internal("trash cell with no unknown setting to attach to")
	}
	buckets[len(buckets)-1].AddTrash(t)
	if p.stack.Top() == StateSettingUnknownTrash {
		return nil
	}
	return p.advance(StateSettingUnknownTrash)
}

func canMapSettingValue(p *fileParser, _ *token.Token) bool {
	return p.setting != nil && valueStates[p.stack.Top()]
}

func mapSettingValue(p *fileParser, t *token.Token) error {
	values := p.setting.Values
	if p.dup != nil {
		values = p.dup.Values
	}
	typ := valueType(p.setting, len(values))
	t.Prepend(typ)
	p.addValue(t)
	return nil
}

// valueType types the n-th value cell of s.
func valueType(s *model.Setting, n int) token.Type {
	switch s.Kind {
	case model.Documentation:
		return token.SettingDocumentationText
	case model.Metadata:
		if _, inline := s.InlineMetadataKey(); inline || n > 0 {
			return token.SettingMetadataValue
		}
		return token.SettingMetadataKey
	case model.ForceTags, model.DefaultTags, model.Tags:
		return token.SettingTagName
	case model.TestTimeout, model.Timeout:
		if n == 0 {
			return token.SettingTimeoutValue
		}
		return token.SettingTimeoutMessage
	case model.Resource, model.VariablesImport:
		if n == 0 {
			return token.SettingFileName
		}
		return token.SettingFileArgument
	case model.Arguments:
		return token.SettingArgumentName
	case model.Return:
		return token.SettingReturnValue
	}
	if n == 0 {
		return token.SettingKeywordName
	}
	return token.SettingKeywordArgument
}

// addValue appends to the active duplicate if there is one, else to the
// bound setting.
func (p *fileParser) addValue(t *token.Token) {
	if p.dup != nil {
		p.dup.Values = append(p.dup.Values, t)
		return
	}
	p.setting.Values = append(p.setting.Values, t)
}

// Variables table

var variableKinds = map[token.Type]model.VariableKind{
	token.VariablesScalarDeclaration:     model.Scalar,
	token.VariablesListDeclaration:       model.List,
	token.VariablesDictionaryDeclaration: model.Dictionary,
}

func mapVariableDeclaration(p *fileParser, t *token.Token) error {
	kind, ok := variableKinds[t.Type()]
	if !ok {
		kind = model.UnknownVariable
		t.Prepend(token.VariablesUnknownDeclaration)
	}
	p.variable = &model.Variable{Kind: kind, Declaration: t}
	table := p.file.VariableTable
	table.Variables = append(table.Variables, p.variable)
	p.stack.Push(StateVariableDeclaration)
	return nil
}

func canMapVariableValue(p *fileParser, _ *token.Token) bool {
	return p.variable != nil && p.stack.Top() == StateVariableDeclaration
}

func mapVariableValue(p *fileParser, t *token.Token) error {
	t.Prepend(token.VariablesValue)
	p.variable.Values = append(p.variable.Values, t)
	return nil
}

// Test cases and keywords

func canMapEntryName(p *fileParser, _ *token.Token) bool {
	return p.stack.Is(StateTestCaseTable, StateKeywordTable) && p.cell == 0 && !p.source.Indented
}

func mapEntryName(p *fileParser, t *token.Token) error {
	p.closeEntry()
	e := &model.Entry{Name: t, BeginLine: p.source.Number, EndLine: p.source.Number}
	if p.table == model.TestCasesTable {
		e.Kind = model.TestCase
		t.Prepend(token.TestCaseName)
		p.file.TestCaseTable.Entries = append(p.file.TestCaseTable.Entries, e)
	} else {
		e.Kind = model.UserKeyword
		t.Prepend(token.KeywordName)
		p.file.KeywordTable.Entries = append(p.file.KeywordTable.Entries, e)
	}
	p.entry = e
	p.stack.Push(entryState(e.Kind))
	return nil
}

var testCaseDeclarations = map[token.Type]model.SettingKind{
	token.TestCaseSettingDocumentation: model.Documentation,
	token.TestCaseSettingTags:          model.Tags,
	token.TestCaseSettingSetup:         model.Setup,
	token.TestCaseSettingTeardown:      model.Teardown,
	token.TestCaseSettingTemplate:      model.Template,
	token.TestCaseSettingTimeout:       model.Timeout,
}

var keywordDeclarations = map[token.Type]model.SettingKind{
	token.KeywordSettingDocumentation: model.Documentation,
	token.KeywordSettingTags:          model.Tags,
	token.KeywordSettingArguments:     model.Arguments,
	token.KeywordSettingReturn:        model.Return,
	token.KeywordSettingTeardown:      model.Teardown,
	token.KeywordSettingTimeout:       model.Timeout,
}

func (p *fileParser) atEntryLevel() bool {
	return p.entry != nil && p.stack.Top() == entryState(p.entry.Kind)
}

func (p *fileParser) localDeclaration(typ token.Type) (model.SettingKind, State, bool) {
	if p.entry.Kind == model.TestCase {
		kind, ok := testCaseDeclarations[typ]
		return kind, testCaseSettingStates[kind], ok
	}
	kind, ok := keywordDeclarations[typ]
	return kind, keywordSettingStates[kind], ok
}

func canMapLocalDeclaration(p *fileParser, t *token.Token) bool {
	if !p.atEntryLevel() {
		return false
	}
	_, _, ok := p.localDeclaration(t.Type())
	return ok
}

func mapLocalDeclaration(markerAt int) func(*fileParser, *token.Token) error {
	return func(p *fileParser, t *token.Token) error {
		kind, state, _ := p.localDeclaration(t.Type())
		marker := token.TestCaseSettingNameDuplication
		if p.entry.Kind == model.UserKeyword {
			marker = token.KeywordSettingNameDuplication
		}
		if bound := p.entry.Setting(kind); bound != nil {
			p.bindDuplicate(bound, t, marker, markerAt)
		} else {
			p.setting = &model.Setting{Kind: kind, Declaration: t}
			p.entry.Settings = append(p.entry.Settings, p.setting)
		}
		p.stack.Push(state)
		return nil
	}
}

func canMapLocalUnknown(p *fileParser, t *token.Token) bool {
	return p.atEntryLevel() && isBracketed(t.Text)
}

func mapLocalUnknown(p *fileParser, t *token.Token) error {
	state := StateTestCaseSettingUnknown
	if p.entry.Kind == model.TestCase {
		t.Prepend(token.TestCaseSettingUnknownDeclaration)
	} else {
		t.Prepend(token.KeywordSettingUnknownDeclaration)
		state = StateKeywordSettingUnknown
	}
	p.entry.Unknown = append(p.entry.Unknown, &model.UnknownSetting{Declaration: t})
	p.stack.Push(state)
	p.log.Debug("unknown local setting", "name", t.Text, "line", t.Line)
	return nil
}

func canMapLocalTrash(p *fileParser, _ *token.Token) bool {
	return p.stack.Is(StateTestCaseSettingUnknown, StateTestCaseSettingUnknownTrash,
		StateKeywordSettingUnknown, StateKeywordSettingUnknownTrash)
}

func mapLocalTrash(p *fileParser, t *token.Token) error {
	t.Prepend(token.SettingUnknownArgument)
	if p.entry == nil || len(p.entry.Unknown) == 0 {
		return p.internal("trash cell with no unknown local setting to attach to")
	}
	p.entry.Unknown[len(p.entry.Unknown)-1].AddTrash(t)
	switch p.stack.Top() {
	case StateTestCaseSettingUnknown:
		return p.advance(StateTestCaseSettingUnknownTrash)
	case StateKeywordSettingUnknown:
		return p.advance(StateKeywordSettingUnknownTrash)
	}
	return nil
}

func canMapAction(p *fileParser, _ *token.Token) bool {
	return p.atEntryLevel()
}

func mapAction(p *fileParser, t *token.Token) error {
	if p.entry.Kind == model.TestCase {
		t.Prepend(token.TestCaseAction)
	} else {
		t.Prepend(token.KeywordAction)
	}
	p.row = &model.ExecutableRow{Action: t, Line: p.source.Number}
	p.entry.Rows = append(p.entry.Rows, p.row)
	p.stack.Push(rowState(p.entry.Kind))
	return nil
}

func canMapActionArgument(p *fileParser, _ *token.Token) bool {
	return p.row != nil && p.entry != nil && p.stack.Top() == rowState(p.entry.Kind)
}

func mapActionArgument(p *fileParser, t *token.Token) error {
	if p.entry.Kind == model.TestCase {
		t.Prepend(token.TestCaseActionArgument)
	} else {
		t.Prepend(token.KeywordActionArgument)
	}
	p.row.Arguments = append(p.row.Arguments, t)
	return nil
}
