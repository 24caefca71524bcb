package validation

import (
	"strings"

	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/recognizer"
	"github.com/chriserin/rfl/internal/token"
	"github.com/chriserin/rfl/internal/version"
)

var (
	rf29 = version.New(2, 9)
	rf30 = version.New(3, 0)
	rf31 = version.New(3, 1)
)

// Context is the read-only state a rule may consult.
type Context struct {
	File    *model.File
	Version version.Version
}

func (c *Context) region(t *token.Token) Region {
	return RegionOf(c.File.Name, t)
}

// Rule is a pure check over one kind of model node. Applies gates it by
// Robot Framework version.
type Rule[N any] struct {
	Name    string
	Applies version.Range
	Check   func(ctx *Context, node N, r Reporter)
}

func (r Rule[N]) ApplicableFor(v version.Version) bool {
	return r.Applies.Contains(v)
}

func applicable[N any](rules []Rule[N], v version.Version) []Rule[N] {
	var out []Rule[N]
	for _, r := range rules {
		if r.ApplicableFor(v) {
			out = append(out, r)
		}
	}
	return out
}

// squash lower-cases and drops spaces, brackets and a trailing colon.
func squash(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.NewReplacer(" ", "", "[", "", "]", "").Replace(s)
}

// Duplicates

func reportDuplicates(ctx *Context, s *model.Setting, consequence string, r Reporter) {
	for _, d := range s.Duplicates {
		r.Report(NewProblem(DuplicatedSetting, ctx.region(d.Declaration), s.Kind.String(), consequence))
	}
}

func reportDuplicatesOld(ctx *Context, s *model.Setting, r Reporter) {
	for _, d := range s.Duplicates {
		r.Report(NewProblem(DuplicatedSettingOld, ctx.region(d.Declaration), s.Kind.String()))
	}
}

func generalDuplication(kind model.SettingKind, consequence string) Rule[*model.SettingTable] {
	return Rule[*model.SettingTable]{
		Name:    "duplicated " + kind.String(),
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			if s := t.First(kind); s != nil {
				reportDuplicates(ctx, s, consequence, r)
			}
		},
	}
}

func generalDuplicationOld(kind model.SettingKind) Rule[*model.SettingTable] {
	return Rule[*model.SettingTable]{
		Name:    "duplicated " + kind.String() + " in old Robot Framework",
		Applies: version.LessThan(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			if s := t.First(kind); s != nil {
				reportDuplicatesOld(ctx, s, r)
			}
		},
	}
}

func entryDuplication(kind model.SettingKind, consequence string) Rule[*model.Entry] {
	return Rule[*model.Entry]{
		Name:    "duplicated [" + kind.String() + "]",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			if s := e.Setting(kind); s != nil {
				reportDuplicates(ctx, s, consequence, r)
			}
		},
	}
}

// entryDuplicationOld scans the entry's lines for duplication markers
// rather than walking its settings.
func entryDuplicationOld(marker token.Type) Rule[*model.Entry] {
	return Rule[*model.Entry]{
		Name:    "duplicated local settings in old Robot Framework",
		Applies: version.LessThan(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			for _, t := range ctx.File.TokensBetween(e.BeginLine, e.EndLine) {
				if t.Is(marker) {
					name := strings.TrimSpace(strings.Trim(t.Text, "[]"))
					r.Report(NewProblem(DuplicatedSettingOld, ctx.region(t), name))
				}
			}
		},
	}
}

// Deprecations

var deprecatedGeneralNames = map[string]string{
	"suiteprecondition":  "Suite Setup",
	"suitepostcondition": "Suite Teardown",
	"testprecondition":   "Test Setup",
	"testpostcondition":  "Test Teardown",
	"document":           "Documentation",
}

var deprecatedTestCaseNames = map[string]string{
	"precondition":  "[Setup]",
	"postcondition": "[Teardown]",
	"document":      "[Documentation]",
}

var deprecatedKeywordNames = map[string]string{
	"postcondition": "[Teardown]",
	"document":      "[Documentation]",
}

func declarations(s *model.Setting) []*token.Token {
	decls := []*token.Token{s.Declaration}
	for _, d := range s.Duplicates {
		decls = append(decls, d.Declaration)
	}
	return decls
}

func reportDeprecatedNames(ctx *Context, settings []*model.Setting, names map[string]string, r Reporter) {
	for _, s := range settings {
		for _, decl := range declarations(s) {
			if replacement, ok := names[squash(decl.Text)]; ok {
				r.Report(NewProblem(DeprecatedSettingName, ctx.region(decl), decl.Text, replacement))
			}
		}
	}
}

func deprecatedHeader(headers []*model.TableHeader, deprecated map[string]bool, replacement string, ctx *Context, r Reporter) {
	for _, h := range headers {
		name := recognizer.HeaderName(h.Declaration.Text)
		if deprecated[squash(name)] {
			r.Report(NewProblem(DeprecatedTableHeader, ctx.region(h.Declaration), h.Declaration.Text, replacement))
		}
	}
}

// Timeouts

func reportTimeoutMessage(ctx *Context, s *model.Setting, r Reporter) {
	if s == nil {
		return
	}
	msg := s.MessageArguments()
	if len(msg) == 0 {
		return
	}
	r.Report(NewProblem(TimeoutMessageDeprecated, Span(ctx.File.Name, msg[0], msg[len(msg)-1]), s.Declaration.Text))
}

// Library aliases

func libraryAlias(severity Severity) func(*Context, *model.SettingTable, Reporter) {
	return func(ctx *Context, t *model.SettingTable, r Reporter) {
		for _, lib := range t.All(model.Library) {
			marker := lib.AliasMarker()
			if marker == nil || marker.Text == "WITH NAME" {
				continue
			}
			r.Report(NewProblem(LibraryAliasNotUpperCase, ctx.region(marker), marker.Text).WithSeverity(severity))
		}
	}
}

// Unknown settings

func reportUnknown(ctx *Context, buckets []*model.UnknownSetting, r Reporter) {
	for _, u := range buckets {
		r.Report(NewProblem(UnknownSetting, ctx.region(u.Declaration), u.Declaration.Text))
	}
}

var unknownInEntry = Rule[*model.Entry]{
	Name:    "unknown local setting",
	Applies: version.Any(),
	Check: func(ctx *Context, e *model.Entry, r Reporter) {
		reportUnknown(ctx, e.Unknown, r)
	},
}

// VariableRules inspect single variable declarations.
var VariableRules = []Rule[*model.Variable]{
	{
		Name:    "dictionary existence",
		Applies: version.LessThan(rf29),
		Check: func(ctx *Context, v *model.Variable, r Reporter) {
			if v.Kind == model.Dictionary {
				r.Report(NewProblem(DictionaryNotSupported, ctx.region(v.Declaration), v.Name()))
			}
		},
	},
	{
		Name:    "scalar as list in old Robot Framework",
		Applies: version.LessThan(rf29),
		Check: func(ctx *Context, v *model.Variable, r Reporter) {
			if v.Kind == model.Scalar && len(v.Values) > 1 {
				r.Report(NewProblem(ScalarAsListOld, ctx.region(v.Declaration), v.Name()))
			}
		},
	},
	{
		Name:    "scalar as list",
		Applies: version.AtLeast(rf29),
		Check: func(ctx *Context, v *model.Variable, r Reporter) {
			if v.Kind == model.Scalar && len(v.Values) > 1 {
				r.Report(NewProblem(ScalarAsList, ctx.region(v.Declaration), v.Name()))
			}
		},
	},
}

// GeneralSettingsRules inspect the settings table.
var GeneralSettingsRules = []Rule[*model.SettingTable]{
	{
		Name:    "deprecated settings table header",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			deprecatedHeader(t.Headers, map[string]bool{"metadata": true}, "Settings", ctx, r)
		},
	},

	generalDuplicationOld(model.TestTemplate),
	generalDuplication(model.TestTemplate, ". No template will be used"),
	generalDuplicationOld(model.SuiteSetup),
	generalDuplication(model.SuiteSetup, ". No Suite Setup will be executed"),
	generalDuplicationOld(model.SuiteTeardown),
	generalDuplication(model.SuiteTeardown, ". No Suite Teardown will be executed"),
	generalDuplicationOld(model.TestSetup),
	generalDuplication(model.TestSetup, ". No Test Setup will be executed"),
	generalDuplicationOld(model.TestTeardown),
	generalDuplication(model.TestTeardown, ". No Test Teardown will be executed"),
	generalDuplicationOld(model.TestTimeout),
	generalDuplication(model.TestTimeout, ". No timeout will be checked"),
	generalDuplicationOld(model.ForceTags),
	generalDuplication(model.ForceTags, ""),
	generalDuplicationOld(model.DefaultTags),
	generalDuplication(model.DefaultTags, ""),
	generalDuplicationOld(model.Documentation),
	generalDuplication(model.Documentation, ""),

	{
		Name:    "deprecated setting name",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			reportDeprecatedNames(ctx, t.Settings, deprecatedGeneralNames, r)
		},
	},
	{
		Name:    "metadata key in setting column",
		Applies: version.LessThan(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			for _, s := range t.All(model.Metadata) {
				if key, ok := s.InlineMetadataKey(); ok {
					r.Report(NewProblem(MetadataKeyInSettingColumn, ctx.region(s.Declaration), key))
				}
			}
		},
	},
	{
		Name:    "test timeout message",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			reportTimeoutMessage(ctx, t.First(model.TestTimeout), r)
		},
	},
	{
		Name:    "library alias not upper case",
		Applies: version.Between(rf30, rf31),
		Check:   libraryAlias(Warning),
	},
	{
		Name:    "library alias not upper case since 3.1",
		Applies: version.AtLeast(rf31),
		Check:   libraryAlias(Error),
	},
	{
		Name:    "unknown setting",
		Applies: version.Any(),
		Check: func(ctx *Context, t *model.SettingTable, r Reporter) {
			reportUnknown(ctx, t.Unknown, r)
		},
	},
}

// KeywordTableRules inspect the keywords table as a whole.
var KeywordTableRules = []Rule[*model.KeywordTable]{
	{
		Name:    "deprecated keywords table header",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, t *model.KeywordTable, r Reporter) {
			deprecatedHeader(t.Headers, map[string]bool{"userkeyword": true, "userkeywords": true}, "Keywords", ctx, r)
		},
	},
}

// TestCaseSettingsRules inspect one test case.
var TestCaseSettingsRules = []Rule[*model.Entry]{
	entryDuplicationOld(token.TestCaseSettingNameDuplication),
	entryDuplication(model.Setup, ". No Setup will be executed"),
	entryDuplication(model.Teardown, ". No Teardown will be executed"),
	entryDuplication(model.Template, ". No template will be used"),
	entryDuplication(model.Timeout, ". No timeout will be checked"),
	entryDuplication(model.Tags, ""),
	entryDuplication(model.Documentation, ""),
	{
		Name:    "deprecated test case setting name",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			reportDeprecatedNames(ctx, e.Settings, deprecatedTestCaseNames, r)
		},
	},
	{
		Name:    "test case timeout message",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			reportTimeoutMessage(ctx, e.Setting(model.Timeout), r)
		},
	},
	unknownInEntry,
}

// KeywordSettingsRules inspect one user keyword.
var KeywordSettingsRules = []Rule[*model.Entry]{
	entryDuplicationOld(token.KeywordSettingNameDuplication),
	entryDuplication(model.Arguments, ""),
	entryDuplication(model.Teardown, ". No Teardown will be executed"),
	entryDuplication(model.Return, ""),
	entryDuplication(model.Timeout, ". No timeout will be checked"),
	entryDuplication(model.Tags, ""),
	entryDuplication(model.Documentation, ""),
	{
		Name:    "deprecated keyword setting name",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			reportDeprecatedNames(ctx, e.Settings, deprecatedKeywordNames, r)
		},
	},
	{
		Name:    "keyword timeout message",
		Applies: version.AtLeast(rf30),
		Check: func(ctx *Context, e *model.Entry, r Reporter) {
			reportTimeoutMessage(ctx, e.Setting(model.Timeout), r)
		},
	},
	unknownInEntry,
}
