package validation

import (
	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/version"
)

// Selector hands out each rule group filtered to one version.
type Selector struct {
	version version.Version
}

func NewSelector(v version.Version) Selector {
	return Selector{version: v}
}

func (s Selector) Variables() []Rule[*model.Variable] {
	return applicable(VariableRules, s.version)
}

func (s Selector) GeneralSettings() []Rule[*model.SettingTable] {
	return applicable(GeneralSettingsRules, s.version)
}

func (s Selector) KeywordTable() []Rule[*model.KeywordTable] {
	return applicable(KeywordTableRules, s.version)
}

func (s Selector) TestCaseSettings() []Rule[*model.Entry] {
	return applicable(TestCaseSettingsRules, s.version)
}

func (s Selector) KeywordSettings() []Rule[*model.Entry] {
	return applicable(KeywordSettingsRules, s.version)
}

// Validate runs every rule applicable to v over f. Groups run in the order
// settings table, variables, keywords table, test cases, keywords.
func Validate(f *model.File, v version.Version, r Reporter) {
	ctx := &Context{File: f, Version: v}
	sel := NewSelector(v)

	for _, rule := range sel.GeneralSettings() {
		rule.Check(ctx, f.SettingTable, r)
	}

	variableRules := sel.Variables()
	for _, variable := range f.VariableTable.Variables {
		for _, rule := range variableRules {
			rule.Check(ctx, variable, r)
		}
	}

	for _, rule := range sel.KeywordTable() {
		rule.Check(ctx, f.KeywordTable, r)
	}

	testCaseRules := sel.TestCaseSettings()
	for _, tc := range f.TestCaseTable.Entries {
		for _, rule := range testCaseRules {
			rule.Check(ctx, tc, r)
		}
	}

	keywordRules := sel.KeywordSettings()
	for _, kw := range f.KeywordTable.Entries {
		for _, rule := range keywordRules {
			rule.Check(ctx, kw, r)
		}
	}
}

// RuleInfo describes a rule for listings.
type RuleInfo struct {
	Group   string
	Name    string
	Applies string
	Enabled bool
}

func describe[N any](group string, rules []Rule[N], v version.Version) []RuleInfo {
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{
			Group:   group,
			Name:    r.Name,
			Applies: r.Applies.String(),
			Enabled: r.ApplicableFor(v),
		})
	}
	return out
}

// Catalog lists every rule in run order and whether it applies to v.
func Catalog(v version.Version) []RuleInfo {
	var out []RuleInfo
	out = append(out, describe("settings", GeneralSettingsRules, v)...)
	out = append(out, describe("variables", VariableRules, v)...)
	out = append(out, describe("keywords table", KeywordTableRules, v)...)
	out = append(out, describe("test case settings", TestCaseSettingsRules, v)...)
	out = append(out, describe("keyword settings", KeywordSettingsRules, v)...)
	return out
}
