package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/token"
	"github.com/chriserin/rfl/internal/validation"
)

var (
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Tokens prints every token of f with its position and type chain.
func Tokens(w io.Writer, f *model.File) {
	for _, l := range f.Lines {
		for _, t := range l.Tokens {
			if t.Is(token.Separator) {
				continue
			}
			fmt.Fprintf(w, "%4d:%-3d %-36s %q\n", t.Line, t.Column, typeChain(t), t.Raw)
		}
	}
}

func typeChain(t *token.Token) string {
	names := make([]string, len(t.Types))
	for i, typ := range t.Types {
		names[i] = typ.String()
	}
	return strings.Join(names, ",")
}

func texts(ts []*token.Token) string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Text
	}
	return strings.Join(out, " | ")
}

// Tree prints the document tree of f.
func Tree(w io.Writer, f *model.File) {
	fmt.Fprintln(w, pathStyle.Render(f.Name))
	for _, s := range f.Sections {
		fmt.Fprintf(w, "  %s %s\n", headStyle.Render(s.Kind.String()),
			faintStyle.Render(fmt.Sprintf("lines %d-%d", s.BeginLine, s.EndLine)))
	}

	if f.SettingTable.Present() {
		fmt.Fprintln(w, headStyle.Render("Settings"))
		for _, s := range f.SettingTable.Settings {
			settingNode(w, "  ", s)
		}
		for _, u := range f.SettingTable.Unknown {
			fmt.Fprintf(w, "  %s %s\n", errStyle.Render("?"), u.Declaration.Text)
		}
	}
	if f.VariableTable.Present() {
		fmt.Fprintln(w, headStyle.Render("Variables"))
		for _, v := range f.VariableTable.Variables {
			fmt.Fprintf(w, "  %s %s = %s\n", faintStyle.Render(v.Kind.String()), nameStyle.Render(v.Name()), texts(v.Values))
		}
	}
	if f.TestCaseTable.Present() {
		fmt.Fprintln(w, headStyle.Render("Test Cases"))
		for _, e := range f.TestCaseTable.Entries {
			entryNode(w, e)
		}
	}
	if f.KeywordTable.Present() {
		fmt.Fprintln(w, headStyle.Render("Keywords"))
		for _, e := range f.KeywordTable.Entries {
			entryNode(w, e)
		}
	}
}

func settingNode(w io.Writer, indent string, s *model.Setting) {
	fmt.Fprintf(w, "%s%s: %s\n", indent, nameStyle.Render(s.Kind.String()), texts(s.Values))
	for _, d := range s.Duplicates {
		fmt.Fprintf(w, "%s  %s line %d: %s\n", indent, warnStyle.Render("duplicate"), d.Declaration.Line, texts(d.Values))
	}
}

func entryNode(w io.Writer, e *model.Entry) {
	fmt.Fprintf(w, "  %s %s\n", nameStyle.Render(e.Name.Text),
		faintStyle.Render(fmt.Sprintf("lines %d-%d", e.BeginLine, e.EndLine)))
	for _, s := range e.Settings {
		settingNode(w, "    ", s)
	}
	for _, u := range e.Unknown {
		fmt.Fprintf(w, "    %s %s\n", errStyle.Render("?"), u.Declaration.Text)
	}
	for _, r := range e.Rows {
		action := ""
		if r.Action != nil {
			action = r.Action.Text
		}
		fmt.Fprintf(w, "    %s %s\n", action, faintStyle.Render(texts(r.Arguments)))
	}
}

// Catalog prints the rule catalog for one version.
func Catalog(w io.Writer, rules []validation.RuleInfo) {
	group := ""
	for _, r := range rules {
		if r.Group != group {
			group = r.Group
			fmt.Fprintln(w, headStyle.Render(group))
		}
		mark := faintStyle.Render("off")
		if r.Enabled {
			mark = newStyle.Render("on ")
		}
		fmt.Fprintf(w, "  %s  %-60s %s\n", mark, r.Name, faintStyle.Render(r.Applies))
	}
}
