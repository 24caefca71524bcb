package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/rfl/internal/validation"
)

var (
	newStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	keptStyle  = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	pathStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// NewLine reports a file created by init.
func NewLine(w io.Writer, path string) {
	fmt.Fprintln(w, newStyle.Render("new")+"  "+path)
}

// KeptLine reports a file init left untouched.
func KeptLine(w io.Writer, path string) {
	fmt.Fprintln(w, keptStyle.Render("kept")+" "+path)
}

func severityStyle(s validation.Severity) lipgloss.Style {
	switch s {
	case validation.Error:
		return errStyle
	case validation.Warning:
		return warnStyle
	}
	return infoStyle
}

// SeverityLabel renders a fixed-width colored severity.
func SeverityLabel(s validation.Severity) string {
	return severityStyle(s).Render(fmt.Sprintf("%-7s", s.String()))
}

// ProblemLine prints "file:line:col  severity  message  code".
func ProblemLine(w io.Writer, p validation.Problem) {
	loc := fmt.Sprintf("%s:%d:%d", p.Region.File, p.Region.Line, p.Region.Column)
	fmt.Fprintf(w, "%s  %s  %s  %s\n",
		pathStyle.Render(loc), SeverityLabel(p.Severity), p.Message, faintStyle.Render(p.Code))
}

// FileError prints a file that could not be checked.
func FileError(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "%s  %s  %v\n", pathStyle.Render(path), errStyle.Render("failed "), err)
}

// SummaryLine prints the totals of a check run.
func SummaryLine(w io.Writer, files int, counts map[validation.Severity]int) {
	total := counts[validation.Error] + counts[validation.Warning] + counts[validation.Info]
	if total == 0 {
		fmt.Fprintf(w, "checked %d files, %s\n", files, newStyle.Render("no problems"))
		return
	}
	fmt.Fprintf(w, "checked %d files, %d problems (%s, %s, %s)\n", files, total,
		errStyle.Render(fmt.Sprintf("%d errors", counts[validation.Error])),
		warnStyle.Render(fmt.Sprintf("%d warnings", counts[validation.Warning])),
		infoStyle.Render(fmt.Sprintf("%d info", counts[validation.Info])))
}
