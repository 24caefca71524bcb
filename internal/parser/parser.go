// Package parser turns test-data source into a model.File. Every cell is
// recognized into a token, then exactly one mapper, chosen by the state on
// top of the parsing stack, attaches it to the document tree.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chriserin/rfl/internal/lexer"
	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/recognizer"
	"github.com/chriserin/rfl/internal/token"
	"github.com/chriserin/rfl/internal/version"
)

// Options configures one Parse call.
type Options struct {
	// Version selects version-gated mapping behaviour.
	Version version.Version
	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
	// Registry defaults to recognizer.Default.
	Registry *recognizer.Template
}

// InternalError means the parser reached a state its grammar does not
// allow. Processing of the file stops.
type InternalError struct {
	File   string
	Line   int
	State  State
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s:%d: internal parser error %s: %s", e.File, e.Line, e.State, e.Reason)
}

type fileParser struct {
	file        *model.File
	stack       *Stack
	recognizers *recognizer.Set
	mappers     []mapper
	log         *slog.Logger

	context recognizer.Context
	table   model.TableKind
	inTable bool
	section *model.Section
	header  *model.TableHeader

	source      lexer.Line
	line        *model.Line
	cell        int
	lastContent int

	entry    *model.Entry
	setting  *model.Setting
	dup      *model.Duplicate
	variable *model.Variable
	row      *model.ExecutableRow
}

// Parse builds the document tree for one file. A fresh recognizer set is
// cloned for every call, so concurrent calls share nothing mutable.
func Parse(name string, content []byte, opts Options) (*model.File, error) {
	registry := opts.Registry
	if registry == nil {
		registry = recognizer.Default
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &fileParser{
		file:        model.NewFile(name),
		stack:       NewStack(),
		recognizers: registry.NewSet(),
		mappers:     mappersFor(opts.Version),
		log:         logger.With(slog.String("component", "parser"), slog.String("file", name)),
	}
	p.log.Debug("parsing", slog.String("version", opts.Version.String()), slog.Int("mappers", len(p.mappers)))

	for _, l := range lexer.Split(content) {
		if err := p.parseLine(l); err != nil {
			p.log.Debug("parse aborted", slog.Any("error", err))
			return nil, err
		}
	}
	p.finish()

	p.log.Debug("parsing complete",
		slog.Int("lines", len(p.file.Lines)),
		slog.Int("sections", len(p.file.Sections)),
		slog.Int("settings", len(p.file.SettingTable.Settings)),
		slog.Int("variables", len(p.file.VariableTable.Variables)),
		slog.Int("test_cases", len(p.file.TestCaseTable.Entries)),
		slog.Int("keywords", len(p.file.KeywordTable.Entries)))
	return p.file, nil
}

func (p *fileParser) parseLine(l lexer.Line) error {
	p.source = l
	p.line = &model.Line{Number: l.Number, Source: l}
	p.file.Lines = append(p.file.Lines, p.line)
	if l.EOL != "" {
		p.line.EOL = token.New(l.EOL, token.EndOfLine, l.Offset+len(l.Text), l.Number, len(l.Text)+1)
	}

	if err := p.beginLine(l); err != nil {
		return err
	}

	p.cell = 0
	for _, seg := range l.Segments {
		if seg.Separator {
			p.line.Tokens = append(p.line.Tokens, token.New(seg.Text, token.Separator, seg.Offset, l.Number, seg.Column))
			continue
		}
		typ := p.recognizers.Recognize(p.context, l.Number, seg.Text)
		t := token.New(seg.Text, typ, seg.Offset, l.Number, seg.Column)
		if err := p.mapToken(t); err != nil {
			return err
		}
		p.line.Tokens = append(p.line.Tokens, t)
		p.cell++
	}

	if p.stack.Top() == StateComment {
		if _, err := p.stack.Pop(); err != nil {
			return p.internal(err.Error())
		}
	}
	if !l.Blank() {
		p.lastContent = l.Number
	}
	return nil
}

// beginLine applies the line-start rules. Continuation and comment-only
// lines keep the stack; blank lines drop back to the open entry or table;
// anything else starts a new construct.
func (p *fileParser) beginLine(l lexer.Line) error {
	if l.Blank() {
		p.clearActive()
		if p.entry != nil {
			return p.popTo(entryState(p.entry.Kind))
		}
		return p.popTo(p.tableLevel())
	}

	first := strings.TrimSpace(l.Cells()[0].Text)
	if isContinuation(first) || strings.HasPrefix(first, "#") {
		return nil
	}

	p.clearActive()
	if p.entry != nil && l.Indented {
		return p.popTo(entryState(p.entry.Kind))
	}
	p.closeEntry()
	return p.popTo(p.tableLevel())
}

func (p *fileParser) mapToken(t *token.Token) error {
	for _, m := range p.mappers {
		if m.canMap(p, t) {
			return m.apply(p, t)
		}
	}
	return p.internal(fmt.Sprintf("no mapper accepts %q", t.Raw))
}

func (p *fileParser) finish() {
	p.closeEntry()
	p.closeSection(len(p.file.Lines))
	p.clearActive()
	p.stack.Reset()
}

func (p *fileParser) tableLevel() State {
	if !p.inTable {
		return StateStart
	}
	return tableState(p.table)
}

func (p *fileParser) popTo(st State) error {
	if err := p.stack.PopTo(st); err != nil {
		return p.internal(err.Error())
	}
	return nil
}

// advance replaces the top state.
func (p *fileParser) advance(next State) error {
	if _, err := p.stack.Pop(); err != nil {
		return p.internal(err.Error())
	}
	p.stack.Push(next)
	return nil
}

func (p *fileParser) clearActive() {
	p.setting = nil
	p.dup = nil
	p.variable = nil
	p.row = nil
}

func (p *fileParser) closeEntry() {
	if p.entry == nil {
		return
	}
	p.entry.EndLine = p.lastContent
	p.entry = nil
}

func (p *fileParser) closeSection(end int) {
	if p.section == nil {
		return
	}
	p.section.EndLine = end
	p.section = nil
}

func (p *fileParser) internal(reason string) error {
	return &InternalError{
		File:   p.file.Name,
		Line:   p.source.Number,
		State:  p.stack.Top(),
		Reason: reason,
	}
}

func isContinuation(cell string) bool {
	return cell == "..."
}

func isBracketed(cell string) bool {
	return len(cell) > 2 && strings.HasPrefix(cell, "[") && strings.HasSuffix(cell, "]")
}
