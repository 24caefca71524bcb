// Package lexer splits test-data source into lines and cells. It does not
// classify anything; recognizers and mappers do that.
package lexer

import "strings"

// Segment is either a cell or the separator between cells.
type Segment struct {
	Text      string
	Offset    int // byte offset into the file
	Column    int // 1-based
	Separator bool
}

// Line is one physical source line.
type Line struct {
	Number   int // 1-based
	Offset   int
	Text     string // without the line terminator
	EOL      string // "\n", "\r\n" or "" for a final unterminated line
	Segments []Segment
	Pipe     bool
	Indented bool
}

// Cells returns only the non-separator segments.
func (l Line) Cells() []Segment {
	var cells []Segment
	for _, s := range l.Segments {
		if !s.Separator {
			cells = append(cells, s)
		}
	}
	return cells
}

// Blank reports whether the line holds no cell with content.
func (l Line) Blank() bool {
	for _, s := range l.Segments {
		if !s.Separator && s.Text != "" {
			return false
		}
	}
	return true
}

// Split breaks content into lines and segments.
func Split(content []byte) []Line {
	src := string(content)
	var lines []Line
	offset := 0
	number := 1
	for offset < len(src) {
		end := strings.IndexByte(src[offset:], '\n')
		var text, eol string
		if end < 0 {
			text = src[offset:]
		} else {
			text = src[offset : offset+end]
			eol = "\n"
		}
		if strings.HasSuffix(text, "\r") && eol != "" {
			text = text[:len(text)-1]
			eol = "\r\n"
		}
		lines = append(lines, splitLine(text, eol, number, offset))
		offset += len(text) + len(eol)
		number++
	}
	return lines
}

func splitLine(text, eol string, number, offset int) Line {
	line := Line{Number: number, Offset: offset, Text: text, EOL: eol}
	line.Pipe = isPipeLine(text)

	var spans [][3]int // start, end, separator flag
	if line.Pipe {
		spans = pipeSpans(text)
	} else {
		spans = spaceSpans(text)
	}

	if line.Pipe {
		spans, line.Indented = foldLeadingEmptyCells(spans)
	} else {
		line.Indented = len(spans) > 0 && spans[0][2] == 1
	}

	for _, sp := range spans {
		line.Segments = append(line.Segments, Segment{
			Text:      text[sp[0]:sp[1]],
			Offset:    offset + sp[0],
			Column:    sp[0] + 1,
			Separator: sp[2] == 1,
		})
	}
	return line
}

func isPipeLine(text string) bool {
	return text == "|" || strings.HasPrefix(text, "| ") || strings.HasPrefix(text, "|\t")
}

func isWS(b byte) bool {
	return b == ' ' || b == '\t'
}

// spaceSpans separates cells on two or more spaces or any run holding a
// tab. Whitespace at either end of the line is always a separator.
func spaceSpans(text string) [][3]int {
	var spans [][3]int
	n := len(text)
	cellStart := 0
	for i := 0; i < n; {
		if !isWS(text[i]) {
			i++
			continue
		}
		j := i
		tab := false
		for j < n && isWS(text[j]) {
			if text[j] == '\t' {
				tab = true
			}
			j++
		}
		if i == 0 || j == n || tab || j-i >= 2 {
			if i > cellStart {
				spans = append(spans, [3]int{cellStart, i, 0})
			}
			spans = append(spans, [3]int{i, j, 1})
			cellStart = j
		}
		i = j
	}
	if cellStart < n {
		spans = append(spans, [3]int{cellStart, n, 0})
	}
	return spans
}

// pipeSpans separates cells on a pipe that has whitespace or the line edge
// on both sides. Surrounding whitespace belongs to the separator.
func pipeSpans(text string) [][3]int {
	var spans [][3]int
	n := len(text)
	cellStart := 0
	for i := 0; i < n; {
		if text[i] != '|' || (i > 0 && !isWS(text[i-1])) || (i+1 < n && !isWS(text[i+1])) {
			i++
			continue
		}
		sepStart := i
		for sepStart > cellStart && isWS(text[sepStart-1]) {
			sepStart--
		}
		if sepStart > 0 || cellStart > 0 {
			spans = append(spans, [3]int{cellStart, sepStart, 0})
		}
		j := i + 1
		for j < n && isWS(text[j]) {
			j++
		}
		spans = append(spans, [3]int{sepStart, j, 1})
		cellStart = j
		i = j
	}
	if cellStart < n {
		spans = append(spans, [3]int{cellStart, n, 0})
	}
	return spans
}

// foldLeadingEmptyCells merges "|   |   | cell" style indentation into a
// single leading separator.
func foldLeadingEmptyCells(spans [][3]int) ([][3]int, bool) {
	indented := false
	for len(spans) >= 3 && spans[0][2] == 1 && spans[1][2] == 0 && spans[1][0] == spans[1][1] && spans[2][2] == 1 {
		merged := [3]int{spans[0][0], spans[2][1], 1}
		spans = append([][3]int{merged}, spans[3:]...)
		indented = true
	}
	return spans, indented
}
