package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Highlight renders the lines covered by span with a gutter of line
// numbers and carets under the covered columns. It returns "" when the span
// does not belong to sf.
func Highlight(sf *SourceFile, span Span) string {
	if sf == nil || !span.IsValid() || span.Start.Line < 1 || span.End.Line > sf.LineCount() {
		return ""
	}

	var result strings.Builder
	for lineNum := span.Start.Line; lineNum <= span.End.Line; lineNum++ {
		line := sf.Line(lineNum)
		result.WriteString(fmt.Sprintf("%4d | %s\n", lineNum, line))

		startCol, endCol := 1, utf8.RuneCountInString(line)+1
		if lineNum == span.Start.Line {
			startCol = span.Start.Column
		}
		if lineNum == span.End.Line {
			endCol = span.End.Column
		}
		result.WriteString("     | ")
		underline(&result, line, startCol, endCol)
		result.WriteString("\n")
	}
	return result.String()
}

// Line returns the text of the 1-based line n without its newline.
func (sf *SourceFile) Line(n int) string {
	if n < 1 || n > len(sf.lineStarts) {
		return ""
	}
	start := sf.lineStarts[n-1]
	end := len(sf.Content)
	if n < len(sf.lineStarts) {
		end = sf.lineStarts[n] - 1
	}
	return strings.TrimSuffix(sf.Content[start:end], "\r")
}

func underline(result *strings.Builder, line string, startCol, endCol int) {
	runes := []rune(line)

	// Tabs are kept so the carets line up in any tab width.
	for i := 1; i < startCol; i++ {
		if i <= len(runes) && runes[i-1] == '\t' {
			result.WriteString("\t")
		} else {
			result.WriteString(" ")
		}
	}

	width := min(endCol-startCol, len(runes)-startCol+1)
	if width < 1 {
		width = 1
	}
	result.WriteString(strings.Repeat("^", width))
}
