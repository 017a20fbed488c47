// Package position provides source position tracking for grammar files.
// Syntax tree nodes carry spans so diagnostics and injected code can be
// mapped back to the text the user is editing.
package position

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Position represents a single point in a grammar file
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range of source code between two positions
type Span struct {
	Start Position // Starting position (inclusive)
	End   Position // Ending position (exclusive)
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	if !s.IsValid() {
		return "<unknown>"
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s-%d", s.Start, s.End.Column)
	}
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}

// Range returns the byte range covered by the span.
func (s Span) Range() Range {
	return Range{Start: s.Start.Offset, End: s.End.Offset}
}

// Range is a half-open byte range. Injection hosts use it relative to
// the node that owns the text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Shift moves the range so it is expressed relative to base.
func (r Range) Shift(base int) Range {
	return Range{Start: r.Start - base, End: r.End - base}
}

// Contains reports whether other lies within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// SourceFile holds the text of a grammar file and an index of line starts
// for offset to line/column conversion.
type SourceFile struct {
	Filename   string
	Content    string
	lineStarts []int
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceFile{Filename: filename, Content: content, lineStarts: starts}
}

// LineCount returns the number of lines in the file.
func (sf *SourceFile) LineCount() int {
	return len(sf.lineStarts)
}

// PositionFromOffset converts a byte offset to a Position. Offsets outside
// the content yield the zero Position.
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}
	line := sort.Search(len(sf.lineStarts), func(i int) bool {
		return sf.lineStarts[i] > offset
	}) - 1
	return Position{
		Filename: sf.Filename,
		Line:     line + 1,
		Column:   offset - sf.lineStarts[line] + 1,
		Offset:   offset,
	}
}

// SpanFromRange converts a byte range to a Span.
func (sf *SourceFile) SpanFromRange(r Range) Span {
	return Span{Start: sf.PositionFromOffset(r.Start), End: sf.PositionFromOffset(r.End)}
}

// Text returns the text covered by the range or an empty string when the
// range does not fit the content.
func (sf *SourceFile) Text(r Range) string {
	if r.Start < 0 || r.End > len(sf.Content) || r.Start > r.End {
		return ""
	}
	return sf.Content[r.Start:r.End]
}
