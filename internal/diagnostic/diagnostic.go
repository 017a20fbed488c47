// Diagnostics reported on grammar files.
// Inspections produce them, the CLI collects, filters and prints them.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orizon-lang/lalrpop-ide/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the category of diagnostic.
type DiagnosticCategory int

const (
	DiagnosticType DiagnosticCategory = iota
	DiagnosticReference
	DiagnosticInjection
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticType:
		return "type"
	case DiagnosticReference:
		return "reference"
	case DiagnosticInjection:
		return "injection"
	default:
		return "unknown"
	}
}

// Codes of the diagnostics this tool reports.
const (
	CodeInconsistentType = "LP0001"
)

// Diagnostic is a single message attached to a span of a grammar file.
type Diagnostic struct {
	Code     string
	Message  string
	Span     position.Span
	Level    DiagnosticLevel
	Category DiagnosticCategory
}

// String formats the diagnostic as `file:line:col: level: message`.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		d.Span.Start.Filename, d.Span.Start.Line, d.Span.Start.Column, d.Level, d.Message)
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Info() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticInfo

	return db
}

func (db *DiagnosticBuilder) Type() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticType

	return db
}

func (db *DiagnosticBuilder) Reference() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticReference

	return db
}

func (db *DiagnosticBuilder) Injection() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticInjection

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// InconsistentType reports an alternative whose type differs from the
// type established for its rule.
func InconsistentType(span position.Span, alternativeType, expectedType string) *Diagnostic {
	return NewDiagnostic().
		Warning().
		Type().
		Code(CodeInconsistentType).
		Message(fmt.Sprintf("Resolved type of alternative is `%s`, while expected type is `%s`", alternativeType, expectedType)).
		Span(span).
		Build()
}

// DiagnosticEngine collects diagnostics of several files.
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	config      DiagnosticConfig
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	IgnoreCodes      []string
	WarningsAsErrors bool
}

// NewDiagnosticEngine creates a new diagnostic engine.
func NewDiagnosticEngine(config DiagnosticConfig) *DiagnosticEngine {
	return &DiagnosticEngine{config: config}
}

// Add adds diagnostics to the engine, dropping ignored codes.
func (de *DiagnosticEngine) Add(diagnostics ...Diagnostic) {
	for _, d := range diagnostics {
		if de.shouldIgnore(d) {
			continue
		}
		if de.config.WarningsAsErrors && d.Level == DiagnosticWarning {
			d.Level = DiagnosticError
		}
		de.diagnostics = append(de.diagnostics, d)
	}
}

func (de *DiagnosticEngine) shouldIgnore(d Diagnostic) bool {
	for _, code := range de.config.IgnoreCodes {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Diagnostics returns all diagnostics sorted by position.
func (de *DiagnosticEngine) Diagnostics() []Diagnostic {
	de.sort()
	return de.diagnostics
}

// Count returns the number of diagnostics at level.
func (de *DiagnosticEngine) Count(level DiagnosticLevel) int {
	n := 0
	for _, d := range de.diagnostics {
		if d.Level == level {
			n++
		}
	}
	return n
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return de.Count(DiagnosticError) > 0
}

func (de *DiagnosticEngine) sort() {
	sort.SliceStable(de.diagnostics, func(i, j int) bool {
		a, b := de.diagnostics[i].Span.Start, de.diagnostics[j].Span.Start
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return de.diagnostics[i].Level < de.diagnostics[j].Level
	})
}

// Format renders every diagnostic on its own line followed by a summary.
func (de *DiagnosticEngine) Format() string {
	return de.FormatWithSources(nil)
}

// FormatWithSources is Format with the highlighted source lines under each
// diagnostic whose file is in sources, keyed by file name.
func (de *DiagnosticEngine) FormatWithSources(sources map[string]*position.SourceFile) string {
	var result strings.Builder
	for _, d := range de.Diagnostics() {
		result.WriteString(d.String())
		result.WriteString("\n")
		if sf := sources[d.Span.Start.Filename]; sf != nil {
			result.WriteString(position.Highlight(sf, d.Span))
		}
	}
	result.WriteString(de.summary())
	return result.String()
}

func (de *DiagnosticEngine) summary() string {
	errorCount := de.Count(DiagnosticError)
	warningCount := de.Count(DiagnosticWarning)
	if errorCount == 0 && warningCount == 0 {
		return "no issues found\n"
	}
	var parts []string
	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warningCount))
	}
	return "found " + strings.Join(parts, ", ") + "\n"
}
