// Package diag implements the toolchain's diagnostic taxonomy and
// caret-underline rendering, shared by the parser, semantic analyzer,
// code generator and container reader.
package diag

import (
	"fmt"
	"strings"

	"exalt/internal/ast"
)

// Severity distinguishes a hard failure from an advisory diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind is the closed taxonomy of diagnostic categories from the error
// handling design. Each diagnostic carries exactly one kind.
type Kind string

const (
	// Parser errors.
	KindInvalidToken             Kind = "invalid-token"
	KindUnexpectedEOF            Kind = "unexpected-eof"
	KindUnexpectedToken          Kind = "unexpected-token"
	KindInvalidIntLiteral        Kind = "invalid-int-literal"
	KindInvalidFloatLiteral      Kind = "invalid-float-literal"
	KindExpectedAssignment       Kind = "expected-assignment"
	KindExpectedExpression       Kind = "expected-expression"
	KindExpectedReference        Kind = "expected-reference"
	KindExpectedLoopRange        Kind = "expected-loop-range"
	KindExpectedStatement        Kind = "expected-statement"
	KindExpectedDeclaration      Kind = "expected-declaration"
	KindMultipleDefaultCases     Kind = "multiple-default-cases"
	KindDoubleDereference        Kind = "double-dereference"
	KindIncludeNotFound          Kind = "include-not-found"
	KindIncludePathNormalization Kind = "include-path-normalization"

	// Semantic errors.
	KindExpectedConstExpr      Kind = "expected-const-expr"
	KindSymbolRedefinition     Kind = "symbol-redefinition"
	KindUndefinedVariable      Kind = "undefined-variable"
	KindUndefinedAnnotation    Kind = "undefined-annotation"
	KindUndefinedEnum          Kind = "undefined-enum"
	KindUndefinedVariant       Kind = "undefined-variant"
	KindIncompatibleOperator   Kind = "incompatible-operator"
	KindIncompatibleOperands   Kind = "incompatible-operands"
	KindDivideByZero           Kind = "divide-by-zero"
	KindExpectedReferenceOp    Kind = "expected-reference-operand"
	KindBadBreak               Kind = "bad-break"
	KindBadContinue            Kind = "bad-continue"
	KindUnresolvedLabel        Kind = "unresolved-label"
	KindInvalidType            Kind = "invalid-type"
	KindSignatureDisagreement  Kind = "signature-disagreement"
	KindBadArgCount            Kind = "bad-arg-count"
	KindNegativeArrayLength    Kind = "negative-array-length"

	// Code-generation errors.
	KindBadBreakOrContinue Kind = "bad-break-or-continue"
	KindBadAssembly        Kind = "bad-assembly"

	// Binary/container errors.
	KindInvalidMagic         Kind = "invalid-magic"
	KindUnsupportedRevision  Kind = "unsupported-revision"
	KindOutOfBoundsPointer   Kind = "out-of-bounds-pointer"
	KindMalformedShiftJIS    Kind = "malformed-shift-jis"
	KindUnrecognizedOpcode   Kind = "unrecognized-opcode"
	KindUnresolvedJumpLabels Kind = "unresolved-jump-labels"

	// Warnings.
	KindDeadCode    Kind = "dead-code"
	KindUnusedLabel Kind = "unused-label"
)

// Span is a primary or secondary source range attached to a diagnostic.
type Span struct {
	File   string
	Line   int
	Column int
	Source string // the source line text, for caret rendering
}

// Diagnostic is one entry in a CompilerLog.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Primary  Span
	Related  []Span
	Notes    []string
}

// Error renders the diagnostic as a caret-underlined source excerpt.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s]: %s\n", d.Severity, d.Kind, d.Message)
	writeSpan(&sb, d.Primary)
	for _, s := range d.Related {
		sb.WriteString("note: related location\n")
		writeSpan(&sb, s)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&sb, "note: %s\n", n)
	}
	return sb.String()
}

func writeSpan(sb *strings.Builder, s Span) {
	if s.File == "" {
		return
	}
	fmt.Fprintf(sb, "  at %s:%d:%d\n", s.File, s.Line, s.Column)
	if s.Source != "" {
		prefix := fmt.Sprintf("  %d | ", s.Line)
		fmt.Fprintf(sb, "%s%s\n", prefix, s.Source)
		sb.WriteString(strings.Repeat(" ", len(prefix)))
		if s.Column > 0 {
			sb.WriteString(strings.Repeat(" ", s.Column-1))
		}
		sb.WriteString("^\n")
	}
}

// Locate converts a byte-offset ast.Location into a line/column Span,
// looking up the offending source line for caret rendering. Mirrors
// the line scan codespan_reporting performs lazily from SimpleFiles.
func Locate(source string, loc ast.Location) Span {
	if loc.Generated || loc.File == "" {
		return Span{File: loc.File}
	}
	line, col, lineStart := 1, 1, 0
	end := loc.Start
	if end > len(source) {
		end = len(source)
	}
	for i := 0; i < end; i++ {
		if source[i] == '\n' {
			line++
			col = 1
			lineStart = i + 1
		} else {
			col++
		}
	}
	rest := source[lineStart:]
	text := rest
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		text = rest[:i]
	}
	return Span{File: loc.File, Line: line, Column: col, Source: text}
}

// NewAt builds an error-severity diagnostic located by an ast.Location,
// resolving it against source for the caret-rendered excerpt.
func NewAt(kind Kind, message, source string, loc ast.Location) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Kind: kind, Message: message, Primary: Locate(source, loc)}
}

// New builds an error-severity diagnostic at a single primary span.
func New(kind Kind, message, file string, line, column int) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  message,
		Primary:  Span{File: file, Line: line, Column: column},
	}
}

// Warning builds a warning-severity diagnostic at a single primary span.
func Warning(kind Kind, message, file string, line, column int) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  message,
		Primary:  Span{File: file, Line: line, Column: column},
	}
}

// WithSource attaches the source line text to the primary span.
func (d *Diagnostic) WithSource(source string) *Diagnostic {
	d.Primary.Source = source
	return d
}

// WithRelated appends a secondary span (e.g. the original definition
// site of a redefined symbol).
func (d *Diagnostic) WithRelated(file string, line, column int) *Diagnostic {
	d.Related = append(d.Related, Span{File: file, Line: line, Column: column})
	return d
}

// WithNote appends a free-form note line.
func (d *Diagnostic) WithNote(note string) *Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// CompilerLog accumulates diagnostics across parsing and analysis so
// that a run can surface as many problems as possible instead of
// stopping at the first one.
type CompilerLog struct {
	entries []*Diagnostic
}

// Add records a diagnostic in discovery order.
func (l *CompilerLog) Add(d *Diagnostic) {
	l.entries = append(l.entries, d)
}

// Errors returns only error-severity diagnostics, in discovery order.
func (l *CompilerLog) Errors() []*Diagnostic {
	return l.filter(SeverityError)
}

// Warnings returns only warning-severity diagnostics, in discovery order.
func (l *CompilerLog) Warnings() []*Diagnostic {
	return l.filter(SeverityWarning)
}

func (l *CompilerLog) filter(sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range l.entries {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was logged.
func (l *CompilerLog) HasErrors() bool {
	for _, d := range l.entries {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Render formats the whole log, warnings first, for a single run.
func (l *CompilerLog) Render() string {
	var sb strings.Builder
	for _, d := range l.Warnings() {
		sb.WriteString(d.Error())
	}
	for _, d := range l.Errors() {
		sb.WriteString(d.Error())
	}
	return sb.String()
}
