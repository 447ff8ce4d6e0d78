// Package report implements the diagnostic model: every semantic error the
// checker produces is tied to one or two source spans so it can be rendered
// back to the user without the checker ever halting compilation of a file.
//
// The shape is grounded on buf's bufanalysis.FileAnnotation (a file path,
// start/end line/column, a type string and a message) and on the reference
// implementation's miette-based DuplicateNameError, which carries a primary
// label plus zero or more related labels.
package report

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) into one file's source text.
// The zero value means "no span", which is valid for definitions discovered
// only through an already-compiled binary descriptor.
type Span struct {
	Start uint32
	End   uint32
}

// IsZero reports whether the span carries no position information.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Label is a single (span, message) annotation inside one file.
type Label struct {
	File    string
	Span    Span
	Message string
}

// Diagnostic is one semantic error, carrying a primary label and any number
// of related labels (for example both sides of a duplicate name).
type Diagnostic struct {
	Kind    Kind
	File    string
	Span    Span
	Message string
	Related []Label
}

// String renders a diagnostic as path:offset: message, where offset is the
// span's start byte offset (buf's FileAnnotation renders path:line:col
// instead). Callers that have a lines.Resolver should prefer a richer
// renderer; this is the fallback used when only byte offsets are available.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d: %s", orDefault(d.File, "<input>"), d.Span.Start, d.Message)
	for _, rel := range d.Related {
		fmt.Fprintf(&b, "\n  %s:%d: %s", orDefault(rel.File, "<input>"), rel.Span.Start, rel.Message)
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Bag accumulates diagnostics for one compile in the order they were
// produced. Diagnostics never abort a compile; the checker keeps going and
// best-effort descriptors are still emitted (spec.md §7, §4.4).
type Bag struct {
	diagnostics []Diagnostic
}

// Add appends a diagnostic, preserving the depth-first, lexical-order walk
// order of the checker (spec.md §5, "Ordering guarantees").
func (b *Bag) Add(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

// Len reports how many diagnostics have been collected.
func (b *Bag) Len() int {
	return len(b.diagnostics)
}

// Diagnostics returns the accumulated diagnostics in production order.
func (b *Bag) Diagnostics() []Diagnostic {
	return b.diagnostics
}

// SortStable orders diagnostics by (File, Span.Start, Kind, Message) the
// way buf's SortFileAnnotations orders annotations for display. It sorts
// the given slice in place, so passing the slice returned by
// Bag.Diagnostics reorders the Bag's own record as well.
func SortStable(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
}
