// Package diag implements the structured diagnostics the core emits on
// compile error, mirroring cobra's SMLoc/SMRange source-location pairs.
package diag

import "fmt"

// Severity classifies a diagnostic. Warnings never fail compilation;
// Errors do.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Range is a byte-offset pair into the original source buffer, mirroring
// cobra::SMRange(SMLoc Start, SMLoc End).
type Range struct {
	Start, End int
}

// Diagnostic is a single structured compiler message.
type Diagnostic struct {
	Severity Severity
	Range    Range
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (at %d:%d)", d.Severity, d.Message, d.Range.Start, d.Range.End)
}

// Bag collects diagnostics emitted over the course of one compilation.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(sev Severity, r Range, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: sev, Range: r, Message: fmt.Sprintf(format, args...)})
}

// Errorf is shorthand for Add(Error, ...).
func (b *Bag) Errorf(r Range, format string, args ...any) {
	b.Add(Error, r, format, args...)
}

// Warnf is shorthand for Add(Warning, ...).
func (b *Bag) Warnf(r Range, format string, args ...any) {
	b.Add(Warning, r, format, args...)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in emission order.
func (b *Bag) All() []Diagnostic { return b.items }
