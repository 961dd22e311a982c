// Package diag implements the diagnostic sink shared by every compiler
// phase: a line-numbered, snippet-carrying error/warning reporter with a
// three-error soft cap, usable by every phase that needs to report a
// problem without aborting the whole compilation outright.
package diag

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Severity distinguishes a hard error from an advisory warning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Entry is one reported problem: a phase tag, a line number and the
// offending source line captured by the tokenizer, and the message.
type Entry struct {
	Severity Severity
	Phase    string
	Line     int
	LineText string
	Message  string
}

// Reporter accumulates diagnostics against an io.Writer sink, capping the
// number of hard errors actually printed to errorCap (three by default)
// per compilation; further errors are suppressed with a note.
type Reporter struct {
	out        io.Writer
	errorCap   int
	errorCount int
	capped     bool
	Entries    []Entry
}

// NewReporter builds a Reporter that prints at most cap hard errors; a
// cap <= 0 selects the default cap of three.
func NewReporter(out io.Writer, cap int) *Reporter {
	if cap <= 0 {
		cap = 3
	}
	return &Reporter{out: out, errorCap: cap}
}

// Errorf reports a hard error at (line, lineText). Once the cap is
// reached, further errors are swallowed save for a single suppression
// note.
func (r *Reporter) Errorf(phase string, line int, lineText, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	r.errorCount++
	if r.errorCount <= r.errorCap {
		r.Entries = append(r.Entries, Entry{Severity: SeverityError, Phase: phase, Line: line, LineText: lineText, Message: msg})
		fmt.Fprintf(r.out, "%s:%d: error: %s\n", phase, line, msg)
		if lineText != "" {
			fmt.Fprintf(r.out, "    %s\n", lineText)
		}
	} else if !r.capped {
		r.capped = true
		fmt.Fprintf(r.out, "%s: further errors suppressed (more than %d reported)\n", phase, r.errorCap)
	}
	return errors.Errorf("%s:%d: %s", phase, line, msg)
}

// Warnf reports an advisory warning; warnings are never capped.
func (r *Reporter) Warnf(phase string, line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Entries = append(r.Entries, Entry{Severity: SeverityWarning, Phase: phase, Line: line, Message: msg})
	fmt.Fprintf(r.out, "%s:%d: warning: %s\n", phase, line, msg)
}

// ErrorCount is the total number of hard errors reported, including any
// beyond the cap.
func (r *Reporter) ErrorCount() int { return r.errorCount }

// HasErrors reports whether any hard error was reported.
func (r *Reporter) HasErrors() bool { return r.errorCount > 0 }
