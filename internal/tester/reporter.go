package tester

import (
	"fmt"
	"io"
)

// Reporter emits per-check progress lines as validation proceeds. Output is
// streaming: each line is written the moment its check completes, so long
// runs give incremental feedback and a fatal abort leaves everything
// already reported.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

// Check announces a check about to execute, e.g.
// `VALIDATE NOT NULL "users"."id"`.
func (r *Reporter) Check(kind, subject string) {
	fmt.Fprintf(r.w, "%s %s\n", kind, subject)
}

// OK reports a passing check (zero violations).
func (r *Reporter) OK() {
	fmt.Fprintln(r.w, "  OK")
}

// Failed reports a failing check with its violation count.
func (r *Reporter) Failed(count int64) {
	fmt.Fprintf(r.w, "  FAILED (%d)\n", count)
}

// Errored reports a check that could not be executed.
func (r *Reporter) Errored(err error) {
	fmt.Fprintf(r.w, "  ERROR: %v\n", err)
}

// Error reports a constraint-group level error (unrecognized constraint
// type, or a group whose entries errored).
func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.w, "ERROR: %v\n", err)
}
