// Package report prints the run-completion summary: records emitted,
// entities spawned, elapsed time, and exit status. Sized to this domain's
// single-pipeline run (spawn -> emit -> terminate), unlike the teacher's
// pkg/reporting summary printer, which carries scenario/target/fault
// vocabulary this generator has no use for.
package report

import (
	"fmt"
	"io"
	"time"
)

// Summary is what a completed (or interrupted) run reports.
type Summary struct {
	RecordsEmitted int64
	EntitiesSeen   int64
	Elapsed        time.Duration
	Terminated     bool
}

// Write prints a short human-readable summary to w, in the style of the
// teacher's pkg/reporting completion line (one summary, plain text, no
// TUI/emoji decoration — this run has no phases to break down).
func Write(w io.Writer, s Summary) {
	status := "COMPLETE"
	if s.Terminated {
		status = "TERMINATED"
	}
	fmt.Fprintf(w, "run %s: %d records emitted, %d entities spawned, elapsed %s\n",
		status, s.RecordsEmitted, s.EntitiesSeen, s.Elapsed.Round(time.Millisecond))
}
