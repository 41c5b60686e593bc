// Package progress reports extraction progress to stderr, extending the
// teacher's elapsed-time-prefixed Progress type with phase transitions,
// per-phase counts, and the warnings spec §4.13 asks for (phantom
// targets, schema violations recovered locally).
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress reports pipeline progress to stderr with an elapsed-time
// prefix, grounded directly on progress.go's Log/Verbose shape.
type Progress struct {
	start   time.Time
	verbose bool
	quiet   bool
}

// New creates a progress reporter. quiet suppresses everything but
// phase boundaries, warnings and the final summary line; verbose mirrors debug-
// level output and is ignored when quiet is set.
func New(verbose, quiet bool) *Progress {
	return &Progress{start: time.Now(), verbose: verbose && !quiet, quiet: quiet}
}

func (p *Progress) prefix() string {
	elapsed := time.Since(p.start)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("[%02d:%02d]", mins, secs)
}

// Log prints a progress message with elapsed time prefix, unless quiet.
func (p *Progress) Log(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", p.prefix(), fmt.Sprintf(format, args...))
}

// Verbose prints only when verbose mode is enabled.
func (p *Progress) Verbose(format string, args ...any) {
	if p.verbose {
		p.Log(format, args...)
	}
}

// Phase announces a pipeline state transition (spec §4.9's states).
// Printed even in quiet mode, since quiet still shows phase boundaries.
func (p *Progress) Phase(name string) {
	fmt.Fprintf(os.Stderr, "%s == %s ==\n", p.prefix(), name)
}

// Count reports a per-phase tally (nodes/edges emitted, methods skipped
// by diff, classes marked stale), rendering large numbers with
// thousands separators once they cross a threshold worth calling out
// (spec §4.13 "counts above a threshold are rendered in a human-
// readable form").
func (p *Progress) Count(label string, n int) {
	if p.quiet {
		return
	}
	if n >= 1000 {
		p.Log("%s: %s", label, humanize.Comma(int64(n)))
	} else {
		p.Log("%s: %d", label, n)
	}
}

// Warn reports a non-fatal condition the pipeline recovered from
// locally — a phantom call target or a schema violation that rolled
// back one method. Printed even in quiet mode.
func (p *Progress) Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s WARN %s\n", p.prefix(), fmt.Sprintf(format, args...))
}

// Summary prints the final one-line report every run ends with,
// regardless of verbosity (spec §4.13 "quiet runs still print ... the
// final summary line").
func (p *Progress) Summary(rebuilt, skipped, deleted, schemaViolations, phantoms int) {
	fmt.Fprintf(os.Stderr, "%s done: %s rebuilt, %s skipped, %s deleted, %s schema violations, %s phantom targets (%s elapsed)\n",
		p.prefix(),
		humanize.Comma(int64(rebuilt)),
		humanize.Comma(int64(skipped)),
		humanize.Comma(int64(deleted)),
		humanize.Comma(int64(schemaViolations)),
		humanize.Comma(int64(phantoms)),
		time.Since(p.start).Round(time.Millisecond),
	)
}
