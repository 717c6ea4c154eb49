package runner

import (
	"fmt"
	"io"
	"os"
)

// =============================================================================
// LineSink - Terminal Output Adapter
// =============================================================================

// LineSink receives the runner's output. Print lines are transient: after
// the subprocess finishes they are erased and replaced by summary lines,
// which persist. Keeping the terminal behind this interface keeps the
// filtering and state logic testable without one.
type LineSink interface {
	// Print writes one transient log line.
	Print(line string)
	// Erase removes the last count printed lines from the display.
	Erase(count int)
	// Summary writes one persistent result line.
	Summary(line string)
}

// =============================================================================
// TermSink - ANSI Terminal Implementation
// =============================================================================

const (
	clearLine = "\033[2K"
	moveUp    = "\033[1A"
)

// TermSink renders to a terminal, erasing lines with ANSI cursor movement.
type TermSink struct {
	out io.Writer
}

// NewTermSink creates a terminal sink. A nil writer means stdout.
func NewTermSink(out io.Writer) *TermSink {
	if out == nil {
		out = os.Stdout
	}
	return &TermSink{out: out}
}

func (s *TermSink) Print(line string) {
	fmt.Fprintln(s.out, line)
}

// Erase clears count lines above the cursor plus the line it sits on,
// leaving the cursor where the first printed line was.
func (s *TermSink) Erase(count int) {
	for i := 0; i < count; i++ {
		fmt.Fprint(s.out, clearLine+moveUp)
	}
	fmt.Fprint(s.out, clearLine)
}

func (s *TermSink) Summary(line string) {
	fmt.Fprintln(s.out, line)
}
