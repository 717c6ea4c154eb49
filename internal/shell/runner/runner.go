// Package runner executes orchestration subprocesses with ephemeral
// logging: output streams live to the terminal, then collapses into a
// single result line once the process exits.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ariafatah0711/HPone/internal/core/stream"
)

// =============================================================================
// Actions and Results
// =============================================================================

// Action selects the progress verb, the summary tag, and whether output is
// noise-filtered for one subprocess run.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
)

// Verb returns the progress-line verb for the action.
func (a Action) Verb() string {
	if a == ActionDown {
		return "Stopping"
	}
	return "Starting"
}

// Result is the outcome of one subprocess run.
type Result struct {
	Success  bool
	Duration time.Duration
}

// =============================================================================
// Runner
// =============================================================================

var (
	greenTag  = color.New(color.FgGreen)
	yellowTag = color.New(color.FgYellow)
	redTag    = color.New(color.FgRed)
)

// Runner runs one subprocess at a time, blocking for its lifetime. Output
// is read line by line from the merged stdout/stderr stream, timestamped,
// buffered, and handed to the sink; when the process ends the buffered
// lines are erased and exactly one summary line remains. Exactly one
// attempt per call, no retries.
type Runner struct {
	sink   LineSink
	logger *slog.Logger
	now    func() time.Time
}

// New creates a runner. A nil sink renders to stdout.
func New(sink LineSink, logger *slog.Logger) *Runner {
	if sink == nil {
		sink = NewTermSink(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{sink: sink, logger: logger, now: time.Now}
}

// Run executes the command in dir and reports whether it succeeded plus how
// long it ran. A positive timeout bounds the wall clock: on expiry the
// subprocess is killed and the result marked as a timeout. Start-action
// output is noise-filtered; other actions stream verbatim.
func (r *Runner) Run(ctx context.Context, command []string, name, dir string, timeout time.Duration, action Action) Result {
	start := r.now()
	printed := 0

	show := func(line string) {
		if action == ActionUp && !stream.ShouldDisplay(line) {
			return
		}
		r.sink.Print(stream.FormatLine(r.now(), line))
		printed++
	}
	collapse := func() {
		if printed > 0 {
			r.sink.Erase(printed)
		}
	}
	failWith := func(marker string, detail error) Result {
		duration := r.now().Sub(start)
		collapse()
		r.sink.Summary(summaryLine(redTag.Sprint("[FAIL]"), name, redTag.Sprint(marker), duration))
		if detail != nil {
			r.sink.Summary("Error: " + detail.Error())
		}
		r.logger.Debug("subprocess failed", "name", name, "marker", marker, "duration", duration, "error", detail)
		return Result{Success: false, Duration: duration}
	}

	show(action.Verb() + " " + name + " containers ...")

	if len(command) == 0 {
		return failWith("ERROR", errors.New("empty command"))
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Debug("running subprocess", "command", strings.Join(command, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir

	pr, pw, err := os.Pipe()
	if err != nil {
		return failWith("ERROR", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return failWith("ERROR", err)
	}
	pw.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		show(line)
	}
	pr.Close()

	waitErr := cmd.Wait()
	duration := r.now().Sub(start)

	if ctx.Err() == context.DeadlineExceeded {
		collapse()
		r.sink.Summary(summaryLine(redTag.Sprint("[FAIL]"), name, redTag.Sprint("TIMEOUT"), duration))
		r.logger.Debug("subprocess timed out", "name", name, "duration", duration)
		return Result{Success: false, Duration: duration}
	}
	if waitErr != nil {
		collapse()
		r.sink.Summary(summaryLine(redTag.Sprint("[FAIL]"), name, redTag.Sprint("ERR"), duration))
		r.logger.Debug("subprocess exited non-zero", "name", name, "duration", duration, "error", waitErr)
		return Result{Success: false, Duration: duration}
	}

	collapse()
	status := greenTag.Sprint("[UP]")
	if action == ActionDown {
		status = yellowTag.Sprint("[DOWN]")
	}
	r.sink.Summary(summaryLine(status, name, greenTag.Sprint("OK"), duration))
	r.logger.Debug("subprocess finished", "name", name, "duration", duration)
	return Result{Success: true, Duration: duration}
}

// summaryLine builds the persistent result line: status tag, tool name,
// result marker, elapsed seconds with one decimal.
func summaryLine(status, name, marker string, d time.Duration) string {
	return fmt.Sprintf("%s %s %s (%.1fs)", status, name, marker, d.Seconds())
}
