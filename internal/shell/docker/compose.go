package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/ariafatah0711/HPone/internal/shell/runner"
)

// =============================================================================
// Compose Adapter
// =============================================================================

// probeTimeout bounds each binary probe.
const probeTimeout = 5 * time.Second

var (
	actionTagColor = color.New(color.FgYellow)
	okTagColor     = color.New(color.FgGreen)
)

// ComposeOptions configures the compose adapter.
type ComposeOptions struct {
	Ephemeral bool          // stream up/down through the ephemeral runner
	Timeout   time.Duration // per lifecycle command, 0 means no limit
	Out       io.Writer     // plain-mode result lines, defaults to stdout
}

// Compose runs docker compose against imported tool workspaces. The
// plugin form is preferred, with a fallback to the legacy
// docker-compose binary when the plugin does not answer.
type Compose struct {
	runner    *runner.Runner
	logger    *slog.Logger
	ephemeral bool
	timeout   time.Duration
	out       io.Writer

	probeOnce sync.Once
	baseArgs  []string

	// runOut executes argv in dir and returns stdout. runTTY executes
	// argv with the terminal attached. Both are swapped in tests.
	runOut func(ctx context.Context, dir string, argv ...string) (string, error)
	runTTY func(ctx context.Context, dir string, argv ...string) error
}

// NewCompose creates a compose adapter.
func NewCompose(opts ComposeOptions, logger *slog.Logger) *Compose {
	if logger == nil {
		logger = slog.Default()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Compose{
		runner:    runner.New(runner.NewTermSink(out), logger),
		logger:    logger,
		ephemeral: opts.Ephemeral,
		timeout:   opts.Timeout,
		out:       out,
		runOut:    defaultRunOut,
		runTTY:    defaultRunTTY,
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Up starts the workspace's containers detached.
func (c *Compose) Up(ctx context.Context, dir, name string) error {
	return c.lifecycle(ctx, dir, name, runner.ActionUp, []string{"up", "-d"})
}

// Down stops the workspace's containers. removeVolumes and removeImages
// map to compose down -v and --rmi all.
func (c *Compose) Down(ctx context.Context, dir, name string, removeVolumes, removeImages bool) error {
	return c.lifecycle(ctx, dir, name, runner.ActionDown, downArgs(removeVolumes, removeImages))
}

func downArgs(removeVolumes, removeImages bool) []string {
	args := []string{"down"}
	if removeVolumes {
		args = append(args, "-v")
	}
	if removeImages {
		args = append(args, "--rmi", "all")
	}
	return args
}

func (c *Compose) lifecycle(ctx context.Context, dir, name string, action runner.Action, args []string) error {
	op := args[0]
	if !composeFileExists(dir) {
		return NewDockerError(op, "compose", name, fmt.Sprintf("docker-compose.yml not found in %s", dir), ErrComposeFileMissing)
	}

	argv := c.command(ctx, args...)
	if c.ephemeral {
		result := c.runner.Run(ctx, argv, name, dir, c.timeout, action)
		if !result.Success {
			return NewDockerError(op, "compose", name, fmt.Sprintf("compose %s failed", op), ErrProcessFailed)
		}
		return nil
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if _, err := c.runOut(runCtx, dir, argv...); err != nil {
		return NewDockerError(op, "compose", name, err.Error(), ErrProcessFailed)
	}
	fmt.Fprintf(c.out, "%s %s %s\n",
		actionTagColor.Sprintf("[%s]", strings.ToUpper(op)), name, okTagColor.Sprint("[OK]"))
	return nil
}

// =============================================================================
// Probes
// =============================================================================

// IsRunning reports whether any container of the workspace's compose
// project is up. Any probe failure reads as not running.
func (c *Compose) IsRunning(ctx context.Context, dir string) bool {
	if !composeFileExists(dir) {
		return false
	}
	out, err := c.runOut(ctx, dir, c.command(ctx, "ps", "--format", "json")...)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}

// BinaryStatus reports which docker front ends answer on this host.
type BinaryStatus struct {
	Docker        bool // docker --version
	ComposePlugin bool // docker compose version
	ComposeLegacy bool // docker-compose --version
}

// ComposeAvailable is true when either compose form answers.
func (s BinaryStatus) ComposeAvailable() bool {
	return s.ComposePlugin || s.ComposeLegacy
}

// Probe checks the docker and compose binaries, bounding each probe
// separately.
func (c *Compose) Probe(ctx context.Context) BinaryStatus {
	return BinaryStatus{
		Docker:        c.probeCommand(ctx, "docker", "--version"),
		ComposePlugin: c.probeCommand(ctx, "docker", "compose", "version"),
		ComposeLegacy: c.probeCommand(ctx, "docker-compose", "--version"),
	}
}

// =============================================================================
// Interactive Shell
// =============================================================================

// Shell opens an interactive shell inside the workspace's service
// container, trying bash first and falling back to sh. A shell that ran
// and exited nonzero counts as served; only exec failures fall through.
func (c *Compose) Shell(ctx context.Context, dir, service string) error {
	if !composeFileExists(dir) {
		return NewDockerError("Shell", "compose", service, fmt.Sprintf("docker-compose.yml not found in %s", dir), ErrComposeFileMissing)
	}
	if !c.IsRunning(ctx, dir) {
		return NewDockerError("Shell", "compose", service, "tool is not running", ErrNotRunning)
	}

	for _, sh := range []string{"bash", "sh"} {
		err := c.runTTY(ctx, dir, c.command(ctx, "exec", service, sh)...)
		if err == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// 126/127 mean the shell itself could not be executed
			if code := exitErr.ExitCode(); code != 126 && code != 127 {
				return nil
			}
		}
		c.logger.Debug("shell unavailable in container", "service", service, "shell", sh, "error", err)
	}
	return NewDockerError("Shell", "compose", service, "neither bash nor sh is available", ErrNoShell)
}

// =============================================================================
// Command Construction
// =============================================================================

// base resolves the compose invocation once per process: the plugin
// when it answers, otherwise the legacy binary. When neither answers
// the plugin form is kept so the real invocation surfaces the error.
func (c *Compose) base(ctx context.Context) []string {
	c.probeOnce.Do(func() {
		if c.baseArgs != nil {
			return
		}
		if c.probeCommand(ctx, "docker", "compose", "version") {
			c.baseArgs = []string{"docker", "compose"}
			return
		}
		if c.probeCommand(ctx, "docker-compose", "--version") {
			c.logger.Debug("docker compose plugin unavailable, using legacy docker-compose")
			c.baseArgs = []string{"docker-compose"}
			return
		}
		c.baseArgs = []string{"docker", "compose"}
	})
	return c.baseArgs
}

func (c *Compose) command(ctx context.Context, args ...string) []string {
	base := c.base(ctx)
	argv := make([]string, 0, len(base)+len(args))
	argv = append(argv, base...)
	argv = append(argv, args...)
	return argv
}

func (c *Compose) probeCommand(ctx context.Context, argv ...string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, err := c.runOut(probeCtx, "", argv...)
	return err == nil
}

func composeFileExists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "docker-compose.yml"))
	return err == nil && info.Mode().IsRegular()
}

func defaultRunOut(ctx context.Context, dir string, argv ...string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	err := cmd.Run()
	return stdout.String(), err
}

func defaultRunTTY(ctx context.Context, dir string, argv ...string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
