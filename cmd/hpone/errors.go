package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
	"github.com/ariafatah0711/HPone/internal/shell/docker"
	"github.com/ariafatah0711/HPone/internal/shell/store"
	"github.com/ariafatah0711/HPone/internal/shell/workspace"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	// errReported marks a failure that has already been printed. run
	// turns it into a bare exit code without printing anything else.
	errReported = errors.New("failure already reported")

	// errUsage marks a command line mistake, mapped to exit code 2.
	errUsage = errors.New("usage error")
)

// errorf prints an [ERROR] line to stderr without aborting. Loops over
// many tools use it to report one failure and keep going.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix(), fmt.Sprintf(format, args...))
}

// fail prints an [ERROR] line to stderr and returns errReported.
func fail(format string, args ...any) error {
	errorf(format, args...)
	return errReported
}

// failErr prints an [ERROR] line for a named command action with the
// error's user-facing description.
func failErr(action string, err error) error {
	return fail("%s: %s", action, describe(err))
}

// usagef prints a command line mistake to stderr and returns errUsage.
func usagef(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return errUsage
}

// warnf prints a [WARN] line to stdout.
func warnf(format string, args ...any) {
	fmt.Printf("%s %s\n", warnPrefix(), fmt.Sprintf(format, args...))
}

// okf prints an [OK]: line to stdout.
func okf(format string, args ...any) {
	fmt.Printf("%s: %s\n", okPrefix(), fmt.Sprintf(format, args...))
}

// describe renders an error for command output. The pipeline's typed
// errors carry a ready user-facing message; their operation prefix is
// context for logs, not for the terminal. Everything else prints
// verbatim.
func describe(err error) string {
	var parseErr *manifest.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Error()
	}
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	var wsErr *workspace.WorkspaceError
	if errors.As(err, &wsErr) && wsErr.Message != "" {
		return wsErr.Message
	}
	var dockerErr *docker.DockerError
	if errors.As(err, &dockerErr) && dockerErr.Message != "" {
		return dockerErr.Message
	}
	return err.Error()
}
