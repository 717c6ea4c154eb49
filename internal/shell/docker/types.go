// Package docker drives the container engine: compose CLI invocations
// for tool lifecycle, plus a narrow SDK client for daemon probes, log
// streaming, and global image/volume cleanup.
package docker

import (
	"context"
	"io"
)

// =============================================================================
// Engine Client Interface
// =============================================================================

// Client is the engine surface the CLI needs beyond compose. Container
// lifecycle goes through the Compose adapter, not through this client.
type Client interface {
	Ping(ctx context.Context) error
	StreamLogs(ctx context.Context, containerID string, opts LogOptions, dst io.Writer) error
	RemoveImagesMatching(ctx context.Context, patterns []string) ([]string, error)
	PruneVolumes(ctx context.Context) ([]string, error)
	Close() error
}

// LogOptions defines options for container logs.
type LogOptions struct {
	Follow bool
	Tail   string // "all" or a line count
}

// =============================================================================
// Cleanup Patterns
// =============================================================================

// ImageCleanupPatterns matches the image references the bundled tool
// stacks pull. Global cleanup removes every local image matching any of
// these.
var ImageCleanupPatterns = []string{
	"dtagdevsec/*",
	"ghcr.io/telekom-security/*",
	"*honeypot*",
	"*pot*",
}
