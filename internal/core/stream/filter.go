// Package stream classifies orchestration output lines for the live log
// display. This is part of the Functional Core - pure string decisions, so
// the runner's filtering is testable without a subprocess or a terminal.
package stream

import (
	"fmt"
	"strings"
	"time"
)

// timeFormat is the timestamp prefix on every displayed line.
const timeFormat = "15:04:05"

// importantKeywords always pass the filter: outcomes and failures must stay
// visible no matter how noisy the build is.
var importantKeywords = []string{
	"error", "failed", "fatal", "exception", "warn", "warning",
	"done", "finished", "complete", "started", "created", "pull complete",
}

// pullingDetailMarkers distinguish a top-level "Pulling image" event from
// per-layer progress spam.
var pullingDetailMarkers = []string{
	"fs layer", "waiting", "downloading", "extracting", "verifying",
}

// skipPatterns drop the verbose build and pull output docker emits when a
// container image is assembled: buildkit step lines, layer transfers,
// checksums, package manager chatter.
var skipPatterns = []string{
	// Build patterns
	"#", "transferring", "load build definition", "load metadata",
	"building with", "load .dockerignore", "internal",
	// Pull patterns
	"pulling fs layer", "waiting", "downloading [", "extracting [",
	"verifying checksum", "download complete",
	// SHA256 and hash patterns
	"sha256:", "resolve docker.io", "kb / ", "mb / ", "gb / ",
	// Database and progress patterns
	"(reading database", "files and directories currently installed",
	// Cargo/Rust download patterns
	"downloaded ", "kb/s", "mb/s", " added, ", " removed; done",
}

// ShouldDisplay reports whether a start-action output line is worth showing
// live. Importance wins over suppression: a failed layer download mentions
// "failed" and passes even though layer progress normally would not.
func ShouldDisplay(line string) bool {
	lower := strings.ToLower(line)

	for _, keyword := range importantKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	if strings.Contains(lower, "pulling") {
		detail := false
		for _, marker := range pullingDetailMarkers {
			if strings.Contains(lower, marker) {
				detail = true
				break
			}
		}
		if !detail {
			return true
		}
	}

	for _, pattern := range skipPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	return true
}

// FormatLine renders one displayed log line with its timestamp.
//
// Example:
//
//	FormatLine(now, "Container cowrie Started") // "[14:03:59] [INFO] Container cowrie Started"
func FormatLine(ts time.Time, line string) string {
	return fmt.Sprintf("[%s] [INFO] %s", ts.Format(timeFormat), line)
}
