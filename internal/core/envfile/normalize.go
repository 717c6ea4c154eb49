package envfile

import (
	"path/filepath"
	"regexp"
	"strings"
)

// =============================================================================
// Host Path Normalization
// =============================================================================

// envRefPattern matches $VAR and ${VAR} references inside a path.
var envRefPattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}|\$[A-Za-z_][A-Za-z0-9_]*`)

// Normalizer resolves host-side volume paths to absolute form. Environment
// and home lookups are injected so resolution stays deterministic in tests.
type Normalizer struct {
	// ProjectRoot anchors relative paths. A manifest saying "./data/cowrie"
	// must land under the project, not under whatever directory the binary
	// happens to run from.
	ProjectRoot string

	// HomeDir expands a leading "~". Empty disables home expansion.
	HomeDir string

	// Env looks up an environment variable. Nil disables $VAR expansion.
	Env func(key string) (string, bool)
}

// NormalizeHostPath expands $VAR/${VAR} references and a leading "~", then
// anchors a still-relative result at ProjectRoot. References to unset
// variables are kept verbatim rather than erased, so they stay visible in
// the generated file instead of silently collapsing the path.
//
// Empty input passes through unchanged.
func (n Normalizer) NormalizeHostPath(raw string) string {
	if raw == "" {
		return raw
	}

	expanded := raw
	if n.HomeDir != "" {
		if expanded == "~" {
			expanded = n.HomeDir
		} else if strings.HasPrefix(expanded, "~/") {
			expanded = filepath.Join(n.HomeDir, expanded[2:])
		}
	}

	if n.Env != nil {
		expanded = envRefPattern.ReplaceAllStringFunc(expanded, func(ref string) string {
			name := strings.TrimPrefix(ref, "$")
			name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
			if v, ok := n.Env(name); ok {
				return v
			}
			return ref
		})
	}

	if !filepath.IsAbs(expanded) {
		return filepath.Join(n.ProjectRoot, expanded)
	}
	return filepath.Clean(expanded)
}
