// Package envfile renders the namespaced .env file that ties a tool's
// manifest to its rewritten compose document. This is part of the
// Functional Core - rendering is pure; writing the file is the caller's job.
package envfile

import (
	"fmt"
	"strings"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
	"github.com/ariafatah0711/HPone/internal/core/naming"
)

// =============================================================================
// Rendering
// =============================================================================

// Render produces the .env content for one tool.
//
// Layout, in manifest order:
//
//	# Auto-generated by hpone for <name>
//	PREFIX_PORT1_SRC=...
//	PREFIX_PORT1_DST=...
//	PREFIX_VOL1_SRC=...   (host side normalized to an absolute path)
//	PREFIX_VOL1_DST=...
//	PREFIX_<KEY>=...
//
// Identical input yields byte-identical output, so re-importing a tool never
// dirties its workspace.
func Render(resolvedName string, m *manifest.Manifest, paths Normalizer) ([]byte, error) {
	prefix := naming.VarPrefix(resolvedName)
	if prefix == "" {
		return nil, manifest.NewParseError("name", fmt.Sprintf("%q normalizes to an empty variable prefix", resolvedName), nil)
	}

	var lines []string
	lines = append(lines, "# Auto-generated by hpone for "+resolvedName)

	for i, p := range m.Ports {
		lines = append(lines,
			naming.PortSrcVar(prefix, i+1)+"="+p.Host,
			naming.PortDstVar(prefix, i+1)+"="+p.Container,
		)
	}

	for i, v := range m.Volumes {
		lines = append(lines,
			naming.VolSrcVar(prefix, i+1)+"="+paths.NormalizeHostPath(v.Host),
			naming.VolDstVar(prefix, i+1)+"="+v.Container,
		)
	}

	for _, e := range m.Env {
		lines = append(lines, naming.EnvVar(prefix, e.Key)+"="+e.Value)
	}

	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// Vars returns the same variables Render writes, as a map, for callers that
// interpolate rather than persist (the post-rewrite compose check).
func Vars(resolvedName string, m *manifest.Manifest, paths Normalizer) map[string]string {
	prefix := naming.VarPrefix(resolvedName)
	vars := make(map[string]string, 2*len(m.Ports)+2*len(m.Volumes)+len(m.Env))
	for i, p := range m.Ports {
		vars[naming.PortSrcVar(prefix, i+1)] = p.Host
		vars[naming.PortDstVar(prefix, i+1)] = p.Container
	}
	for i, v := range m.Volumes {
		vars[naming.VolSrcVar(prefix, i+1)] = paths.NormalizeHostPath(v.Host)
		vars[naming.VolDstVar(prefix, i+1)] = v.Container
	}
	for _, e := range m.Env {
		vars[naming.EnvVar(prefix, e.Key)] = e.Value
	}
	return vars
}

// HostVolumePaths lists the normalized host-side directories the tool
// expects to bind-mount, in manifest order. The workspace manager creates
// these ahead of the first start so compose does not invent root-owned
// directories on the fly.
func HostVolumePaths(m *manifest.Manifest, paths Normalizer) []string {
	out := make([]string, 0, len(m.Volumes))
	for _, v := range m.Volumes {
		normalized := paths.NormalizeHostPath(v.Host)
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
