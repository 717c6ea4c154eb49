// Package manifest defines the per-tool declarative record and its strict
// YAML schema. This is part of the Functional Core - parsing is pure and
// every malformed entry fails here, at the boundary, never deeper in the
// pipeline.
package manifest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Manifest - Main Type
// =============================================================================

// Manifest is one tool's declarative record as read from the manifest
// directory. Field order inside Ports, Volumes and Env is preserved from the
// source document; the 1-based position drives variable naming downstream.
type Manifest struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Enabled     bool          `yaml:"enabled"`
	Ports       []PortEntry   `yaml:"ports"`
	Volumes     []VolumeEntry `yaml:"volumes"`
	Env         EnvMap        `yaml:"env"`
	Service     string        `yaml:"service"`
	Services    []string      `yaml:"services"`
	Image       string        `yaml:"image"`
	TemplateDir string        `yaml:"template_dir"`
}

// DisplayName returns the manifest name, falling back to the tool identifier
// (the manifest filename stem) when no name field is set.
func (m *Manifest) DisplayName(id string) string {
	if m.Name != "" {
		return m.Name
	}
	return id
}

// SelectedServices returns the compose service subset the manifest asks for:
// the single `service` value when set, else the `services` list, else nil
// (meaning all services).
func (m *Manifest) SelectedServices() []string {
	if m.Service != "" {
		return []string{m.Service}
	}
	if len(m.Services) > 0 {
		return m.Services
	}
	return nil
}

// =============================================================================
// Port Entries
// =============================================================================

// PortEntry is one host-to-container port mapping. Both sides stay strings
// so forms like "8080" and "514/udp" pass through untouched.
type PortEntry struct {
	Host        string
	Container   string
	Description string
}

// portRecord is the record form of a port entry. Key aliases mirror what
// manifests in the wild actually use.
type portRecord struct {
	Host        string `yaml:"host"`
	Src         string `yaml:"src"`
	Source      string `yaml:"source"`
	Container   string `yaml:"container"`
	Dst         string `yaml:"dst"`
	Destination string `yaml:"destination"`
	Description string `yaml:"description"`
}

// UnmarshalYAML accepts either the record form {host, container} (with
// src/source and dst/destination as aliases, plus an optional description)
// or the string form "HOST:CONTAINER". Anything else is a ParseError naming
// the offending entry.
func (p *PortEntry) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.ScalarNode:
		raw := value.Value
		if idx := strings.Index(raw, ":"); idx >= 0 {
			p.Host = strings.TrimSpace(raw[:idx])
			p.Container = strings.TrimSpace(raw[idx+1:])
			return nil
		}
	case yaml.MappingNode:
		var rec portRecord
		if err := value.Decode(&rec); err != nil {
			return NewParseError("ports", fmt.Sprintf("invalid port entry: %v", err), err)
		}
		host := firstNonEmpty(rec.Host, rec.Src, rec.Source)
		container := firstNonEmpty(rec.Container, rec.Dst, rec.Destination)
		if host != "" && container != "" {
			p.Host = host
			p.Container = container
			p.Description = rec.Description
			return nil
		}
	}
	return NewParseError("ports", fmt.Sprintf("unrecognized port format: %s", nodeText(value)), nil)
}

// =============================================================================
// Volume Entries
// =============================================================================

// VolumeEntry is one host-to-container volume mapping. Host is the raw
// manifest value; path normalization happens at .env generation time.
type VolumeEntry struct {
	Host      string
	Container string
}

type volumeRecord struct {
	Src         string `yaml:"src"`
	Source      string `yaml:"source"`
	Host        string `yaml:"host"`
	Dst         string `yaml:"dst"`
	Destination string `yaml:"destination"`
	Container   string `yaml:"container"`
}

// UnmarshalYAML accepts the record form {src, dst} (source/host and
// destination/container as aliases) or the string form "SRC:DST[:MODE]".
// A trailing mode segment such as ":ro" is recognized and dropped; it never
// leaks into the container path.
func (v *VolumeEntry) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.ScalarNode:
		raw := value.Value
		if idx := strings.Index(raw, ":"); idx >= 0 {
			right := raw[idx+1:]
			if modeIdx := strings.Index(right, ":"); modeIdx >= 0 {
				right = right[:modeIdx]
			}
			v.Host = strings.TrimSpace(raw[:idx])
			v.Container = strings.TrimSpace(right)
			return nil
		}
	case yaml.MappingNode:
		var rec volumeRecord
		if err := value.Decode(&rec); err != nil {
			return NewParseError("volumes", fmt.Sprintf("invalid volume entry: %v", err), err)
		}
		src := firstNonEmpty(rec.Src, rec.Source, rec.Host)
		dst := firstNonEmpty(rec.Dst, rec.Destination, rec.Container)
		if src != "" && dst != "" {
			v.Host = src
			v.Container = dst
			return nil
		}
	}
	return NewParseError("volumes", fmt.Sprintf("unrecognized volume format: %s", nodeText(value)), nil)
}

// =============================================================================
// Environment Entries
// =============================================================================

// EnvEntry is one KEY: VALUE pair from the manifest env mapping.
type EnvEntry struct {
	Key   string
	Value string
}

// EnvMap is the ordered env mapping. A plain map would lose document order,
// and order decides nothing here but keeps the generated .env stable across
// runs, which the idempotence guarantee depends on.
type EnvMap []EnvEntry

// UnmarshalYAML requires a mapping (or null, which yields an empty map).
// Null values are coerced to the empty string; non-scalar values are
// rejected.
func (m *EnvMap) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	if value.Tag == "!!null" {
		*m = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return NewParseError("env", "must be a mapping of KEY: VALUE pairs", nil)
	}
	entries := make(EnvMap, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := resolveAlias(value.Content[i])
		valNode := resolveAlias(value.Content[i+1])
		if valNode.Tag == "!!null" {
			entries = append(entries, EnvEntry{Key: keyNode.Value})
			continue
		}
		if valNode.Kind != yaml.ScalarNode {
			return NewParseError("env", fmt.Sprintf("value for %q must be a scalar", keyNode.Value), nil)
		}
		entries = append(entries, EnvEntry{Key: keyNode.Value, Value: valNode.Value})
	}
	*m = entries
	return nil
}

// Get returns the value for a key and whether it was present.
func (m EnvMap) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// =============================================================================
// Helpers
// =============================================================================

func resolveAlias(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// nodeText renders a YAML node compactly for error messages so the user
// sees the entry they wrote, not a decoder-internal description.
func nodeText(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return fmt.Sprintf("%q", n.Value)
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Sprintf("<%s node>", n.Tag)
	}
	return strings.Join(strings.Fields(string(out)), " ")
}
