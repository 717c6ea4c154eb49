package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
)

// =============================================================================
// Store
// =============================================================================

// Store reads and edits tool manifests. One manifest file per tool, named
// `<id>.yml`, inside a single directory. Nothing is cached: every call
// re-reads from disk, so concurrent edits by the user are always picked up.
type Store struct {
	dir string
}

// New creates a manifest store over a directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the manifest directory.
func (s *Store) Dir() string {
	return s.dir
}

// Tool is a resolved manifest.
type Tool struct {
	// ID is the canonical tool identifier: the manifest filename stem.
	// Workspace and data directories are keyed by it.
	ID string
	// Name is the display name (manifest `name`, falling back to ID).
	Name string
	// Path is the manifest file location.
	Path string

	Manifest *manifest.Manifest
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve finds a tool by identifier: first the literal filename
// `<id>.yml`, then a case-insensitive match on the `name` field across all
// manifests. Returns ErrNotFound when neither matches.
func (s *Store) Resolve(id string) (*Tool, error) {
	explicit := filepath.Join(s.dir, id+".yml")
	if _, err := os.Stat(explicit); err == nil {
		return s.loadFile(explicit)
	}

	paths, err := s.manifestPaths()
	if err != nil {
		return nil, NewStoreError("Resolve", "manifest", id, "reading manifest directory", err)
	}
	for _, path := range paths {
		tool, err := s.loadFile(path)
		if err != nil {
			continue
		}
		if strings.EqualFold(tool.Manifest.Name, id) {
			return tool, nil
		}
	}

	return nil, NewStoreError("Resolve", "manifest", id,
		fmt.Sprintf("no manifest named %s.yml in %s and no manifest with name: %s", id, s.dir, id), ErrNotFound)
}

// List returns every parseable manifest, sorted by identifier. Files that
// fail to parse are skipped so one broken manifest cannot hide the rest of
// the listing; resolving that tool directly still reports its parse error.
func (s *Store) List() ([]*Tool, error) {
	paths, err := s.manifestPaths()
	if err != nil {
		return nil, NewStoreError("List", "manifest", "", "reading manifest directory", err)
	}

	tools := make([]*Tool, 0, len(paths))
	for _, path := range paths {
		tool, err := s.loadFile(path)
		if err != nil {
			continue
		}
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].ID < tools[j].ID })
	return tools, nil
}

// ListEnabled returns the enabled subset of List, in the same order.
func (s *Store) ListEnabled() ([]*Tool, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	enabled := make([]*Tool, 0, len(all))
	for _, t := range all {
		if t.Manifest.Enabled {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// IsEnabled reports whether a tool resolves and is enabled. Unknown tools
// are simply not enabled.
func (s *Store) IsEnabled(id string) bool {
	tool, err := s.Resolve(id)
	if err != nil {
		return false
	}
	return tool.Manifest.Enabled
}

// =============================================================================
// Enable / Disable
// =============================================================================

// SetEnabled flips the `enabled` field of a tool's manifest file in place.
// The file is edited as a node tree: comments, key order and everything
// unrelated survive the toggle.
func (s *Store) SetEnabled(id string, enabled bool) error {
	tool, err := s.Resolve(id)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(tool.Path)
	if err != nil {
		return NewStoreError("SetEnabled", "manifest", id, "reading manifest file", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return NewStoreError("SetEnabled", "manifest", id, "parsing manifest file", err)
	}

	boolNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", enabled)}
	switch {
	case doc.Kind == 0 || len(doc.Content) == 0:
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind:    yaml.MappingNode,
				Tag:     "!!map",
				Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: "enabled"}, boolNode},
			}},
		}
	default:
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return NewStoreError("SetEnabled", "manifest", id, ErrNotMapping.Error(), ErrNotMapping)
		}
		setMappingValue(root, "enabled", boolNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return NewStoreError("SetEnabled", "manifest", id, "re-encoding manifest file", err)
	}
	if err := enc.Close(); err != nil {
		return NewStoreError("SetEnabled", "manifest", id, "re-encoding manifest file", err)
	}

	if err := os.WriteFile(tool.Path, buf.Bytes(), 0o644); err != nil {
		return NewStoreError("SetEnabled", "manifest", id, "writing manifest file", err)
	}
	return nil
}

// =============================================================================
// Internals
// =============================================================================

func (s *Store) loadFile(path string) (*Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewStoreError("Load", "manifest", "", "reading manifest file", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(path), ".yml")
	return &Tool{
		ID:       id,
		Name:     m.DisplayName(id),
		Path:     path,
		Manifest: m,
	}, nil
}

func (s *Store) manifestPaths() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

// IsNotFound reports whether an error means the tool does not exist, as
// opposed to existing with a broken manifest.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
