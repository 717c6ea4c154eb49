package manifest

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ariafatah0711/HPone/internal/core/naming"
)

// =============================================================================
// Parsing
// =============================================================================

// Parse decodes one manifest document and validates it.
//
// An empty or null document is a valid manifest with all defaults (a tool
// with no ports, no volumes, not enabled). Any malformed entry surfaces as a
// *ParseError here; code past this point can rely on the schema.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewParseError("", fmt.Sprintf("invalid YAML syntax: %v", err), fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Manifest{}, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Tag == "!!null" {
		return &Manifest{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, NewParseError("", ErrNotMapping.Error(), ErrNotMapping)
	}

	var m Manifest
	if err := root.Decode(&m); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, NewParseError("", err.Error(), err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks cross-field rules the schema cannot express.
//
// Env keys must stay distinct after normalization: "a-b" and "a.b" both
// become A_B, and letting one silently overwrite the other in the generated
// .env would hide a manifest bug.
func (m *Manifest) Validate() error {
	seen := make(map[string]string, len(m.Env))
	for _, e := range m.Env {
		id := naming.SanitizeEnvKey(e.Key)
		if id == "" {
			return NewParseError("env", fmt.Sprintf("key %q normalizes to an empty variable name", e.Key), nil)
		}
		if prev, ok := seen[id]; ok {
			return NewParseError("env", fmt.Sprintf("keys %q and %q both normalize to %s", prev, e.Key, id), nil)
		}
		seen[id] = e.Key
	}
	return nil
}
