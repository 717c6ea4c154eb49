package compose

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
	"github.com/ariafatah0711/HPone/internal/core/naming"
)

// =============================================================================
// Compose Rewriting
// =============================================================================

// Rewrite edits a tool's copied compose document so its ports, volumes,
// environment and image are driven by the generated .env instead of the
// template's hard-coded values. The document is edited as a node tree, so
// key order, unrelated keys and comments survive the round trip.
//
// Steps:
//  1. If the document is not a mapping or has no services, return it untouched.
//  2. If the manifest selects a service subset and at least one name matches,
//     drop the other services; on no match keep the full set.
//  3. For every remaining service: replace ports/volumes wholesale with
//     ${PREFIX_PORTn_SRC}:${PREFIX_PORTn_DST} style expressions (only when
//     the manifest declares any), merge the namespaced environment (manifest
//     keys win, other keys survive), and force the image override if set.
//
// Running it twice with the same manifest produces the same document; the
// replacement is never additive.
func Rewrite(content []byte, resolvedName string, m *manifest.Manifest) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, NewParseError("", fmt.Sprintf("invalid YAML syntax: %v", err), ErrInvalidYAML)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return content, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return content, nil
	}
	services := mappingValue(root, "services")
	if services == nil || services.Kind != yaml.MappingNode || len(services.Content) == 0 {
		return content, nil
	}

	if selected := m.SelectedServices(); len(selected) > 0 {
		applyServiceSubset(services, selected)
	}

	prefix := naming.VarPrefix(resolvedName)

	var portExprs []string
	for i := range m.Ports {
		portExprs = append(portExprs, naming.Placeholder(naming.PortSrcVar(prefix, i+1))+":"+naming.Placeholder(naming.PortDstVar(prefix, i+1)))
	}
	var volExprs []string
	for i := range m.Volumes {
		volExprs = append(volExprs, naming.Placeholder(naming.VolSrcVar(prefix, i+1))+":"+naming.Placeholder(naming.VolDstVar(prefix, i+1)))
	}
	envExprs := make([]manifest.EnvEntry, 0, len(m.Env))
	for _, e := range m.Env {
		envExprs = append(envExprs, manifest.EnvEntry{
			Key:   e.Key,
			Value: naming.Placeholder(naming.EnvVar(prefix, e.Key)),
		})
	}
	image := trimmedImage(m)

	for i := 0; i+1 < len(services.Content); i += 2 {
		svc := resolveAlias(services.Content[i+1])
		if svc.Kind != yaml.MappingNode {
			continue
		}
		if len(portExprs) > 0 {
			setMappingValue(svc, "ports", quotedSequence(portExprs))
		}
		if len(volExprs) > 0 {
			setMappingValue(svc, "volumes", quotedSequence(volExprs))
		}
		if len(envExprs) > 0 {
			mergeEnvironment(svc, envExprs)
		}
		if image != "" {
			setMappingValue(svc, "image", plainScalar(image))
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, NewParseError("", fmt.Sprintf("re-encoding compose document: %v", err), err)
	}
	if err := enc.Close(); err != nil {
		return nil, NewParseError("", fmt.Sprintf("re-encoding compose document: %v", err), err)
	}
	return buf.Bytes(), nil
}

func trimmedImage(m *manifest.Manifest) string {
	return strings.TrimSpace(m.Image)
}

// applyServiceSubset narrows the services mapping to the selected names.
// The kept entries follow selection order, matching how the .env variables
// were derived. An empty intersection leaves the document alone so a typo in
// the manifest never produces a compose file with zero services.
func applyServiceSubset(services *yaml.Node, selected []string) {
	var filtered []*yaml.Node
	for _, name := range selected {
		for i := 0; i+1 < len(services.Content); i += 2 {
			keyNode := services.Content[i]
			valNode := resolveAlias(services.Content[i+1])
			if keyNode.Value == name && valNode.Kind == yaml.MappingNode {
				filtered = append(filtered, services.Content[i], services.Content[i+1])
				break
			}
		}
	}
	if len(filtered) > 0 {
		services.Content = filtered
	}
}

// mergeEnvironment overlays the namespaced env expressions onto a service's
// environment. A mapping keeps its key order with new keys appended; a list
// of KEY=VALUE strings is converted to a mapping first (entries without "="
// are dropped); anything else is replaced outright.
func mergeEnvironment(svc *yaml.Node, envExprs []manifest.EnvEntry) {
	current := mappingValue(svc, "environment")

	switch {
	case current != nil && current.Kind == yaml.MappingNode:
		for _, e := range envExprs {
			setMappingValue(current, e.Key, quotedScalar(e.Value))
		}

	case current != nil && current.Kind == yaml.SequenceNode:
		merged := emptyMapping()
		for _, item := range current.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				continue
			}
			if k, v, ok := splitKeyValue(item.Value); ok {
				setMappingValue(merged, k, quotedScalar(v))
			}
		}
		for _, e := range envExprs {
			setMappingValue(merged, e.Key, quotedScalar(e.Value))
		}
		setMappingValue(svc, "environment", merged)

	default:
		merged := emptyMapping()
		for _, e := range envExprs {
			setMappingValue(merged, e.Key, quotedScalar(e.Value))
		}
		setMappingValue(svc, "environment", merged)
	}
}

func splitKeyValue(s string) (key, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// =============================================================================
// Node Helpers
// =============================================================================

func resolveAlias(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

// mappingValue returns the value node for a key in a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolveAlias(mapping.Content[i+1])
		}
	}
	return nil
}

// setMappingValue replaces the value for a key in place, or appends the pair
// when the key is absent.
func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, plainScalar(key), value)
}

func emptyMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func plainScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func quotedScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
}

func quotedSequence(values []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, quotedScalar(v))
	}
	return seq
}
