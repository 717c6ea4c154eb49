package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cowrieManifest = `# Cowrie SSH/Telnet honeypot.
name: Cowrie
description: Medium interaction SSH and Telnet honeypot
enabled: true

ports:
  - "2222:2222"

volumes:
  - ./data/cowrie/log:/cowrie/cowrie-git/var/log/cowrie

env:
  COWRIE_TELNET_ENABLED: "yes"
`

const dionaeaManifest = `name: Dionaea
description: Low interaction multi-protocol honeypot
enabled: false
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// Resolution
// =============================================================================

func TestResolve_ByFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "cowrie.yml", cowrieManifest)

	tool, err := New(dir).Resolve("cowrie")
	require.NoError(t, err)

	assert.Equal(t, "cowrie", tool.ID)
	assert.Equal(t, "Cowrie", tool.Name)
	assert.Equal(t, path, tool.Path)
	assert.True(t, tool.Manifest.Enabled)
}

func TestResolve_ByDisplayName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	writeManifest(t, dir, "dionaea.yml", dionaeaManifest)

	// Display-name lookup is case-insensitive and falls back when no file
	// matches the identifier directly.
	tool, err := New(dir).Resolve("COWRIE")
	require.NoError(t, err)
	assert.Equal(t, "cowrie", tool.ID)

	tool, err = New(dir).Resolve("dionaea")
	require.NoError(t, err)
	assert.Equal(t, "Dionaea", tool.Name)
}

func TestResolve_PrefersFilenameOverName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", "name: Heralding\nenabled: true\n")
	writeManifest(t, dir, "heralding.yml", "name: Cowrie\nenabled: false\n")

	tool, err := New(dir).Resolve("cowrie")
	require.NoError(t, err)
	assert.Equal(t, "cowrie", tool.ID)
	assert.Equal(t, "Heralding", tool.Name)
}

func TestResolve_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)

	_, err := New(dir).Resolve("glastopf")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "Resolve", storeErr.Op)
	assert.Equal(t, "glastopf", storeErr.ID)
}

func TestResolve_BrokenManifestSurfacesParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "broken.yml", "ports:\n  - {host: 80\n")

	_, err := New(dir).Resolve("broken")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

// =============================================================================
// Listing
// =============================================================================

func TestList_SortedByID(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "dionaea.yml", dionaeaManifest)
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	writeManifest(t, dir, "adbhoney.yml", "name: ADBHoney\nenabled: true\n")

	tools, err := New(dir).List()
	require.NoError(t, err)
	require.Len(t, tools, 3)

	assert.Equal(t, "adbhoney", tools[0].ID)
	assert.Equal(t, "cowrie", tools[1].ID)
	assert.Equal(t, "dionaea", tools[2].ID)
}

func TestList_SkipsBrokenAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	writeManifest(t, dir, "broken.yml", "env:\n  - just-a-list-item\n")
	writeManifest(t, dir, "README.md", "# not a manifest\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yml"), 0o755))

	tools, err := New(dir).List()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "cowrie", tools[0].ID)
}

func TestList_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "List", storeErr.Op)
}

func TestListEnabled(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	writeManifest(t, dir, "dionaea.yml", dionaeaManifest)

	tools, err := New(dir).ListEnabled()
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "cowrie", tools[0].ID)
}

func TestIsEnabled(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	writeManifest(t, dir, "dionaea.yml", dionaeaManifest)

	s := New(dir)
	assert.True(t, s.IsEnabled("cowrie"))
	assert.False(t, s.IsEnabled("dionaea"))
	assert.False(t, s.IsEnabled("glastopf"))
}

// =============================================================================
// Enable / Disable
// =============================================================================

func TestSetEnabled_FlipsFieldInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "cowrie.yml", cowrieManifest)
	s := New(dir)

	require.NoError(t, s.SetEnabled("cowrie", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "enabled: false")
	assert.NotContains(t, text, "enabled: true")
	assert.False(t, s.IsEnabled("cowrie"))

	require.NoError(t, s.SetEnabled("cowrie", true))
	assert.True(t, s.IsEnabled("cowrie"))
}

func TestSetEnabled_PreservesCommentsAndOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "cowrie.yml", cowrieManifest)

	require.NoError(t, New(dir).SetEnabled("cowrie", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# Cowrie SSH/Telnet honeypot.")
	assert.Contains(t, text, "COWRIE_TELNET_ENABLED")

	nameIdx := strings.Index(text, "name:")
	enabledIdx := strings.Index(text, "enabled:")
	portsIdx := strings.Index(text, "ports:")
	require.True(t, nameIdx >= 0 && enabledIdx >= 0 && portsIdx >= 0)
	assert.Less(t, nameIdx, enabledIdx)
	assert.Less(t, enabledIdx, portsIdx)
}

func TestSetEnabled_AddsMissingField(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "glutton.yml", "name: Glutton\ndescription: All ports\n")
	s := New(dir)

	require.NoError(t, s.SetEnabled("glutton", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enabled: true")
	assert.True(t, s.IsEnabled("glutton"))
}

func TestSetEnabled_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "bare.yml", "")
	s := New(dir)

	require.NoError(t, s.SetEnabled("bare", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enabled: true")
}

func TestSetEnabled_NotFound(t *testing.T) {
	err := New(t.TempDir()).SetEnabled("glastopf", true)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
