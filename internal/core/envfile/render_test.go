package envfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
)

const cowrieManifest = `
name: cowrie
ports:
  - "2222:22"
volumes:
  - "./data/cowrie:/cowrie/var"
env:
  TELNET_ENABLED: "true"
`

func parseManifest(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

// =============================================================================
// Render Tests
// =============================================================================

func TestRender_CowrieLayout(t *testing.T) {
	m := parseManifest(t, cowrieManifest)
	content, err := Render("cowrie", m, testNormalizer())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "# Auto-generated by hpone for cowrie", lines[0])
	assert.Equal(t, "COWRIE_PORT1_SRC=2222", lines[1])
	assert.Equal(t, "COWRIE_PORT1_DST=22", lines[2])
	assert.Equal(t, "COWRIE_VOL1_SRC=/opt/hpone/data/cowrie", lines[3])
	assert.Equal(t, "COWRIE_VOL1_DST=/cowrie/var", lines[4])
	assert.Equal(t, "COWRIE_TELNET_ENABLED=true", lines[5])
}

func TestRender_Deterministic(t *testing.T) {
	m := parseManifest(t, cowrieManifest)
	first, err := Render("cowrie", m, testNormalizer())
	require.NoError(t, err)
	second, err := Render("cowrie", m, testNormalizer())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_TrailingNewline(t *testing.T) {
	m := parseManifest(t, cowrieManifest)
	content, err := Render("cowrie", m, testNormalizer())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(content), "\n"))
	assert.False(t, strings.HasSuffix(string(content), "\n\n"))
}

func TestRender_PreservesManifestOrder(t *testing.T) {
	doc := `
name: multi
ports:
  - "2222:22"
  - "8080:80"
env:
  Z_KEY: z
  A_KEY: a
`
	m := parseManifest(t, doc)
	content, err := Render("multi", m, testNormalizer())
	require.NoError(t, err)

	text := string(content)
	assert.Less(t, strings.Index(text, "MULTI_PORT1_SRC=2222"), strings.Index(text, "MULTI_PORT2_SRC=8080"))
	assert.Less(t, strings.Index(text, "MULTI_Z_KEY=z"), strings.Index(text, "MULTI_A_KEY=a"))
}

func TestRender_EmptyManifest(t *testing.T) {
	content, err := Render("bare", &manifest.Manifest{}, testNormalizer())
	require.NoError(t, err)
	assert.Equal(t, "# Auto-generated by hpone for bare\n", string(content))
}

func TestRender_UnnameablePrefix(t *testing.T) {
	_, err := Render("---", &manifest.Manifest{}, testNormalizer())
	require.Error(t, err)

	var pe *manifest.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "name", pe.Field)
}

// =============================================================================
// Vars / HostVolumePaths Tests
// =============================================================================

func TestVars_MatchesRenderedLines(t *testing.T) {
	m := parseManifest(t, cowrieManifest)
	vars := Vars("cowrie", m, testNormalizer())

	assert.Equal(t, "2222", vars["COWRIE_PORT1_SRC"])
	assert.Equal(t, "22", vars["COWRIE_PORT1_DST"])
	assert.Equal(t, "/opt/hpone/data/cowrie", vars["COWRIE_VOL1_SRC"])
	assert.Equal(t, "/cowrie/var", vars["COWRIE_VOL1_DST"])
	assert.Equal(t, "true", vars["COWRIE_TELNET_ENABLED"])
	assert.Len(t, vars, 5)
}

func TestHostVolumePaths(t *testing.T) {
	m := parseManifest(t, cowrieManifest)
	assert.Equal(t, []string{"/opt/hpone/data/cowrie"}, HostVolumePaths(m, testNormalizer()))
}

func TestHostVolumePaths_NoVolumes(t *testing.T) {
	assert.Empty(t, HostVolumePaths(&manifest.Manifest{}, testNormalizer()))
}
