package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const cowrieCompose = `
services:
  cowrie:
    image: cowrie/cowrie:stable
    restart: always
    ports:
      - "2222:2222"
    volumes:
      - ./dl:/cowrie/dl
    environment:
      EXISTING: keep
      TELNET_ENABLED: "false"
networks:
  default:
    driver: bridge
`

const multiServiceCompose = `
services:
  tanner:
    image: dtagdevsec/tanner:latest
  snare:
    image: dtagdevsec/snare:latest
  redis:
    image: redis:alpine
`

const listEnvCompose = `
services:
  heralding:
    image: heralding:latest
    environment:
      - "EXISTING=keep"
      - "TELNET_ENABLED=false"
      - "BARE_FLAG"
`

func cowrieTestManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(`
name: cowrie
ports:
  - "2222:22"
volumes:
  - "./data/cowrie:/cowrie/var"
env:
  TELNET_ENABLED: "true"
`))
	require.NoError(t, err)
	return m
}

func decodeServices(t *testing.T, content []byte) map[string]map[string]interface{} {
	t.Helper()
	var doc struct {
		Services map[string]map[string]interface{} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(content, &doc))
	return doc.Services
}

// =============================================================================
// Replacement Tests
// =============================================================================

func TestRewrite_ReplacesPortsAndVolumes(t *testing.T) {
	out, err := Rewrite([]byte(cowrieCompose), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)

	svc := decodeServices(t, out)["cowrie"]
	require.NotNil(t, svc)
	assert.Equal(t, []interface{}{"${COWRIE_PORT1_SRC}:${COWRIE_PORT1_DST}"}, svc["ports"])
	assert.Equal(t, []interface{}{"${COWRIE_VOL1_SRC}:${COWRIE_VOL1_DST}"}, svc["volumes"])
}

func TestRewrite_MergesEnvironmentManifestWins(t *testing.T) {
	out, err := Rewrite([]byte(cowrieCompose), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)

	env := decodeServices(t, out)["cowrie"]["environment"].(map[string]interface{})
	assert.Equal(t, "keep", env["EXISTING"])
	assert.Equal(t, "${COWRIE_TELNET_ENABLED}", env["TELNET_ENABLED"])
}

func TestRewrite_ListEnvironmentConvertsToMapping(t *testing.T) {
	m, err := manifest.Parse([]byte("name: heralding\nenv:\n  TELNET_ENABLED: \"true\"\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte(listEnvCompose), "heralding", m)
	require.NoError(t, err)

	env := decodeServices(t, out)["heralding"]["environment"].(map[string]interface{})
	assert.Equal(t, "keep", env["EXISTING"])
	assert.Equal(t, "${HERALDING_TELNET_ENABLED}", env["TELNET_ENABLED"])
	// Entries without "=" have no key to merge under
	assert.NotContains(t, env, "BARE_FLAG")
}

func TestRewrite_SetsEnvironmentWhenAbsent(t *testing.T) {
	m, err := manifest.Parse([]byte("name: redis\nenv:\n  MAXMEMORY: 64mb\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte("services:\n  redis:\n    image: redis:alpine\n"), "redis", m)
	require.NoError(t, err)

	env := decodeServices(t, out)["redis"]["environment"].(map[string]interface{})
	assert.Equal(t, "${REDIS_MAXMEMORY}", env["MAXMEMORY"])
}

func TestRewrite_ImageOverrideIsLiteral(t *testing.T) {
	m := cowrieTestManifest(t)
	m.Image = "  cowrie/cowrie:v2.5.0  "

	out, err := Rewrite([]byte(cowrieCompose), "cowrie", m)
	require.NoError(t, err)

	svc := decodeServices(t, out)["cowrie"]
	assert.Equal(t, "cowrie/cowrie:v2.5.0", svc["image"])
}

func TestRewrite_NoPortsLeavesExistingPorts(t *testing.T) {
	m, err := manifest.Parse([]byte("name: cowrie\nenv:\n  TELNET_ENABLED: \"true\"\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte(cowrieCompose), "cowrie", m)
	require.NoError(t, err)

	svc := decodeServices(t, out)["cowrie"]
	assert.Equal(t, []interface{}{"2222:2222"}, svc["ports"])
	assert.Equal(t, []interface{}{"./dl:/cowrie/dl"}, svc["volumes"])
}

// =============================================================================
// Service Subset Tests
// =============================================================================

func TestRewrite_SingleServiceSubset(t *testing.T) {
	m, err := manifest.Parse([]byte("name: tanner\nservice: tanner\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte(multiServiceCompose), "tanner", m)
	require.NoError(t, err)

	services := decodeServices(t, out)
	assert.Len(t, services, 1)
	assert.Contains(t, services, "tanner")
}

func TestRewrite_MultiServiceSubsetKeepsSelectionOrder(t *testing.T) {
	m, err := manifest.Parse([]byte("name: tanner\nservices:\n  - redis\n  - tanner\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte(multiServiceCompose), "tanner", m)
	require.NoError(t, err)

	services := decodeServices(t, out)
	assert.Len(t, services, 2)
	assert.Contains(t, services, "tanner")
	assert.Contains(t, services, "redis")
	assert.Less(t, strings.Index(string(out), "redis:"), strings.Index(string(out), "tanner:"))
}

func TestRewrite_SubsetNoMatchKeepsAllServices(t *testing.T) {
	m, err := manifest.Parse([]byte("name: tanner\nservice: nope\n"))
	require.NoError(t, err)

	out, err := Rewrite([]byte(multiServiceCompose), "tanner", m)
	require.NoError(t, err)

	assert.Len(t, decodeServices(t, out), 3)
}

// =============================================================================
// Structure Preservation Tests
// =============================================================================

func TestRewrite_PreservesUnrelatedKeys(t *testing.T) {
	out, err := Rewrite([]byte(cowrieCompose), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "restart: always")
	assert.Contains(t, text, "networks:")
	assert.Contains(t, text, "driver: bridge")
}

func TestRewrite_PreservesKeyOrder(t *testing.T) {
	out, err := Rewrite([]byte(cowrieCompose), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, "image:"), strings.Index(text, "restart:"))
	assert.Less(t, strings.Index(text, "restart:"), strings.Index(text, "ports:"))
	assert.Less(t, strings.Index(text, "services:"), strings.Index(text, "networks:"))
	// Existing env keys keep their slot; merged values land in place
	assert.Less(t, strings.Index(text, "EXISTING:"), strings.Index(text, "TELNET_ENABLED:"))
}

func TestRewrite_Idempotent(t *testing.T) {
	m := cowrieTestManifest(t)
	once, err := Rewrite([]byte(cowrieCompose), "cowrie", m)
	require.NoError(t, err)
	twice, err := Rewrite(once, "cowrie", m)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

// =============================================================================
// No-op Tests
// =============================================================================

func TestRewrite_EmptyDocumentUntouched(t *testing.T) {
	out, err := Rewrite([]byte(""), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)
	assert.Equal(t, "", string(out))
}

func TestRewrite_NonMappingUntouched(t *testing.T) {
	in := "- just\n- a\n- list\n"
	out, err := Rewrite([]byte(in), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRewrite_NoServicesUntouched(t *testing.T) {
	in := "version: \"3\"\nvolumes:\n  data:\n"
	out, err := Rewrite([]byte(in), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRewrite_EmptyServicesUntouched(t *testing.T) {
	in := "services: {}\n"
	out, err := Rewrite([]byte(in), "cowrie", cowrieTestManifest(t))
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRewrite_InvalidYAML(t *testing.T) {
	_, err := Rewrite([]byte("services: [unclosed"), "cowrie", cowrieTestManifest(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}
