// Package e2e provides end-to-end tests for HPone.
//
// These tests run the real import pipeline against a throwaway project
// tree: manifests are resolved from disk, templates are copied, .env files
// are generated and compose documents rewritten, exactly as the CLI does
// it. Lifecycle tests additionally require a working docker installation
// and skip themselves when none is present. Run with:
//
//	go test -v -timeout 10m ./tests/e2e/...
package e2e

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariafatah0711/HPone/internal/core/envfile"
	"github.com/ariafatah0711/HPone/internal/shell/docker"
	"github.com/ariafatah0711/HPone/internal/shell/store"
	"github.com/ariafatah0711/HPone/internal/shell/workspace"
)

// =============================================================================
// Test Globals
// =============================================================================

var (
	projectRoot string
	testStore   *store.Store
	testWS      *workspace.Manager
	testCompose *docker.Compose
	testLogger  *slog.Logger
)

// =============================================================================
// TestMain Setup
// =============================================================================

func TestMain(m *testing.M) {
	code := setup()
	if code != 0 {
		os.Exit(code)
	}

	result := m.Run()

	teardown()

	os.Exit(result)
}

func setup() int {
	root, err := os.MkdirTemp("", "hpone-e2e-*")
	if err != nil {
		log.Printf("creating project root: %v", err)
		return 1
	}
	projectRoot = root

	for _, dir := range []string{
		filepath.Join(root, "tools"),
		filepath.Join(root, "template", "docker"),
		filepath.Join(root, "docker"),
		filepath.Join(root, "data"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("creating %s: %v", dir, err)
			return 1
		}
	}

	if err := seedFixtures(root); err != nil {
		log.Printf("seeding fixtures: %v", err)
		return 1
	}

	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	testStore = store.New(filepath.Join(root, "tools"))
	norm := envfile.Normalizer{
		ProjectRoot: root,
		HomeDir:     root,
		Env:         os.LookupEnv,
	}
	testWS = workspace.NewManager(testStore,
		filepath.Join(root, "template", "docker"),
		filepath.Join(root, "docker"),
		norm, testLogger)
	testCompose = docker.NewCompose(docker.ComposeOptions{
		Ephemeral: false,
		Timeout:   5 * time.Minute,
	}, testLogger)

	return 0
}

// seedFixtures writes the manifests and templates every suite relies on.
func seedFixtures(root string) error {
	files := map[string]string{
		filepath.Join(root, "tools", "cowrie.yml"):  cowrieManifest,
		filepath.Join(root, "tools", "dionaea.yml"): dionaeaManifest,

		filepath.Join(root, "template", "docker", "cowrie", "docker-compose.yml"):  cowrieCompose,
		filepath.Join(root, "template", "docker", "cowrie", "Dockerfile"):          cowrieDockerfile,
		filepath.Join(root, "template", "docker", "dionaea", "docker-compose.yml"): dionaeaCompose,
		filepath.Join(root, "template", "docker", "dionaea", "Dockerfile"):         cowrieDockerfile,
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func teardown() {
	if projectRoot != "" {
		os.RemoveAll(projectRoot)
	}
}

// =============================================================================
// Import Pipeline Tests
// =============================================================================

func TestE2E_Import_GeneratesWorkspace(t *testing.T) {
	resetWorkspace(t, "cowrie")

	dest, err := testWS.Import("cowrie", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(projectRoot, "docker", "cowrie"), dest)
	assert.True(t, testWS.IsImported("cowrie"))

	// Template files arrived.
	assert.FileExists(t, filepath.Join(dest, "Dockerfile"))
	assert.FileExists(t, filepath.Join(dest, "docker-compose.yml"))

	// The manifest's host volume directory was pre-created.
	assert.DirExists(t, filepath.Join(projectRoot, "data", "cowrie", "log"))

	imported, err := testWS.ListImported()
	require.NoError(t, err)
	assert.Contains(t, imported, "cowrie")
}

func TestE2E_Import_EnvFileContent(t *testing.T) {
	resetWorkspace(t, "cowrie")

	_, err := testWS.Import("cowrie", false)
	require.NoError(t, err)

	want := fmt.Sprintf(`# Auto-generated by hpone for cowrie
COWRIE_PORT1_SRC=2222
COWRIE_PORT1_DST=2222
COWRIE_PORT2_SRC=2223
COWRIE_PORT2_DST=23
COWRIE_VOL1_SRC=%s
COWRIE_VOL1_DST=/cowrie/cowrie-git/var/log/cowrie
COWRIE_COWRIE_HOSTNAME=svr04
COWRIE_TELNET_ENABLED=true
`, filepath.Join(projectRoot, "data", "cowrie", "log"))

	assert.Equal(t, want, readWorkspaceFile(t, "cowrie", ".env"))
}

func TestE2E_Import_RewritesCompose(t *testing.T) {
	resetWorkspace(t, "cowrie")

	_, err := testWS.Import("cowrie", false)
	require.NoError(t, err)

	rewritten := readWorkspaceFile(t, "cowrie", "docker-compose.yml")
	assert.Contains(t, rewritten, "${COWRIE_PORT1_SRC}:${COWRIE_PORT1_DST}")
	assert.Contains(t, rewritten, "${COWRIE_VOL1_SRC}:${COWRIE_VOL1_DST}")
	assert.Contains(t, rewritten, "${COWRIE_COWRIE_HOSTNAME}")
	// Keys the manifest does not drive survive the rewrite.
	assert.Contains(t, rewritten, "container_name: cowrie")
	assert.Contains(t, rewritten, "restart: always")
}

func TestE2E_Import_ExistingWorkspaceNeedsForce(t *testing.T) {
	resetWorkspace(t, "cowrie")

	_, err := testWS.Import("cowrie", false)
	require.NoError(t, err)

	_, err = testWS.Import("cowrie", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrExists)

	_, err = testWS.Import("cowrie", true)
	assert.NoError(t, err)
}

func TestE2E_Import_Deterministic(t *testing.T) {
	resetWorkspace(t, "cowrie")

	_, err := testWS.Import("cowrie", true)
	require.NoError(t, err)
	first := readWorkspaceFile(t, "cowrie", ".env")

	_, err = testWS.Import("cowrie", true)
	require.NoError(t, err)

	assert.Equal(t, first, readWorkspaceFile(t, "cowrie", ".env"))
}

func TestE2E_Import_UnknownTool(t *testing.T) {
	_, err := testWS.Import("no-such-tool", false)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestE2E_Import_MissingTemplateListsAvailable(t *testing.T) {
	writeManifest(t, "orphan", "name: orphan\nenabled: false\n")

	_, err := testWS.Import("orphan", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "cowrie")
	assert.Contains(t, err.Error(), "dionaea")
}

// =============================================================================
// Service Selection Tests
// =============================================================================

func TestE2E_Import_ServiceSubsetAndImageOverride(t *testing.T) {
	resetWorkspace(t, "dionaea")

	_, err := testWS.Import("dionaea", false)
	require.NoError(t, err)

	rewritten := readWorkspaceFile(t, "dionaea", "docker-compose.yml")
	assert.Contains(t, rewritten, "dionaea:")
	assert.NotContains(t, rewritten, "sidecar:")
	assert.Contains(t, rewritten, "image: dinotools/dionaea:latest")
	assert.Contains(t, rewritten, "${DIONAEA_PORT1_SRC}:${DIONAEA_PORT1_DST}")
}
