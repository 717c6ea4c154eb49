package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fixture Content
// =============================================================================

const cowrieManifest = `name: cowrie
description: SSH/Telnet honeypot logging shell interaction
enabled: true
ports:
  - "2222:2222"
  - host: 2223
    container: 23
    description: telnet listener
volumes:
  - "./data/cowrie/log:/cowrie/cowrie-git/var/log/cowrie"
env:
  COWRIE_HOSTNAME: svr04
  TELNET_ENABLED: "true"
`

const cowrieCompose = `services:
  cowrie:
    build: .
    container_name: cowrie
    restart: always
    ports:
      - "2222:2222"
    volumes:
      - ./log:/cowrie/cowrie-git/var/log/cowrie
    environment:
      COWRIE_HOSTNAME: svr03
`

const cowrieDockerfile = `FROM alpine:3.20
CMD ["sleep", "infinity"]
`

// dionaeaManifest exercises service selection and the image override on a
// template with more than one service.
const dionaeaManifest = `name: dionaea
enabled: false
service: dionaea
image: dinotools/dionaea:latest
ports:
  - "21:21"
volumes:
  - src: ./data/dionaea/binaries
    dst: /opt/dionaea/var/binaries
`

const dionaeaCompose = `services:
  dionaea:
    build: .
    ports:
      - "21:21"
  sidecar:
    image: busybox:stable
    command: ["sleep", "infinity"]
`

// =============================================================================
// Filesystem Helpers
// =============================================================================

// writeManifest drops a manifest file into the project's tools directory.
func writeManifest(t *testing.T, id, content string) {
	t.Helper()
	path := filepath.Join(projectRoot, "tools", id+".yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeTemplate creates a per-tool template directory with a compose file
// and Dockerfile.
func writeTemplate(t *testing.T, id, composeContent string) {
	t.Helper()
	dir := filepath.Join(projectRoot, "template", "docker", id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte(composeContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte(cowrieDockerfile), 0o644))
}

// readWorkspaceFile reads a file from an imported tool's workspace.
func readWorkspaceFile(t *testing.T, id, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(projectRoot, "docker", id, name))
	require.NoError(t, err)
	return string(data)
}

// resetWorkspace drops any imported workspace for a tool so tests do not
// depend on each other's leftovers.
func resetWorkspace(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, os.RemoveAll(filepath.Join(projectRoot, "docker", id)))
}
