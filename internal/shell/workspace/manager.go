// Package workspace materializes tool templates into per-tool deployment
// directories and keeps their generated files in sync with the manifest.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariafatah0711/HPone/internal/core/compose"
	"github.com/ariafatah0711/HPone/internal/core/envfile"
	"github.com/ariafatah0711/HPone/internal/core/manifest"
	"github.com/ariafatah0711/HPone/internal/shell/store"
)

// =============================================================================
// Manager - Materializes Tool Workspaces
// =============================================================================

// Manager imports tool templates into the output directory. Each tool gets
// one workspace, `<output>/<id>`, holding the copied template plus the
// generated .env and the rewritten docker-compose.yml.
type Manager struct {
	store        *store.Store
	templateRoot string
	outputRoot   string
	norm         envfile.Normalizer
	logger       *slog.Logger
}

// NewManager creates a workspace manager.
func NewManager(st *store.Store, templateRoot, outputRoot string, norm envfile.Normalizer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:        st,
		templateRoot: templateRoot,
		outputRoot:   outputRoot,
		norm:         norm,
		logger:       logger,
	}
}

// Dir returns the workspace directory for a tool.
func (m *Manager) Dir(id string) string {
	return filepath.Join(m.outputRoot, id)
}

// ComposePath returns the compose file location inside a tool's workspace.
func (m *Manager) ComposePath(id string) string {
	return filepath.Join(m.outputRoot, id, "docker-compose.yml")
}

// EnvPath returns the generated .env location inside a tool's workspace.
func (m *Manager) EnvPath(id string) string {
	return filepath.Join(m.outputRoot, id, ".env")
}

// IsImported reports whether a tool has a workspace directory.
func (m *Manager) IsImported(id string) bool {
	info, err := os.Stat(m.Dir(id))
	return err == nil && info.IsDir()
}

// =============================================================================
// Import
// =============================================================================

// Import materializes one tool: template copied, host volume directories
// created, .env generated, compose rewritten to read from it. Returns the
// workspace directory.
//
// A failed compose rewrite is reported but does not fail the import; the
// copied template is still runnable with its baked-in defaults.
func (m *Manager) Import(id string, force bool) (string, error) {
	// 1. Resolve the manifest
	tool, err := m.store.Resolve(id)
	if err != nil {
		return "", err
	}

	m.logger.Info("importing tool", "tool", tool.ID, "name", tool.Name)

	// 2. Locate the template before touching the destination
	templateDir, err := m.findTemplateDir(tool)
	if err != nil {
		return "", err
	}
	m.logger.Debug("located template", "tool", tool.ID, "template", templateDir)

	// 3. Create the destination workspace
	dest := m.Dir(tool.ID)
	if err := m.ensureDest(tool.ID, dest, force); err != nil {
		return "", err
	}

	// 4. Copy the template tree
	if err := m.copyTemplate(templateDir, dest); err != nil {
		return "", NewWorkspaceError("Import", tool.ID, "copying template", err)
	}

	// 5. Create host directories for volume mounts (best-effort)
	m.ensureVolumeDirs(tool.ID, tool.Manifest)

	// 6. Generate the .env file
	content, err := envfile.Render(tool.Name, tool.Manifest, m.norm)
	if err != nil {
		return "", NewWorkspaceError("Import", tool.ID, "generating .env file", err)
	}
	if err := os.WriteFile(filepath.Join(dest, ".env"), content, 0o644); err != nil {
		return "", NewWorkspaceError("Import", tool.ID, "writing .env file", err)
	}
	m.logger.Debug("generated .env", "tool", tool.ID)

	// 7. Rewrite the compose file to read from the .env
	if err := m.rewriteCompose(dest, tool); err != nil {
		m.logger.Warn("failed to adjust docker-compose.yml for env", "tool", tool.ID, "error", err)
	}

	m.logger.Info("tool imported", "tool", tool.ID, "workspace", dest)
	return dest, nil
}

// findTemplateDir locates the template source for a tool, in order:
// a per-tool directory under the template root, the template root itself
// when it directly holds Dockerfile + docker-compose.yml, or the manifest's
// template_dir override.
func (m *Manager) findTemplateDir(tool *store.Tool) (string, error) {
	perTool := filepath.Join(m.templateRoot, tool.ID)
	if info, err := os.Stat(perTool); err == nil && info.IsDir() {
		return perTool, nil
	}

	dockerfile := filepath.Join(m.templateRoot, "Dockerfile")
	composeFile := filepath.Join(m.templateRoot, "docker-compose.yml")
	if fileExists(dockerfile) && fileExists(composeFile) {
		return m.templateRoot, nil
	}

	if override := tool.Manifest.TemplateDir; override != "" {
		resolved := override
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(m.norm.ProjectRoot, resolved)
		}
		if info, err := os.Stat(resolved); err == nil && info.IsDir() {
			return resolved, nil
		}
	}

	available := m.availableTemplates()
	listing := "-"
	if len(available) > 0 {
		listing = strings.Join(available, ", ")
	}
	return "", NewWorkspaceError("Import", tool.ID,
		fmt.Sprintf("no template at %s, and %s has no common Dockerfile and docker-compose.yml. Available templates: %s",
			perTool, m.templateRoot, listing), ErrTemplateNotFound)
}

// availableTemplates lists the per-tool template directories, for error
// messages.
func (m *Manager) availableTemplates() []string {
	entries, err := os.ReadDir(m.templateRoot)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ensureDest prepares the destination directory. An existing workspace is an
// error unless force, in which case the old tree is removed first.
func (m *Manager) ensureDest(id, dest string, force bool) error {
	if _, err := os.Stat(dest); err == nil {
		if !force {
			return NewWorkspaceError("Import", id,
				fmt.Sprintf("destination directory already exists: %s. Use --force to overwrite", dest), ErrExists)
		}
		if err := os.RemoveAll(dest); err != nil {
			return NewWorkspaceError("Import", id, "removing existing workspace", err)
		}
		m.logger.Debug("removed existing workspace", "tool", id, "workspace", dest)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return NewWorkspaceError("Import", id, "creating workspace directory", err)
	}
	return nil
}

// copyTemplate copies the template into the destination. When the template
// is the shared root, only the common Dockerfile and docker-compose.yml are
// copied; a per-tool template is copied whole.
func (m *Manager) copyTemplate(templateDir, dest string) error {
	if templateDir == m.templateRoot {
		for _, name := range []string{"Dockerfile", "docker-compose.yml"} {
			src := filepath.Join(templateDir, name)
			if !fileExists(src) {
				continue
			}
			if err := copyFile(src, filepath.Join(dest, name)); err != nil {
				return err
			}
		}
		return nil
	}
	return copyTree(templateDir, dest)
}

// ensureVolumeDirs creates the host-side directories the tool's volumes
// mount, so compose does not create them root-owned on first start. Failures
// are logged and ignored.
func (m *Manager) ensureVolumeDirs(id string, man *manifest.Manifest) {
	for _, path := range envfile.HostVolumePaths(man, m.norm) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			m.logger.Debug("could not create volume directory", "tool", id, "path", path, "error", err)
		}
	}
}

// rewriteCompose applies the manifest-driven rewrite to the copied compose
// file and sanity-checks the result. A missing compose file is a no-op.
func (m *Manager) rewriteCompose(dest string, tool *store.Tool) error {
	composePath := filepath.Join(dest, "docker-compose.yml")
	original, err := os.ReadFile(composePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	rewritten, err := compose.Rewrite(original, tool.Name, tool.Manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(composePath, rewritten, 0o644); err != nil {
		return err
	}
	m.logger.Debug("rewrote compose file", "tool", tool.ID)

	// Sanity check: the rewritten document must interpolate cleanly against
	// the generated .env, with no placeholder left undefined.
	vars := envfile.Vars(tool.Name, tool.Manifest, m.norm)
	for _, name := range compose.ExtractVariablesFromYAML(string(rewritten)) {
		if _, ok := vars[name]; !ok {
			m.logger.Debug("compose references variable missing from .env", "tool", tool.ID, "variable", name)
		}
	}
	if _, err := compose.ParseProject(rewritten, vars); err != nil {
		m.logger.Debug("rewritten compose failed interpolation check", "tool", tool.ID, "error", err)
	}
	return nil
}

// =============================================================================
// Remove / Listing
// =============================================================================

// Remove deletes a tool's workspace. Reports false when there is nothing to
// remove.
func (m *Manager) Remove(id string) (bool, error) {
	dest := m.Dir(id)
	if _, err := os.Stat(dest); err != nil {
		return false, nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return false, NewWorkspaceError("Remove", id, "removing workspace", err)
	}
	m.logger.Info("removed workspace", "tool", id, "workspace", dest)
	return true, nil
}

// ListImported returns the identifiers of every imported tool: workspace
// directories that contain a docker-compose.yml, sorted.
func (m *Manager) ListImported() ([]string, error) {
	entries, err := os.ReadDir(m.outputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewWorkspaceError("ListImported", "", "reading output directory", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if fileExists(filepath.Join(m.outputRoot, entry.Name(), "docker-compose.yml")) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ResolveDirID maps a user-supplied identifier to the workspace directory
// name: the identifier itself when that workspace exists, else the manifest
// filename stem, else the identifier unchanged.
func (m *Manager) ResolveDirID(id string) string {
	if m.IsImported(id) {
		return id
	}
	if tool, err := m.store.Resolve(id); err == nil && m.IsImported(tool.ID) {
		return tool.ID
	}
	return id
}

// =============================================================================
// File Helpers
// =============================================================================

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyTree copies the contents of src into dst, which must already exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target)
	})
}
