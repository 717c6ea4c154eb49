package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// DataRemover - Containment-Checked Data Deletion
// =============================================================================

// DataRemover deletes per-tool data directories. Every tool's mounted data
// lives directly under one root, `<data>/<id>`, and that is the only shape
// this remover will delete: the root itself, paths outside it, and anything
// reached through a symlink or a crafted identifier are refused rather than
// removed.
type DataRemover struct {
	root   string
	logger *slog.Logger
}

// NewDataRemover creates a data remover over the data root directory.
func NewDataRemover(root string, logger *slog.Logger) *DataRemover {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataRemover{root: root, logger: logger}
}

// Root returns the data root directory.
func (r *DataRemover) Root() string {
	return r.root
}

// Children returns the names of the immediate subdirectories of the data
// root, sorted. A missing root is an empty listing.
func (r *DataRemover) Children() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewWorkspaceError("Children", "", "reading data directory", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the data directory for one tool. Reports true only when a
// directory was actually deleted; a missing target, a non-directory, or any
// failed safety check reports false without touching the filesystem.
func (r *DataRemover) Remove(id string) (bool, error) {
	if !validDataID(id) {
		r.logger.Warn("refusing data removal: invalid identifier", "id", id)
		return false, nil
	}

	canonRoot, err := canonicalPath(r.root)
	if err != nil {
		return false, nil
	}

	target := filepath.Join(r.root, id)
	info, err := os.Lstat(target)
	if err != nil {
		return false, nil
	}
	if !info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
		r.logger.Warn("refusing data removal: not a directory", "id", id, "path", target)
		return false, nil
	}

	canonTarget, err := canonicalPath(target)
	if err != nil {
		return false, nil
	}
	canonInfo, err := os.Stat(canonTarget)
	if err != nil || !canonInfo.IsDir() {
		return false, nil
	}

	// The resolved target must be exactly one level below the resolved
	// root, under the same name. Anything else means a symlink or a crafted
	// identifier is pointing the delete somewhere it must not go.
	if canonTarget == canonRoot || canonTarget != filepath.Join(canonRoot, id) {
		r.logger.Warn("refusing data removal: target escapes the data root",
			"id", id, "path", target, "resolved", canonTarget)
		return false, nil
	}

	if err := os.RemoveAll(canonTarget); err != nil {
		return false, NewWorkspaceError("RemoveData", id, "removing data directory", err)
	}
	r.logger.Info("removed data directory", "tool", id, "path", canonTarget)
	return true, nil
}

// validDataID accepts only a plain single-level directory name.
func validDataID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsRune(id, '/') || strings.ContainsRune(id, os.PathSeparator) {
		return false
	}
	return true
}

// canonicalPath resolves a path to its absolute, symlink-free form.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
