package workspace

import (
	"errors"
	"fmt"
)

// =============================================================================
// Sentinel Errors
// =============================================================================

var (
	// ErrExists is returned when an import destination already exists and
	// --force was not given.
	ErrExists = errors.New("workspace already exists")

	// ErrTemplateNotFound is returned when no template directory can be
	// located for a tool.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrNotImported is returned when an operation needs an imported
	// workspace and none exists.
	ErrNotImported = errors.New("tool not imported")
)

// =============================================================================
// Workspace Errors
// =============================================================================

// WorkspaceError provides context about workspace operation failures.
type WorkspaceError struct {
	Op      string // Operation: "Import", "Remove", etc.
	ID      string // Tool identifier
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *WorkspaceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("workspace %s %s: %s", e.Op, e.ID, e.Message)
	}
	return fmt.Sprintf("workspace %s: %s", e.Op, e.Message)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// NewWorkspaceError creates a new WorkspaceError.
func NewWorkspaceError(op, id, message string, err error) *WorkspaceError {
	return &WorkspaceError{
		Op:      op,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
