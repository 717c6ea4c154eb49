package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/core/compose"
	"github.com/ariafatah0711/HPone/internal/shell/docker"
	"github.com/ariafatah0711/HPone/internal/shell/workspace"
)

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell <tool>",
		Short: "Open shell (bash/sh) in running container",
		Args:  requireToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if err := a.openShell(cmd.Context(), args[0]); err != nil {
				return fail("Failed to open shell in '%s': %s", args[0], describe(err))
			}
			return nil
		},
	}
}

func (a *app) openShell(ctx context.Context, id string) error {
	dirID := a.ws.ResolveDirID(id)
	dir := a.ws.Dir(dirID)
	if !a.ws.IsImported(dirID) {
		return workspace.NewWorkspaceError("Shell", id,
			fmt.Sprintf("Docker folder for tool '%s' not found: %s. Run 'import' first.", id, dir),
			workspace.ErrNotImported)
	}
	if !a.compose.IsRunning(ctx, dir) {
		return docker.NewDockerError("Shell", "container", id,
			fmt.Sprintf("Tool '%s' is not running. Start it first with 'up %s'.", id, id),
			docker.ErrNotRunning)
	}

	service, err := a.shellService(id, dirID)
	if err != nil {
		return err
	}
	return a.compose.Shell(ctx, dir, service)
}

// shellService picks the compose service to exec into: the manifest's
// selected service when one is declared, otherwise the service named
// after the workspace, otherwise the first service in the file.
func (a *app) shellService(id, dirID string) (string, error) {
	if tool, err := a.store.Resolve(id); err == nil {
		if selected := tool.Manifest.SelectedServices(); len(selected) > 0 {
			return selected[0], nil
		}
	}

	content, err := os.ReadFile(a.ws.ComposePath(dirID))
	if err != nil {
		return "", err
	}
	env, err := godotenv.Read(a.ws.EnvPath(dirID))
	if err != nil {
		env = map[string]string{}
	}
	spec, err := compose.ParseProject(content, env)
	if err != nil {
		return "", err
	}
	if _, ok := spec.FindService(dirID); ok {
		return dirID, nil
	}
	names := spec.ServiceNames()
	if len(names) == 0 {
		return "", docker.NewDockerError("Shell", "compose", id,
			fmt.Sprintf("no services defined in %s", a.ws.ComposePath(dirID)), nil)
	}
	return names[0], nil
}
