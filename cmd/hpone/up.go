package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/shell/store"
	"github.com/ariafatah0711/HPone/internal/shell/workspace"
)

func newUpCommand(a *app, alwaysImport bool) *cobra.Command {
	var (
		all    bool
		update bool
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "up [tool]",
		Short: "docker compose up -d for one tool or all enabled tools",
		Args:  maxOneToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if all {
				if len(args) > 0 {
					return usagef("cannot combine a tool name with --all")
				}
				return a.upAll(cmd.Context(), update)
			}
			if len(args) == 0 {
				return usagef("You must specify a tool or use --all")
			}
			return a.upOne(cmd.Context(), args[0], force, update)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Run for all enabled and imported tools")
	if !alwaysImport {
		cmd.Flags().BoolVar(&update, "update", false, "Update templates before starting")
	}
	cmd.Flags().BoolVar(&force, "force", false, "Force start even if not enabled (single tool only)")
	return cmd
}

// startTool brings one tool's compose stack up. The workspace must
// exist, and the tool must be enabled unless force is set.
func (a *app) startTool(ctx context.Context, id string, force bool) error {
	dirID := a.ws.ResolveDirID(id)
	dir := a.ws.Dir(dirID)
	if !a.ws.IsImported(dirID) {
		return workspace.NewWorkspaceError("Up", id,
			fmt.Sprintf("Docker folder for tool '%s' not found: %s. Run 'import' first.", id, dir),
			workspace.ErrNotImported)
	}
	if !force && !a.store.IsEnabled(id) {
		return store.NewStoreError("Up", "tool", id,
			fmt.Sprintf("Tool '%s' is not enabled. Run 'enable %s' first or use --force.", id, id), nil)
	}
	return a.compose.Up(ctx, dir, dirID)
}

func (a *app) upAll(ctx context.Context, update bool) error {
	if a.cfg.Behavior.AlwaysImport {
		return a.upAllAutoImport(ctx)
	}
	return a.upAllImported(ctx, update)
}

// upAllAutoImport refreshes every enabled tool's workspace and starts
// them all, reporting per-tool failures without stopping the sweep.
func (a *app) upAllAutoImport(ctx context.Context) error {
	enabled, err := a.store.ListEnabled()
	if err != nil {
		return failErr("Failed to start all tools", err)
	}
	if len(enabled) == 0 {
		fmt.Println("No enabled tools.")
		return nil
	}

	fmt.Printf("Auto-importing %d enabled tools...\n", len(enabled))
	for _, tool := range enabled {
		if _, err := a.ws.Import(tool.ID, true); err != nil {
			errorf("Failed to auto-import '%s': %s", tool.ID, describe(err))
			continue
		}
	}

	fmt.Printf("Starting %d tools...\n", len(enabled))
	for _, tool := range enabled {
		if err := a.startTool(ctx, tool.ID, false); err != nil {
			errorf("Failed to start '%s': %s", tool.ID, describe(err))
			continue
		}
	}
	return nil
}

// upAllImported starts every tool that is both enabled and imported.
// The first start failure aborts the sweep.
func (a *app) upAllImported(ctx context.Context, update bool) error {
	if update {
		imported, err := a.ws.ListImported()
		if err != nil {
			return failErr("Failed to start all tools", err)
		}
		if len(imported) == 0 {
			fmt.Println("No imported tools to update.")
		} else {
			fmt.Printf("Updating %d imported tools before up...\n", len(imported))
			for _, id := range imported {
				dest, err := a.ws.Import(id, true)
				if err != nil {
					warnf("Failed to update '%s': %s", id, describe(err))
					continue
				}
				okf("Template '%s' updated at: %s", id, dest)
			}
		}
	}

	enabled, err := a.store.ListEnabled()
	if err != nil {
		return failErr("Failed to start all tools", err)
	}
	var ready []string
	for _, tool := range enabled {
		if a.ws.IsImported(a.ws.ResolveDirID(tool.ID)) {
			ready = append(ready, tool.ID)
		}
	}
	if len(ready) == 0 {
		fmt.Println("No enabled and imported tools.")
	}
	for _, id := range ready {
		if err := a.startTool(ctx, id, false); err != nil {
			return failErr("Failed to start all tools", err)
		}
	}
	return nil
}

func (a *app) upOne(ctx context.Context, id string, force, update bool) error {
	if a.cfg.Behavior.AlwaysImport {
		return a.upOneAutoImport(ctx, id, force)
	}

	if update {
		if a.ws.IsImported(a.ws.ResolveDirID(id)) {
			if _, err := a.ws.Import(id, true); err != nil {
				return failErr(fmt.Sprintf("Failed to update '%s'", id), err)
			}
			okf("Updated '%s'", id)
		} else {
			fmt.Printf("Skip update: tool '%s' is not imported.\n", id)
		}
	}

	err := a.startTool(ctx, id, force)
	if err == nil {
		return nil
	}
	if !errors.Is(err, workspace.ErrNotImported) {
		return failErr(fmt.Sprintf("Failed to start '%s'", id), err)
	}

	// The workspace is missing. Offer to import when the manifest
	// exists, matching what a fresh checkout looks like.
	if _, rerr := a.store.Resolve(id); rerr != nil {
		if store.IsNotFound(rerr) {
			return fail("Tool '%s' not found in '%s'.", id, a.store.Dir())
		}
		return failErr(fmt.Sprintf("Failed to start '%s'", id), rerr)
	}

	confirmed, perr := askConfirm(fmt.Sprintf("Tool '%s' is not imported. Import now?", id))
	if perr != nil {
		return failErr(fmt.Sprintf("Failed to start '%s'", id), perr)
	}
	if !confirmed {
		fmt.Println("Cancelled.")
		return nil
	}

	if _, err := a.ws.Import(id, false); err != nil {
		return fail("Failed to start '%s': %s", id, describe(err))
	}
	okf("Imported '%s'", id)
	if err := a.startTool(ctx, id, force); err != nil {
		return fail("Failed to start '%s': %s", id, describe(err))
	}
	return nil
}

// upOneAutoImport reimports the tool from its template and starts it.
// The manifest must exist, and disabled tools need --force.
func (a *app) upOneAutoImport(ctx context.Context, id string, force bool) error {
	tool, err := a.store.Resolve(id)
	if err != nil {
		if store.IsNotFound(err) {
			return fail("Tool '%s' not found in '%s'.", id, a.store.Dir())
		}
		return failErr(fmt.Sprintf("Failed to auto-import and start '%s'", id), err)
	}

	if !tool.Manifest.Enabled {
		if !force {
			return fail("Tool '%s' is not enabled. Use --force to override.", id)
		}
		warnf("Tool '%s' is not enabled, but continuing with --force", id)
	}

	if _, err := a.ws.Import(id, true); err != nil {
		return failErr(fmt.Sprintf("Failed to auto-import and start '%s'", id), err)
	}
	if err := a.startTool(ctx, id, force); err != nil {
		return failErr(fmt.Sprintf("Failed to auto-import and start '%s'", id), err)
	}
	return nil
}
