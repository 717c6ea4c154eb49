package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDownCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "down [tool]",
		Short: "docker compose down for one tool or all imported tools",
		Args:  maxOneToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if all {
				if len(args) > 0 {
					return usagef("cannot combine a tool name with --all")
				}
				imported, err := a.ws.ListImported()
				if err != nil {
					return failErr("Failed to stop", err)
				}
				if len(imported) == 0 {
					fmt.Println("No imported tools.")
				}
				for _, id := range imported {
					if err := a.stopTool(cmd.Context(), id, false, false); err != nil {
						return failErr("Failed to stop", err)
					}
				}
				return nil
			}
			if len(args) == 0 {
				return usagef("You must specify a tool or use --all")
			}
			if err := a.stopTool(cmd.Context(), args[0], false, false); err != nil {
				return failErr("Failed to stop", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Run for all imported tools")
	return cmd
}

// stopTool runs compose down for one tool. A missing workspace is a
// warning, not an error, so sweeps keep going.
func (a *app) stopTool(ctx context.Context, id string, removeVolumes, removeImages bool) error {
	dirID := a.ws.ResolveDirID(id)
	if !a.ws.IsImported(dirID) {
		warnf("Skip %s: folder not found.", dirID)
		return nil
	}
	return a.compose.Down(ctx, a.ws.Dir(dirID), dirID, removeVolumes, removeImages)
}
