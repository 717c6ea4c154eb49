package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/shell/docker"
)

func newCleanCommand(a *app) *cobra.Command {
	var (
		all    bool
		data   bool
		image  bool
		volume bool
	)
	cmd := &cobra.Command{
		Use:   "clean [tool]",
		Short: "Stop (down) then delete directory docker/<tool>",
		Args:  maxOneToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			flags := cleanFlags{Data: data, Image: image, Volume: volume}
			if all {
				if len(args) > 0 {
					return usagef("cannot combine a tool name with --all")
				}
				return a.cleanAll(cmd.Context(), flags)
			}
			if len(args) == 0 {
				return usagef("You must specify a tool or use --all")
			}
			return a.cleanOne(cmd.Context(), args[0], flags)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Clean all imported tools")
	cmd.Flags().BoolVar(&data, "data", false, "Also remove mounted data under data/<tool>")
	cmd.Flags().BoolVar(&image, "image", false, "Also remove images (docker compose down --rmi local)")
	cmd.Flags().BoolVar(&volume, "volume", false, "Also remove volumes (docker compose down -v)")
	return cmd
}

// cleanFlags carries which extra removals a clean performs once the
// confirmation prompts have trimmed them.
type cleanFlags struct {
	Data   bool
	Image  bool
	Volume bool
}

// confirmAll asks about each requested removal in sequence, clearing
// the ones the user declines.
func (f cleanFlags) confirmAll() (cleanFlags, error) {
	var out cleanFlags
	if f.Data {
		yes, err := askConfirm("This will remove mounted data under data/<tool> for ALL tools. Continue?")
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Data removal cancelled.")
		}
		out.Data = yes
	}
	if f.Image {
		yes, err := askConfirm("This will remove Docker images for ALL tools. Continue?")
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Image removal cancelled.")
		}
		out.Image = yes
	}
	if f.Volume {
		yes, err := askConfirm("This will remove Docker volumes for ALL tools. Continue?")
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Volume removal cancelled.")
		}
		out.Volume = yes
	}
	return out, nil
}

// confirmOne is confirmAll for a single named tool.
func (f cleanFlags) confirmOne(id string) (cleanFlags, error) {
	var out cleanFlags
	if f.Data {
		yes, err := askConfirm(fmt.Sprintf("This will remove mounted data for tool '%s'. Continue?", id))
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Data removal cancelled.")
		}
		out.Data = yes
	}
	if f.Image {
		yes, err := askConfirm(fmt.Sprintf("This will remove Docker images for tool '%s'. Continue?", id))
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Image removal cancelled.")
		}
		out.Image = yes
	}
	if f.Volume {
		yes, err := askConfirm(fmt.Sprintf("This will remove Docker volumes for tool '%s'. Continue?", id))
		if err != nil {
			return out, err
		}
		if !yes {
			fmt.Println("Volume removal cancelled.")
		}
		out.Volume = yes
	}
	return out, nil
}

// suffix names the confirmed removals for the sweep banner.
func (f cleanFlags) suffix() string {
	var b strings.Builder
	if f.Data {
		b.WriteString(" + data")
	}
	if f.Image {
		b.WriteString(" + images")
	}
	if f.Volume {
		b.WriteString(" + volumes")
	}
	return b.String()
}

func (a *app) cleanAll(ctx context.Context, flags cleanFlags) error {
	imported, err := a.ws.ListImported()
	if err != nil {
		return failErr("Failed to clean all tools", err)
	}

	flags, err = flags.confirmAll()
	if err != nil {
		return failErr("Failed to clean all tools", err)
	}

	if len(imported) == 0 {
		return a.cleanLeftovers(ctx, flags)
	}

	fmt.Printf("Cleaning %d imported tools (down + remove%s)...\n", len(imported), flags.suffix())
	for _, id := range imported {
		if err := a.cleanTool(ctx, id, flags); err != nil {
			errorf("Failed to clean '%s': %s", id, describe(err))
			continue
		}
	}
	return nil
}

// cleanLeftovers handles --all cleanup when nothing is imported: data
// directories and global docker state can still be swept.
func (a *app) cleanLeftovers(ctx context.Context, flags cleanFlags) error {
	if flags.Data {
		if _, err := os.Stat(a.data.Root()); err != nil {
			fmt.Println("No data directory found.")
		} else {
			fmt.Println("No imported tools. Removing data directories under data/...")
			names, err := a.data.Children()
			if err != nil {
				return failErr("Failed to remove data", err)
			}
			for _, name := range names {
				removed, err := a.data.Remove(name)
				if err != nil {
					warnf("Failed to remove data for '%s': %s", name, describe(err))
					continue
				}
				if removed {
					okf("Removed data for %s", name)
				} else {
					warnf("Data removal for '%s' was skipped (folder may not exist)", name)
				}
			}
		}
	}

	if flags.Image {
		fmt.Println("No imported tools.")
		if err := a.removeGlobalImages(ctx); err != nil {
			warnf("Failed to remove global images: %s", describe(err))
		}
	}

	if flags.Volume {
		if err := a.removeGlobalVolumes(ctx); err != nil {
			warnf("Failed to remove volumes: %s", describe(err))
		}
	}

	if !flags.Data && !flags.Image && !flags.Volume {
		fmt.Println("No imported tools.")
	}
	return nil
}

func (a *app) cleanOne(ctx context.Context, id string, flags cleanFlags) error {
	flags, err := flags.confirmOne(id)
	if err != nil {
		return failErr(fmt.Sprintf("Failed to clean '%s'", id), err)
	}
	if err := a.cleanTool(ctx, id, flags); err != nil {
		return failErr(fmt.Sprintf("Failed to clean '%s'", id), err)
	}
	return nil
}

// cleanTool stops one tool, optionally removes its data, and deletes
// its workspace directory.
func (a *app) cleanTool(ctx context.Context, id string, flags cleanFlags) error {
	dirID := a.ws.ResolveDirID(id)

	if err := a.stopTool(ctx, id, flags.Volume, flags.Image); err != nil {
		return err
	}

	if flags.Data {
		// Give compose a moment to release the mounts.
		time.Sleep(time.Second)

		removed, err := a.data.Remove(dirID)
		switch {
		case err != nil:
			warnf("Failed to remove data for '%s': %s", id, describe(err))
		case !removed:
			warnf("Data removal for '%s' was skipped (folder may not exist)", id)
		default:
			okf("Removed data for %s", id)
		}
	}

	// compose down already dropped these; say so explicitly.
	if flags.Image {
		okf("Removed images for %s", id)
	}
	if flags.Volume {
		okf("Removed volumes for %s", id)
	}

	removed, err := a.ws.Remove(dirID)
	if err != nil {
		errorf("Failed to remove tool %s: %s", id, describe(err))
		return nil
	}
	if !removed {
		errorf("Tool %s not found in %s", id, a.cfg.Paths.OutputDir())
		return nil
	}
	okf("Removed tool %s", id)
	return nil
}

// removeGlobalImages deletes every local image matching the bundled
// stack patterns.
func (a *app) removeGlobalImages(ctx context.Context) error {
	engine, err := a.engine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Println("Removing all tool Docker images...")
	removed, err := engine.RemoveImagesMatching(ctx, docker.ImageCleanupPatterns)
	if err != nil {
		return err
	}
	for _, ref := range removed {
		okf("Removed image %s", ref)
	}
	if len(removed) > 0 {
		okf("Global image cleanup completed (%d images removed)", len(removed))
	} else {
		okf("No tool images found to remove")
	}
	return nil
}

// removeGlobalVolumes prunes volumes no container references anymore.
func (a *app) removeGlobalVolumes(ctx context.Context) error {
	engine, err := a.engine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Println("Removing unused Docker volumes...")
	if _, err := engine.PruneVolumes(ctx); err != nil {
		return err
	}
	okf("Removed unused Docker volumes")
	return nil
}
