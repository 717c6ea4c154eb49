package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/core/manifest"
)

func newListCommand(a *app) *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools based on YAML files in the manifest directory",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if err := a.listTools(cmd.Context(), detailed); err != nil {
				return failErr("Failed to list tools", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "a", false, "Show full details (ports and volumes)")
	return cmd
}

func (a *app) listTools(ctx context.Context, detailed bool) error {
	tools, err := a.store.List()
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		fmt.Printf("No YAML files in the '%s' directory.\n", a.cfg.Paths.Manifests)
		return nil
	}

	headers := []string{"NAME", "ENABLED", "IMPORT", "STATUS"}
	if detailed {
		headers = append(headers, "PORTS", "VOLUMES")
	}
	headers = append(headers, "DESCRIPTION")

	rows := make([][]string, 0, len(tools))
	for _, tool := range tools {
		m := tool.Manifest
		imported := a.ws.IsImported(tool.ID)
		running := imported && a.compose.IsRunning(ctx, a.ws.Dir(tool.ID))

		row := []string{
			tool.ID,
			renderEnabled(m.Enabled),
			renderImported(imported),
			renderRunning(running),
		}
		if detailed {
			row = append(row, portsCell(m.Ports), volumesCell(m.Volumes))
		}
		row = append(row, m.Description)
		rows = append(rows, row)
	}

	// With always_import the import state mirrors up/down, so the
	// column says nothing.
	if a.cfg.Behavior.AlwaysImport {
		headers = dropColumn(headers, 2)
		for i, row := range rows {
			rows[i] = dropColumn(row, 2)
		}
	}

	width := a.cfg.List.BasicMaxWidth
	if detailed {
		width = a.cfg.List.DetailedMaxWidth
	}
	fmt.Print(formatTable(headers, rows, width))
	return nil
}

func renderEnabled(enabled bool) string {
	if enabled {
		return color.GreenString("True")
	}
	return color.RedString("False")
}

func renderImported(imported bool) string {
	if imported {
		return color.CyanString("Yes")
	}
	return color.HiBlackString("No")
}

func renderRunning(running bool) string {
	if running {
		return color.GreenString("Up")
	}
	return color.RedString("Down")
}

func portsCell(ports []manifest.PortEntry) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = p.Host + ":" + p.Container
	}
	return strings.Join(parts, ", ")
}

func volumesCell(volumes []manifest.VolumeEntry) string {
	if len(volumes) == 0 {
		return "-"
	}
	parts := make([]string, len(volumes))
	for i, v := range volumes {
		parts[i] = v.Host + ":" + v.Container
	}
	return strings.Join(parts, ", ")
}

// dropColumn removes index i from a row.
func dropColumn(row []string, i int) []string {
	out := make([]string, 0, len(row)-1)
	out = append(out, row[:i]...)
	return append(out, row[i+1:]...)
}
