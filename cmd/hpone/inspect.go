package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <tool>",
		Short: "Show detailed configuration information for one tool",
		Args:  requireToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if err := a.inspectTool(cmd.Context(), args[0]); err != nil {
				return failErr(fmt.Sprintf("Failed to inspect '%s'", args[0]), err)
			}
			return nil
		},
	}
}

func (a *app) inspectTool(ctx context.Context, id string) error {
	tool, err := a.store.Resolve(id)
	if err != nil {
		return err
	}

	m := tool.Manifest
	imported := a.ws.IsImported(tool.ID)
	running := imported && a.compose.IsRunning(ctx, a.ws.Dir(tool.ID))

	fmt.Printf("Inspecting tool '%s'...\n\n", tool.Name)

	fmt.Println(sectionStyle.Render("Basic Information:"))
	fmt.Printf("  Status:   %s\n", renderState(running, "Running", "Stopped"))
	fmt.Printf("  Enabled:  %s\n", renderState(m.Enabled, "Enabled", "Disabled"))
	fmt.Printf("  Imported: %s\n", renderState(imported, "Imported", "Not Imported"))
	if m.Description != "" {
		fmt.Printf("  Description: %s\n", m.Description)
	}
	fmt.Println()

	if len(m.Ports) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Ports (%d configured):", len(m.Ports))))
		for _, p := range m.Ports {
			line := fmt.Sprintf("  %6s → %-6s", p.Host, p.Container)
			if p.Description != "" {
				line += "  " + dimStyle.Render(p.Description)
			}
			fmt.Println(line)
		}
	} else {
		fmt.Println(sectionStyle.Render("Ports:") + " None configured")
	}
	fmt.Println()

	if len(m.Volumes) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Volumes (%d configured):", len(m.Volumes))))
		for _, v := range m.Volumes {
			fmt.Printf("  %s → %s\n", v.Host, v.Container)
		}
		fmt.Println()
	}

	if len(m.Env) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Environment Variables (%d configured):", len(m.Env))))
		for _, e := range m.Env {
			fmt.Printf("  %s = %s\n", e.Key, e.Value)
		}
		fmt.Println()
	}

	if selected := m.SelectedServices(); len(selected) > 0 {
		fmt.Println(sectionStyle.Render("Service Selection:"))
		if m.Service != "" {
			fmt.Printf("  Service:  %s\n", m.Service)
		} else {
			fmt.Printf("  Services: %s\n", strings.Join(selected, ", "))
		}
		fmt.Println()
	}

	fmt.Println(sectionStyle.Render("File Information:"))
	fmt.Printf("  Config: %s\n", tool.Path)
	if imported {
		fmt.Printf("  Docker: %s\n", a.ws.Dir(tool.ID))
		if _, err := os.Stat(a.ws.EnvPath(tool.ID)); err == nil {
			fmt.Printf("  Env:    %s\n", a.ws.EnvPath(tool.ID))
		}
	} else {
		fmt.Println("  Docker: Not imported")
	}
	fmt.Println()

	fmt.Println("Inspection complete!")
	return nil
}

func renderState(ok bool, yes, no string) string {
	if ok {
		return goodStyle.Render(yes)
	}
	return badStyle.Render(no)
}
