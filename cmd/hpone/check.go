package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	checkSectionStyle = lipgloss.NewStyle().Bold(true)
	checkOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	checkFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check dependencies",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The report itself is the result; missing dependencies do
			// not make the command fail.
			a.runCheck(cmd.Context())
			return nil
		},
	}
}

func mark(ok bool) string {
	if ok {
		return checkOKStyle.Render("[ok]")
	}
	return checkFailStyle.Render("[--]")
}

func (a *app) runCheck(ctx context.Context) {
	fmt.Println("Checking dependencies...")
	fmt.Println()

	fmt.Println(checkSectionStyle.Render("Docker:"))
	st := a.compose.Probe(ctx)
	fmt.Printf("  %s docker\n", mark(st.Docker))
	switch {
	case st.ComposePlugin:
		fmt.Printf("  %s docker compose (v2)\n", mark(true))
	case st.ComposeLegacy:
		fmt.Printf("  %s docker-compose (v1)\n", mark(true))
	default:
		fmt.Printf("  %s docker compose\n", mark(false))
	}

	daemonOK := false
	if engine, err := a.engine(); err == nil {
		if err := engine.Ping(ctx); err == nil {
			daemonOK = true
		}
		engine.Close()
	}
	fmt.Printf("  %s daemon reachable\n", mark(daemonOK))

	fmt.Println()
	fmt.Println(checkSectionStyle.Render("Directories:"))
	fmt.Printf("  %s manifests  %s\n", mark(dirExists(a.cfg.Paths.ManifestDir())), a.cfg.Paths.ManifestDir())
	fmt.Printf("  %s templates  %s\n", mark(dirExists(a.cfg.Paths.TemplateDir())), a.cfg.Paths.TemplateDir())

	fmt.Println()
	if st.Docker && st.ComposeAvailable() && daemonOK {
		fmt.Println("Ready to go!")
	} else {
		fmt.Println("Some dependencies missing")
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
