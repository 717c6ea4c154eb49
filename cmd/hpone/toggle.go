package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnableCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <tool>",
		Short: "Enable tool in tools/<tool>.yml (set enabled: true)",
		Args:  requireToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetEnabled(args[0], true); err != nil {
				return failErr(fmt.Sprintf("Failed to enable '%s'", args[0]), err)
			}
			okf("Tool '%s' enabled.", args[0])
			return nil
		},
	}
}

func newDisableCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <tool>",
		Short: "Disable tool in tools/<tool>.yml (set enabled: false)",
		Args:  requireToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetEnabled(args[0], false); err != nil {
				return failErr(fmt.Sprintf("Failed to disable '%s'", args[0]), err)
			}
			okf("Tool '%s' disabled.", args[0])
			return nil
		},
	}
}
