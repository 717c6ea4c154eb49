package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		all   bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "import [tool]",
		Short: "Import template and generate .env for the tool",
		Args:  maxOneToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return a.importAll(force)
			}
			if len(args) == 0 {
				return usagef("You must specify a tool or use --all")
			}
			if _, err := a.ws.Import(args[0], force); err != nil {
				return failErr("Failed to import", err)
			}
			okf("Imported '%s'", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Import all enabled tools")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite docker/<tool> if it already exists")
	return cmd
}

func (a *app) importAll(force bool) error {
	enabled, err := a.store.ListEnabled()
	if err != nil {
		return failErr("Failed to import", err)
	}
	if len(enabled) == 0 {
		fmt.Println("No enabled tools.")
		return nil
	}
	fmt.Printf("Importing %d enabled tools...\n", len(enabled))
	for _, tool := range enabled {
		if _, err := a.ws.Import(tool.ID, force); err != nil {
			errorf("Failed to import '%s': %s", tool.ID, describe(err))
			continue
		}
		okf("Imported '%s'", tool.ID)
	}
	return nil
}

func newUpdateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update all imported tools (equivalent to import --force)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := a.ws.ListImported()
			if err != nil {
				return failErr("Failed to update", err)
			}
			if len(imported) == 0 {
				fmt.Println("No imported tools.")
				return nil
			}
			fmt.Printf("Updating %d imported tools...\n", len(imported))
			for _, id := range imported {
				if _, err := a.ws.Import(id, true); err != nil {
					errorf("Failed to update '%s': %s", id, describe(err))
					continue
				}
				okf("Updated '%s'", id)
			}
			return nil
		},
	}
}
