package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show port mappings of running tools (HOST -> CONTAINER)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if err := a.showStatus(cmd.Context()); err != nil {
				return failErr("Failed to show status", err)
			}
			return nil
		},
	}
}

func (a *app) showStatus(ctx context.Context) error {
	tools, err := a.store.List()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, tool := range tools {
		if !a.compose.IsRunning(ctx, a.ws.Dir(tool.ID)) {
			continue
		}
		for _, port := range tool.Manifest.Ports {
			rows = append(rows, []string{
				port.Host,
				canonicalContainerPort(port.Container),
				color.CyanString(tool.ID),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	sortPortRows(rows)
	fmt.Print(formatTable([]string{"HOST", "CONTAINER", "SERVICE"}, rows, a.cfg.List.DetailedMaxWidth))
	return nil
}

// canonicalContainerPort normalizes the container side to PORT/PROTO,
// defaulting to tcp the way compose itself does.
func canonicalContainerPort(container string) string {
	proto, port := nat.SplitProtoPort(container)
	if port == "" {
		return container
	}
	return port + "/" + proto
}

// sortPortRows orders rows numerically by host port. Rows whose host
// side is not numeric sort after the numeric ones, keeping their input
// order.
func sortPortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := hostPortValue(rows[i][0])
		b, bok := hostPortValue(rows[j][0])
		if aok && bok {
			return a < b
		}
		return aok && !bok
	})
}

func hostPortValue(host string) (int, bool) {
	n, err := strconv.Atoi(strings.SplitN(host, "/", 2)[0])
	if err != nil {
		return 0, false
	}
	return n, true
}
