package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/telemetry"
)

func newServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "Connect to configured MCP servers and list their tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger()
			ctx := telemetry.WithCorrelationID(cmd.Context(), correlationID)

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			reg := rt.currentRegistry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tOWNER\tDESCRIPTION")
			for _, def := range reg.Definitions() {
				owner, _ := reg.Owner(def.Name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, owner, def.Description)
			}
			return w.Flush()
		},
	}
}
