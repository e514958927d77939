package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/session"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := session.NewFileStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			records, err := store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tTERMINAL\tTURNS\tQUERY")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					rec.ID,
					rec.StartedAt.Format("2006-01-02 15:04"),
					rec.Terminal,
					rec.Turns,
					truncate(rec.Query, 60))
			}
			return w.Flush()
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
