package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/ui"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), ui.Banner(version))
		},
	}
}
