package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/report"
	"github.com/szaher/finsight/internal/session"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Render a stored session as an HTML or DOCX report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := session.NewFileStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			rec, err := store.Load(args[0])
			if err != nil {
				return err
			}
			r := report.FromRecord(rec)

			switch format {
			case "html":
				if out == "" {
					out = rec.ID + ".html"
				}
				if err := writeHTMLFile(r, out); err != nil {
					return err
				}
			case "docx":
				if out == "" {
					out = rec.ID + ".docx"
				}
				if err := r.WriteDOCX(out); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (html or docx)", format)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "html", "Report format: html or docx")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default <session-id>.<ext>)")
	return cmd
}
