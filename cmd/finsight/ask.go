package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/report"
	"github.com/szaher/finsight/internal/telemetry"
)

func newAskCmd() *cobra.Command {
	var (
		htmlOut string
		docxOut string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one research question and exit",
		Args:  cobra.ExactArgs(1),
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

			rec, err := rt.runSession(ctx, args[0], nil)
			if err != nil {
				return err
			}
			logger.Info("session finished", "session", rec.ID, "terminal", rec.Terminal, "turns", rec.Turns)

			if htmlOut != "" || docxOut != "" {
				r := report.FromRecord(rec)
				if htmlOut != "" {
					if err := writeHTMLFile(r, htmlOut); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "wrote", htmlOut)
				}
				if docxOut != "" {
					if err := r.WriteDOCX(docxOut); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "wrote", docxOut)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlOut, "html", "", "Write an HTML report to this path")
	cmd.Flags().StringVar(&docxOut, "docx", "", "Write a DOCX report to this path")
	return cmd
}

func writeHTMLFile(r *report.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.WriteHTML(f)
}
