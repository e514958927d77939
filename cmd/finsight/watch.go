package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/telemetry"
)

// headlessConsole answers every clarification with /run so scheduled
// sessions never block waiting for a human.
type headlessConsole struct {
	display func(string)
}

func (c *headlessConsole) Prompt(string) (string, error) { return "/run", nil }
func (c *headlessConsole) Display(text string)           { c.display(text) }

func newWatchCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch <question>",
		Short: "Re-run a question on a cron schedule, storing each session",
		Long: `Watch runs the question on a cron schedule (standard 5-field
syntax, or descriptors like @hourly). Each run is stored as a
session; clarification requests are answered with a best-effort
instruction since nobody is at the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = telemetry.WithCorrelationID(ctx, correlationID)

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			query := args[0]
			console := &headlessConsole{display: func(text string) {
				logger.Info("scheduled session output", "text", text)
			}}

			c := cron.New()
			_, err = c.AddFunc(schedule, func() {
				rec, err := rt.runSession(ctx, query, console)
				if err != nil {
					logger.Error("scheduled session failed", "error", err)
					return
				}
				logger.Info("scheduled session stored",
					"session", rec.ID, "terminal", rec.Terminal, "turns", rec.Turns)
			})
			if err != nil {
				return fmt.Errorf("invalid schedule %q: %w", schedule, err)
			}

			logger.Info("watching", "schedule", schedule, "query", query)
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "@hourly", "Cron schedule for re-running the question")
	return cmd
}
