package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/szaher/finsight/internal/config"
	"github.com/szaher/finsight/internal/report"
	"github.com/szaher/finsight/internal/session"
	"github.com/szaher/finsight/internal/telemetry"
	"github.com/szaher/finsight/internal/ui"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: ask questions until /quit",
		Long: `Chat runs finsight interactively. Each line is a new research
question. Slash commands:

  /servers        list connected servers and their tools
  /export <fmt>   export the last session (html or docx)
  /quit           exit

The config file is watched while chatting; edits rebuild the tool
registry between questions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger()
			ctx, cancel := context.WithCancel(telemetry.WithCorrelationID(cmd.Context(), correlationID))
			defer cancel()

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			if cfg.MetricsAddr != "" {
				go func() {
					if err := rt.metrics.Serve(cfg.MetricsAddr); err != nil {
						logger.Warn("metrics endpoint stopped", "error", err)
					}
				}()
			}

			// Hot-reload the tool registry on config edits.
			go func() {
				err := config.Watch(ctx, configPath, logger, func(next *config.Config) {
					rt.reload(ctx, next)
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("config watch stopped", "error", err)
				}
			}()

			console := ui.NewStdio(cmd.InOrStdin(), cmd.OutOrStdout())
			console.Display(ui.Banner(version))
			console.Display(fmt.Sprintf("%d tools available. Type a question, or /quit to exit.", rt.currentRegistry().Len()))

			var last *session.Record
			for {
				line, err := console.Prompt("> ")
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				switch {
				case line == "":
					continue
				case line == "/quit", line == "/exit":
					return nil
				case line == "/servers":
					printServers(console, rt)
				case strings.HasPrefix(line, "/export"):
					exportLast(console, last, strings.TrimSpace(strings.TrimPrefix(line, "/export")))
				case strings.HasPrefix(line, "/"):
					console.Display("unknown command: " + line)
				default:
					rec, err := rt.runSession(ctx, line, console)
					if err != nil {
						console.Display("session failed: " + err.Error())
						continue
					}
					last = rec
				}
			}
		},
	}
	return cmd
}

func printServers(console ui.Console, rt *runtime) {
	reg := rt.currentRegistry()
	clients := rt.pool.All()
	console.Display(fmt.Sprintf("%d servers connected, %d tools registered", len(clients), reg.Len()))
	for _, def := range reg.Definitions() {
		owner, _ := reg.Owner(def.Name)
		console.Display(fmt.Sprintf("  %-24s %-12s %s", def.Name, owner, def.Description))
	}
}

func exportLast(console ui.Console, last *session.Record, format string) {
	if last == nil {
		console.Display("nothing to export yet")
		return
	}
	r := report.FromRecord(last)
	switch format {
	case "html", "":
		path := last.ID + ".html"
		if err := writeHTMLFile(r, path); err != nil {
			console.Display("export failed: " + err.Error())
			return
		}
		console.Display("wrote " + path)
	case "docx":
		path := last.ID + ".docx"
		if err := r.WriteDOCX(path); err != nil {
			console.Display("export failed: " + err.Error())
			return
		}
		console.Display("wrote " + path)
	default:
		console.Display("unknown format: " + format + " (html or docx)")
	}
}
