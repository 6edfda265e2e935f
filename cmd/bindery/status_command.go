package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
				summary, err := store.Health(cmd.Context())
				if err != nil {
					fmt.Fprintln(out, renderStatusLine("database", statusError, err.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("database", statusOK, store.Path(), colorize))
					fmt.Fprintln(out, renderStatusLine("queued", statusInfo, fmt.Sprintf("%d", summary.Queued), colorize))
					fmt.Fprintln(out, renderStatusLine("processing", statusInfo, fmt.Sprintf("%d", summary.Processing), colorize))
					fmt.Fprintln(out, renderStatusLine("done", statusInfo, fmt.Sprintf("%d", summary.Done), colorize))
					kind := statusOK
					if summary.Failed > 0 {
						kind = statusWarn
					}
					fmt.Fprintln(out, renderStatusLine("failed", kind, fmt.Sprintf("%d", summary.Failed), colorize))
				}

				fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
				manager := workflow.NewManager(cfg, store, logging.NewNop())
				for _, health := range manager.Health(cmd.Context()) {
					kind := statusOK
					if !health.Ready {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
				}
				return nil
			})
		},
	}
}
