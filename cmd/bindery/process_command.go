package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <book-id>",
		Short: "Download, clean, and publish a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			manager := workflow.NewManager(cfg, store, logger)
			job, err := manager.ProcessBook(cmd.Context(), bookID)
			if err != nil {
				if job != nil && job.ErrorMessage != "" {
					return fmt.Errorf("book %d failed: %s", bookID, job.ErrorMessage)
				}
				return err
			}

			out := cmd.OutOrStdout()
			title := job.Title
			if title == "" {
				title = fmt.Sprintf("book %d", bookID)
			}
			if job.QualityScore != nil {
				fmt.Fprintf(out, "Processed %s (quality %d, pass=%s)\n", title, *job.QualityScore, yesNo(job.QualityPass))
			} else {
				fmt.Fprintf(out, "Processed %s\n", title)
			}
			return nil
		},
	}
}
