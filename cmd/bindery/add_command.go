package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bindery/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var priority int

	cmd := &cobra.Command{
		Use:   "add <book-id>...",
		Short: "Queue books for processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid book id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					if existing, err := store.FindActiveByBook(cmd.Context(), id); err != nil {
						return err
					} else if existing != nil {
						fmt.Fprintf(out, "Book %d already queued as job %d (%s)\n", id, existing.ID, existing.Status)
						continue
					}
					job, err := store.Enqueue(cmd.Context(), id, "", priority)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Queued book %d as job %d\n", id, job.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Queue priority (higher runs first)")
	return cmd
}
