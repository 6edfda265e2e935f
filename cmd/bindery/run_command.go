package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool
	var pollSeconds int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process queued books until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lockPath := filepath.Join(cfg.Paths.LogDir, "bindery.lock")
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another bindery run is already in progress")
			}
			defer lock.Unlock()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			manager := workflow.NewManager(cfg, store, logger)
			go func() {
				<-signalCtx.Done()
				manager.Stop()
			}()

			out := cmd.OutOrStdout()
			poll := time.Duration(pollSeconds) * time.Second
			for {
				result, err := manager.RunBatch(signalCtx)
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				if result.Processed+result.Failed > 0 {
					fmt.Fprintf(out, "Batch complete: %d processed, %d failed in %s\n",
						result.Processed, result.Failed, result.Duration.Round(time.Second))
				}
				if once || signalCtx.Err() != nil {
					return nil
				}

				select {
				case <-signalCtx.Done():
					return nil
				case <-time.After(poll):
				}
			}
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Process the current queue and exit")
	cmd.Flags().IntVar(&pollSeconds, "poll-interval", 60, "Seconds to wait between batches")
	return cmd
}
