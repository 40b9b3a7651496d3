package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newEnqueueCmd creates the 'enqueue' subcommand, which queues enrichment jobs
// for the given tournament ids.
func newEnqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <tournament-id> [tournament-id...]",
		Short: "Queue enrichment jobs for tournaments",
		Long: `Queues one enrichment job per tournament id. A tournament that already
has a queued or running job is skipped, so re-running is safe.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			inserted, err := a.Scheduler.Enqueue(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("enqueue: %w", err)
			}
			a.Logger.Info("enqueue complete",
				zap.Int("requested", len(args)),
				zap.Int("inserted", inserted),
				zap.Int("skipped", len(args)-inserted),
			)
			return nil
		},
	}
}
