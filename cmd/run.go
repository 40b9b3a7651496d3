package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRunCmd creates the 'run' subcommand, which executes a batch of queued
// jobs and exits. Intended for cron-style invocation.
func newRunCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute queued enrichment jobs",
		Long: `Pulls queued jobs oldest first and runs each tournament's crawl
sequentially, staging extracted candidates for review. One failing job never
aborts the rest of the batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.Cfg.Scheduler.BatchLimit
			}
			outcomes, err := a.Scheduler.RunQueued(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				a.Logger.Info("job finished",
					zap.String("job_id", o.JobID),
					zap.String("tournament_id", o.TournamentID),
					zap.String("status", string(o.Status)),
					zap.Int("pages", o.Pages),
					zap.String("error", o.Error),
				)
			}
			a.Logger.Info("batch complete", zap.Int("jobs", len(outcomes)))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max jobs to run (default scheduler.batch_limit)")
	return cmd
}
