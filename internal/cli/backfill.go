package cli

import (
	"context"

	"ecoquiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewBackfillCmd assigns ids to answers stored before answer ids existed.
func NewBackfillCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Assign ids to legacy answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), *configPath)
		},
	}
}

func runBackfill(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := buildRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.services.Answers.MigrateBackfill(ctx)
	if err != nil {
		return err
	}
	log.Info("backfill complete", "assigned", n)
	return nil
}
