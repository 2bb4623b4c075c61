package cmd

import (
	"context"

	"github.com/epwatch/epwatch/config"
	"github.com/epwatch/epwatch/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// catchupCmd marks shows as watched through their scheduled episode
var catchupCmd = &cobra.Command{
	Use:   "catchup <show>...",
	Short: "mark shows as caught up with their scheduled episode",
	Long: `Rewrite the watched file so each named show's last-watched code
matches the persisted schedule, then reconcile the schedule: fully caught-up
shows are removed from it.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal("failed to read configuration", zap.Error(err))
		}

		m, err := newManager(cfg)
		if err != nil {
			log.Fatal("failed to set up", zap.Error(err))
		}

		changed, invalid, err := m.CatchUp(ctx, args)
		for _, key := range invalid {
			log.Warnw("show not in schedule", "show", key)
		}
		if err != nil {
			log.Fatal("catchup failed", zap.Error(err))
		}

		log.Infow("catchup complete", "scheduleChanges", changed)
	},
}

func init() {
	rootCmd.AddCommand(catchupCmd)
}
