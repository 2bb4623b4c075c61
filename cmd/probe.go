package cmd

import (
	"context"
	"time"

	"github.com/epwatch/epwatch/config"
	"github.com/epwatch/epwatch/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// probeCmd rebuilds the schedule from the remote guide and reports changes
var probeCmd = &cobra.Command{
	Use:   "probe [show...]",
	Short: "probe the guide for new episodes and rebuild the schedule",
	Long: `Fetch the episode guide for every watched show (or only the named
shows), resolve the most recently aired episode of each, and replace the
persisted schedule. Naming specific shows skips persistence.`,
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

		res, err := m.Probe(ctx, args)
		if err != nil {
			log.Fatal("probe failed", zap.Error(err))
		}

		for _, s := range res.Shows {
			if s.Err != nil {
				log.Warnw("show not resolved", "show", s.Key, "reason", s.Err)
				continue
			}

			log.Infow("resolved show",
				"show", s.Key,
				"episode", s.Code,
				"aired", s.Aired.Format(time.DateOnly),
				"changed", s.Changed,
				"cached", s.FromCache,
			)
		}

		log.Infow("probe complete", "shows", len(res.Shows), "changed", len(res.Deltas), "persisted", res.Persisted)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
