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

// statusCmd reports pending episodes without touching any durable state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show which tracked shows have unseen episodes",
	Long:  `Probe the guide and report the differences against the persisted schedule without writing anything.`,
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

		res, err := m.Status(ctx)
		if err != nil {
			log.Fatal("status failed", zap.Error(err))
		}

		if len(res.Deltas) == 0 {
			log.Info("nothing new")
			return
		}

		for _, d := range res.Deltas {
			log.Infow("new episode",
				"show", d.Display,
				"episode", d.Code,
				"aired", time.Unix(d.Aired, 0).Format(time.DateOnly),
			)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
