package cmd

import (
	"github.com/epwatch/epwatch/config"
	"github.com/epwatch/epwatch/pkg/logger"
	"github.com/epwatch/epwatch/pkg/watched"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// showsCmd lists the entries in the watched file
var showsCmd = &cobra.Command{
	Use:   "shows",
	Short: "list the tracked shows and their last-watched episodes",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal("failed to read configuration", zap.Error(err))
		}

		file, malformed, err := watched.Load(cfg.Files.Watched)
		if err != nil {
			log.Fatal("failed to read watched file", zap.Error(err))
		}
		for _, l := range malformed {
			log.Warnw("malformed watched line", "line", l)
		}

		for _, e := range file.Entries() {
			code := e.Code
			if code == "" {
				code = "(unwatched)"
			}
			log.Infow("tracked show", "show", e.Key, "name", e.Display, "watched", code)
		}
	},
}

func init() {
	rootCmd.AddCommand(showsCmd)
}
