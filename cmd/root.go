package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epwatch/epwatch/pkg/fetch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "epwatch",
	Short: "track new episodes of the shows you watch",
	Long:  `epwatch probes a remote episode guide for the shows in your watched file and reports which ones have newly aired episodes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().Bool("strict", false, "abort the run on the first fetch failure")
	rootCmd.PersistentFlags().Duration("delay", 0, "politeness interval between requests")
}

const (
	defaultMinDelay = time.Second
	defaultTimeout  = 60 * time.Second
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix("EPWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	stateDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".epwatch")
	}

	viper.SetDefault("source.url", "https://epguides.com")
	viper.SetDefault("source.delay", fetch.DefaultBaseDelay)
	viper.SetDefault("source.minDelay", defaultMinDelay)
	viper.SetDefault("source.attempts", fetch.DefaultAttempts)
	viper.SetDefault("source.timeout", defaultTimeout)

	viper.SetDefault("files.dir", stateDir)

	viper.SetDefault("strict", false)

	if flag := rootCmd.PersistentFlags().Lookup("strict"); flag.Changed {
		viper.Set("strict", flag.Value.String() == "true")
	}
	if flag := rootCmd.PersistentFlags().Lookup("delay"); flag.Changed {
		viper.Set("source.delay", flag.Value.String())
	}
}
