package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Source Source `json:"source" yaml:"source" mapstructure:"source"`
	Files  Files  `json:"files" yaml:"files" mapstructure:"files"`
	Strict bool   `json:"strict" yaml:"strict" mapstructure:"strict"`
}

// Source describes the remote episode-guide endpoint and the politeness
// policy toward it.
type Source struct {
	URL      string        `json:"url" yaml:"url" mapstructure:"url"`
	Delay    time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
	MinDelay time.Duration `json:"minDelay" yaml:"minDelay" mapstructure:"minDelay"`
	Attempts int           `json:"attempts" yaml:"attempts" mapstructure:"attempts"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Files locates the durable state. Watched, Schedule and CacheDir default to
// well-known names under Dir.
type Files struct {
	Dir      string `json:"dir" yaml:"dir" mapstructure:"dir"`
	Watched  string `json:"watched" yaml:"watched" mapstructure:"watched"`
	Schedule string `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	CacheDir string `json:"cacheDir" yaml:"cacheDir" mapstructure:"cacheDir"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.Files.Watched == "" {
		c.Files.Watched = filepath.Join(c.Files.Dir, "watched")
	}
	if c.Files.Schedule == "" {
		c.Files.Schedule = filepath.Join(c.Files.Dir, "schedule")
	}
	if c.Files.CacheDir == "" {
		c.Files.CacheDir = filepath.Join(c.Files.Dir, "cache")
	}
}
