package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDefaults(t *testing.T) {
	v := viper.New()
	v.SetDefault("source.url", "https://epguides.com")
	v.SetDefault("source.delay", 120*time.Second)
	v.SetDefault("source.attempts", 15)
	v.SetDefault("files.dir", "/tmp/epwatch")

	c, err := New(v)
	require.NoError(t, err)

	assert.Equal(t, "https://epguides.com", c.Source.URL)
	assert.Equal(t, 120*time.Second, c.Source.Delay)
	assert.Equal(t, 15, c.Source.Attempts)

	// unset file paths resolve under the state dir
	assert.Equal(t, filepath.Join("/tmp/epwatch", "watched"), c.Files.Watched)
	assert.Equal(t, filepath.Join("/tmp/epwatch", "schedule"), c.Files.Schedule)
	assert.Equal(t, filepath.Join("/tmp/epwatch", "cache"), c.Files.CacheDir)
}

func TestNewExplicitPathsWin(t *testing.T) {
	v := viper.New()
	v.SetDefault("files.dir", "/tmp/epwatch")
	v.SetDefault("files.watched", "/etc/epwatch/watched")

	c, err := New(v)
	require.NoError(t, err)
	assert.Equal(t, "/etc/epwatch/watched", c.Files.Watched)
	assert.Equal(t, filepath.Join("/tmp/epwatch", "schedule"), c.Files.Schedule)
}
