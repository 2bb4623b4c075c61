package cmd

import (
	"net/http"
	"os"

	"github.com/epwatch/epwatch/config"
	"github.com/epwatch/epwatch/pkg/cache"
	"github.com/epwatch/epwatch/pkg/fetch"
	"github.com/epwatch/epwatch/pkg/manager"
)

// newManager wires the cache store, fetcher and reconciliation engine from
// the resolved configuration.
func newManager(cfg config.Config) (*manager.Manager, error) {
	if cfg.Files.Dir != "" {
		if err := os.MkdirAll(cfg.Files.Dir, 0o755); err != nil {
			return nil, err
		}
	}

	store, err := cache.New(cfg.Files.CacheDir)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Source.Timeout}
	fetcher := fetch.New(client, store, cfg.Source.URL,
		fetch.WithAttempts(cfg.Source.Attempts),
		fetch.WithBaseDelay(cfg.Source.Delay),
	)

	m := manager.New(fetcher, cfg.Files.Watched, cfg.Files.Schedule,
		manager.WithDelay(cfg.Source.Delay, cfg.Source.MinDelay),
		manager.WithStrict(cfg.Strict),
	)

	return m, nil
}
