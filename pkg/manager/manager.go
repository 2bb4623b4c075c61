// Package manager drives the fetch→parse→resolve cycle for every tracked
// show and reconciles the results into the persisted schedule and watched
// configuration.
package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/epwatch/epwatch/pkg/fetch"
	"github.com/epwatch/epwatch/pkg/guide"
	"github.com/epwatch/epwatch/pkg/logger"
	"github.com/epwatch/epwatch/pkg/schedule"
	"github.com/epwatch/epwatch/pkg/watched"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrUnknownShow is returned when none of the requested catch-up keys
	// exist in the persisted schedule; the whole request is a no-op.
	ErrUnknownShow = errors.New("show not present in schedule")

	// ErrNothingAired marks a show whose guide parsed cleanly but holds no
	// episode that has aired yet. It is a per-show condition, distinct from
	// any fetch failure.
	ErrNothingAired = errors.New("no aired episode found")
)

// GuideFetcher obtains the raw episode table for a show key.
type GuideFetcher interface {
	Fetch(ctx context.Context, showKey string) (fetch.Result, error)
}

type Manager struct {
	fetcher      GuideFetcher
	watchedPath  string
	schedulePath string
	delay        time.Duration
	minDelay     time.Duration
	strict       bool
	now          func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithDelay sets the politeness interval between requests to the guide
// source, and the reduced interval used when only one show is targeted.
func WithDelay(delay, minDelay time.Duration) Option {
	return func(m *Manager) {
		m.delay = delay
		m.minDelay = minDelay
	}
}

// WithStrict makes a probe run abort on the first fetch failure instead of
// continuing with the remaining shows.
func WithStrict(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// WithClock replaces the wall clock, for deterministic tests. "Today" is the
// local midnight of the returned time.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(fetcher GuideFetcher, watchedPath, schedulePath string, opts ...Option) *Manager {
	m := &Manager{
		fetcher:      fetcher,
		watchedPath:  watchedPath,
		schedulePath: schedulePath,
		delay:        fetch.DefaultBaseDelay,
		minDelay:     time.Second,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ShowStatus is the per-show outcome of a probe run.
type ShowStatus struct {
	Key       string
	Display   string
	Code      string
	Aired     time.Time
	FromCache bool
	Changed   bool
	Final     bool
	Err       error
}

// ProbeResult is the outcome of a probe or status run.
type ProbeResult struct {
	Shows     []ShowStatus
	Schedule  []schedule.Entry
	Deltas    []schedule.Entry
	Persisted bool
}

// Probe runs the full schedule build: every watched show (or the named
// subset) is fetched, parsed and resolved, and the resulting schedule
// replaces the persisted one. A name-filtered run skips persistence.
func (m *Manager) Probe(ctx context.Context, names []string) (ProbeResult, error) {
	return m.probe(ctx, names, true)
}

// Status is a probe that never persists; it only reports what changed since
// the last persisted schedule.
func (m *Manager) Status(ctx context.Context) (ProbeResult, error) {
	return m.probe(ctx, nil, false)
}

func (m *Manager) probe(ctx context.Context, names []string, persist bool) (ProbeResult, error) {
	log := logger.FromCtx(ctx)

	file, malformed, err := watched.Load(m.watchedPath)
	if err != nil {
		return ProbeResult{}, err
	}
	for _, l := range malformed {
		log.Warnw("skipping malformed watched line", "line", l)
	}

	targets := filterEntries(file.Entries(), names)

	previous, err := schedule.Load(m.schedulePath)
	if err != nil {
		return ProbeResult{}, err
	}

	prevCodes := make(map[string]string, len(previous))
	for _, e := range previous {
		prevCodes[strings.ToLower(e.Key)] = e.Code
	}

	limiter := m.newLimiter(len(targets))

	result := ProbeResult{}
	for _, entry := range targets {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		status := ShowStatus{Key: entry.Key, Display: entry.Display}

		res, ok, fromCache, err := m.resolveShow(ctx, entry.Key)
		switch {
		case err != nil:
			status.Err = err
			log.Error("failed to resolve show", zap.String("show", entry.Key), zap.Error(err))
			if m.strict {
				result.Shows = append(result.Shows, status)
				return result, err
			}
		case !ok:
			status.Err = ErrNothingAired
			log.Infow("no aired episode for show", "show", entry.Key)
		default:
			status.Code = res.Code
			status.Aired = res.Aired
			status.FromCache = fromCache
			status.Final = res.Final
			status.Changed = prevCodes[strings.ToLower(entry.Key)] != res.Code

			result.Schedule = append(result.Schedule, schedule.Entry{
				Key:     strings.ToLower(entry.Key),
				Display: entry.Display,
				Code:    res.Code,
				Aired:   res.Aired.Unix(),
			})
		}

		result.Shows = append(result.Shows, status)
	}

	schedule.Sort(result.Schedule)
	result.Deltas = schedule.Diff(previous, result.Schedule)

	if persist && len(names) == 0 {
		if err := schedule.Save(m.schedulePath, result.Schedule); err != nil {
			return result, err
		}
		result.Persisted = true
	}

	return result, nil
}

// CatchUp marks the given shows as watched through their scheduled episode,
// rewrites the watched configuration, then runs the integration pass. It
// returns the number of schedule entries that changed and the subset of keys
// that had no schedule entry. All keys invalid is an error and a no-op.
func (m *Manager) CatchUp(ctx context.Context, keys []string) (int, []string, error) {
	log := logger.FromCtx(ctx)

	sched, err := schedule.Load(m.schedulePath)
	if err != nil {
		return 0, nil, err
	}

	byKey := make(map[string]schedule.Entry, len(sched))
	for _, e := range sched {
		byKey[strings.ToLower(e.Key)] = e
	}

	file, _, err := watched.Load(m.watchedPath)
	if err != nil {
		return 0, nil, err
	}

	var invalid []string
	applied := 0
	for _, key := range keys {
		entry, ok := byKey[strings.ToLower(key)]
		if !ok {
			invalid = append(invalid, key)
			continue
		}

		current, ok := file.Lookup(key)
		if !ok {
			log.Warnw("schedule entry has no watched line", "show", key)
			invalid = append(invalid, key)
			continue
		}

		// the watched pointer never moves backward
		if guide.CodeOrdinal(entry.Code) < guide.CodeOrdinal(current.Code) {
			log.Warnw("refusing to move watched code backward",
				"show", key, "current", current.Code, "scheduled", entry.Code)
			continue
		}

		file.SetCode(key, entry.Code)
		applied++
		log.Infow("caught up", "show", key, "code", entry.Code)
	}

	if applied == 0 && len(invalid) == len(keys) {
		return 0, invalid, ErrUnknownShow
	}

	if err := file.Save(); err != nil {
		return 0, invalid, err
	}

	changed, err := m.Integrate(ctx)
	return changed, invalid, err
}

func (m *Manager) newLimiter(targets int) *rate.Limiter {
	delay := m.delay
	if targets <= 1 {
		delay = m.minDelay
	}
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// resolveShow runs one show through fetch, parse and latest-aired
// resolution.
func (m *Manager) resolveShow(ctx context.Context, key string) (guide.Resolution, bool, bool, error) {
	res, err := m.fetcher.Fetch(ctx, key)
	if err != nil {
		return guide.Resolution{}, false, false, err
	}

	now := m.now()
	episodes := guide.Parse(res.Lines, now.Location())
	resolution, ok := guide.LatestAired(episodes, guide.Midnight(now))
	return resolution, ok, res.FromCache, nil
}

func filterEntries(entries []watched.Entry, names []string) []watched.Entry {
	if len(names) == 0 {
		return entries
	}

	var filtered []watched.Entry
	for _, e := range entries {
		for _, name := range names {
			if strings.EqualFold(e.Key, name) || strings.EqualFold(e.Display, name) {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}
