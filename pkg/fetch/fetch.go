// Package fetch retrieves a show's raw episode table from the guide source,
// conditionally against the local cache and with retries on transient
// failure.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/epwatch/epwatch/pkg/cache"
	"github.com/epwatch/epwatch/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultAttempts  = 15
	DefaultBaseDelay = 120 * time.Second

	userAgent = "epwatch/1.0"
)

var (
	// ErrUnavailable is a terminal fetch failure after retry exhaustion. It
	// must never be reinterpreted as "no episodes".
	ErrUnavailable = errors.New("guide source unavailable")

	// ErrCacheRead means the source reported the payload unchanged but the
	// cached copy is missing or unreadable, leaving no text to parse.
	ErrCacheRead = errors.New("cached payload unreadable")
)

// Doer executes a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is a fetched payload split into lines. FromCache reports whether the
// source answered "not modified" and the lines came from the cache verbatim.
type Result struct {
	Lines     []string
	FromCache bool
}

type Fetcher struct {
	client    Doer
	store     *cache.Store
	baseURL   string
	attempts  int
	baseDelay time.Duration
	increment time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithAttempts sets the total number of attempts for one logical fetch.
func WithAttempts(attempts int) Option {
	return func(f *Fetcher) {
		f.attempts = attempts
	}
}

// WithBaseDelay sets the delay before the first retry. Subsequent retries
// wait an additional increment each, one second beyond the base delay.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
		f.increment = d + time.Second
	}
}

// WithSleep replaces the inter-attempt wait, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// New builds a Fetcher for the guide source rooted at baseURL, backed by the
// given cache store.
func New(client Doer, store *cache.Store, baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		store:     store,
		baseURL:   strings.TrimRight(baseURL, "/"),
		attempts:  DefaultAttempts,
		baseDelay: DefaultBaseDelay,
		increment: DefaultBaseDelay + time.Second,
		sleep:     sleepCtx,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a conditional retrieval of the episode table for showKey.
// A 304 answer returns the cached payload tagged FromCache; a 200 answer
// refreshes the cache. Any other status or transport error counts as a failed
// attempt; exhausting all attempts yields ErrUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, showKey string) (Result, error) {
	log := logger.FromCtx(ctx, "show", showKey)

	key := strings.ToLower(showKey)
	url := f.baseURL + "/" + key + "/"

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			wait := f.baseDelay + time.Duration(attempt-2)*f.increment
			if hinted := retryAfter(lastErr); hinted > wait {
				wait = hinted
			}

			log.Debugw("retrying fetch", "attempt", attempt, "wait", wait)
			if err := f.sleep(ctx, wait); err != nil {
				return Result{}, err
			}
		}

		res, err := f.attempt(ctx, key, url)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrCacheRead) {
			// no fallback text exists; retrying cannot help
			return Result{}, err
		}

		log.Debug("fetch attempt failed", zap.Error(err))
		lastErr = err
	}

	return Result{}, fmt.Errorf("fetch %q: %w after %d attempts: %v", showKey, ErrUnavailable, f.attempts, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, key, url string) (Result, error) {
	log := logger.FromCtx(ctx, "show", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	if mtime, ok := f.store.Mtime(key); ok {
		req.Header.Set("If-Modified-Since", mtime.UTC().Format(http.TimeFormat))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		lines, ok, err := f.store.Get(key)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrCacheRead, err)
		}
		if !ok {
			return Result{}, fmt.Errorf("%w: source reported unchanged but no entry exists", ErrCacheRead)
		}
		return Result{Lines: lines, FromCache: true}, nil

	case http.StatusOK:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, fmt.Errorf("read body: %w", err)
		}
		if err := f.store.Put(key, raw); err != nil {
			// caller still gets the fresh payload
			log.Warn("failed to refresh cache", zap.Error(err))
		}
		return Result{Lines: cache.SplitLines(raw), FromCache: false}, nil

	default:
		return Result{}, &statusError{status: resp.StatusCode, retryAfter: parseRetryAfter(resp)}
	}
}

type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// parseRetryAfter reads a seconds-valued Retry-After header, if present.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func retryAfter(err error) time.Duration {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryAfter
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
