// Package collector executes a search plan against job-board providers
// with cascading retry and a desired-count cutoff.
package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/source"
	"github.com/helio/keyword-mapper/internal/types"
)

const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second

	// fetchPageSize bounds a single dataset fetch.
	fetchPageSize = 100

	// DefaultPollInterval is the cadence for asynchronous providers.
	DefaultPollInterval = 5 * time.Second

	// DefaultSoftTimeout caps how long one combination may run before the
	// collector fetches whatever is available.
	DefaultSoftTimeout = 7 * time.Minute
)

// BatchFunc observes each fetched batch of postings as it arrives. Used by
// the streaming layer; may be nil.
type BatchFunc func(combination types.SearchCombination, postings []types.JobPosting)

// Collector walks a search plan sequentially. Provider calls are one at a
// time per run: parallel collection is intentionally avoided to stay
// inside provider rate limits.
type Collector struct {
	adapter      source.Adapter
	log          *zap.Logger
	pollInterval time.Duration
	softTimeout  time.Duration
	backoff      time.Duration

	onBatch BatchFunc
}

// Option configures the collector.
type Option func(*Collector)

// WithPollInterval overrides the poll cadence for async providers.
func WithPollInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithSoftTimeout overrides the per-combination cutoff.
func WithSoftTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.softTimeout = d
		}
	}
}

// WithRetryBackoff overrides the fixed delay between retry attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithBatchCallback registers an observer for fetched posting batches.
func WithBatchCallback(fn BatchFunc) Option {
	return func(c *Collector) { c.onBatch = fn }
}

// New creates a collector over one adapter.
func New(adapter source.Adapter, log *zap.Logger, opts ...Option) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collector{
		adapter:      adapter,
		log:          log,
		pollInterval: DefaultPollInterval,
		softTimeout:  DefaultSoftTimeout,
		backoff:      retryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect executes the plan in priority order until desiredCount postings
// are gathered or the plan is exhausted. Provider errors never escape:
// each failed combination is absorbed into the audit and the cascade
// advances. An empty result with a populated audit is a valid outcome.
//
// Only context cancellation is returned as an error, so callers can
// distinguish a cancelled run from an empty one.
func (c *Collector) Collect(ctx context.Context, request types.SearchRequest, plan []types.SearchCombination) ([]types.JobPosting, types.RunMetadata, error) {
	audit := types.RunMetadata{
		StartedAt: time.Now().UTC(),
		Request:   request,
	}

	var postings []types.JobPosting
	remaining := request.DesiredCount

	for _, combination := range plan {
		if remaining <= 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			audit.FinishedAt = time.Now().UTC()
			return postings, audit, err
		}

		got, attempts, err := c.collectCombination(ctx, combination, remaining)
		if err != nil {
			if ctx.Err() != nil {
				audit.RecordFailure(combination.Role, combination.Location, attempts, err)
				audit.FinishedAt = time.Now().UTC()
				return postings, audit, ctx.Err()
			}
			c.log.Warn("combination failed",
				zap.String("role", combination.Role),
				zap.String("location", combination.Location),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			audit.RecordFailure(combination.Role, combination.Location, attempts, err)
			continue
		}

		postings = append(postings, got...)
		remaining -= len(got)
		audit.RecordSuccess(combination.Role, combination.Location, len(got), attempts)

		if c.onBatch != nil && len(got) > 0 {
			c.onBatch(combination, got)
		}
		c.log.Info("combination collected",
			zap.String("role", combination.Role),
			zap.String("location", combination.Location),
			zap.Int("postings", len(got)),
			zap.Int("remaining", remaining),
		)
	}

	audit.FinishedAt = time.Now().UTC()
	return postings, audit, nil
}

// collectCombination runs one combination inside the retry loop: up to
// maxAttempts tries with fixed backoff for transient failures and
// timeouts. Per-kind policy beyond that: a not-found answer is an empty
// result, and an unparseable payload gets one retry before it too becomes
// an empty result.
func (c *Collector) collectCombination(ctx context.Context, combination types.SearchCombination, maxItems int) ([]types.JobPosting, int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		got, err := c.runSearch(ctx, combination, maxItems)
		if err == nil {
			return got, attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, attempt, err
		}
		switch source.KindOf(err) {
		case source.KindNotFound:
			return nil, attempt, nil
		case source.KindInvalidResponse:
			if attempt >= 2 {
				return nil, attempt, nil
			}
		default:
			if !source.IsRetryable(err) {
				return nil, attempt, err
			}
		}
		if attempt < maxAttempts {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			}
		}
	}
	return nil, maxAttempts, lastErr
}

// runSearch drives one provider search end to end: submit, poll until done
// or soft timeout, then fetch pages up to maxItems.
func (c *Collector) runSearch(ctx context.Context, combination types.SearchCombination, maxItems int) ([]types.JobPosting, error) {
	handle, err := c.adapter.StartSearch(ctx, combination.Role, combination.Location, maxItems)
	if err != nil {
		return nil, fmt.Errorf("start search: %w", err)
	}

	deadline := time.Now().Add(c.softTimeout)
	for {
		status, err := c.adapter.Poll(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("poll: %w", err)
		}

		if status.State == source.StateFailed {
			return nil, source.NewError(source.KindTransient, c.adapter.Name(), "provider run failed: "+status.ProviderNote, nil)
		}
		if status.State == source.StateDone || status.State == source.StateTimedOut {
			break
		}
		if time.Now().After(deadline) {
			// Soft timeout: fetch whatever the provider gathered so far.
			c.log.Warn("combination soft timeout, fetching partial results",
				zap.String("role", combination.Role),
				zap.String("location", combination.Location),
			)
			break
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			_ = c.adapter.Cancel(context.WithoutCancel(ctx), handle)
			return nil, ctx.Err()
		}
	}

	var out []types.JobPosting
	offset := 0
	for len(out) < maxItems {
		count := maxItems - len(out)
		if count > fetchPageSize {
			count = fetchPageSize
		}
		page, err := c.adapter.Fetch(ctx, handle, offset, count)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		offset += len(page)
	}
	return out, nil
}
