package imagejob

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/altafr/present99/internal/apperr"
)

// Polling defaults. The first check waits longer than subsequent ones so the
// provider has time to begin work; the attempt cap bounds every job to roughly
// a minute of polling.
const (
	DefaultInitialDelay = 3 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 30
)

// Poller drives one submitted job to a terminal state. Each instance owns only
// its own handle and attempt counter; independent pollers share nothing but
// the sink they emit to.
type Poller struct {
	handle  string
	slideID string
	fetcher StatusFetcher
	sink    ResultSink
	logger  *slog.Logger

	initialDelay time.Duration
	interval     time.Duration
	maxAttempts  int
}

// PollerOpts tune the polling schedule. Zero values take the defaults.
type PollerOpts struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

// NewPoller creates a poller for one job handle tied to a slide.
func NewPoller(handle, slideID string, fetcher StatusFetcher, sink ResultSink, opts PollerOpts, logger *slog.Logger) *Poller {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		handle:       handle,
		slideID:      slideID,
		fetcher:      fetcher,
		sink:         sink,
		logger:       logger,
		initialDelay: opts.InitialDelay,
		interval:     opts.Interval,
		maxAttempts:  opts.MaxAttempts,
	}
}

// Run polls the job until it reaches a terminal state, the attempt cap is hit,
// or ctx is cancelled. Exactly one terminal Result is emitted to the sink,
// except on cancellation where nothing is emitted. After the cap no further
// status call is made.
func (p *Poller) Run(ctx context.Context) {
	delay := p.initialDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = p.interval

		pred, err := p.fetcher.GetPrediction(ctx, p.handle)
		if err != nil {
			if errors.Is(err, apperr.ErrUnknownJob) || errors.Is(err, apperr.ErrProviderUnavailable) {
				p.emit(ctx, Result{
					SlideID: p.slideID,
					Handle:  p.handle,
					Status:  StatusFailed,
					Err:     err.Error(),
				})
				return
			}
			if ctx.Err() != nil {
				return
			}
			// Transient fetch error: spend the attempt and re-poll.
			p.logger.Warn("image status fetch failed",
				slog.String("handle", p.handle),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			continue
		}

		switch Classify(pred.Status) {
		case StatusSucceeded:
			p.emit(ctx, Result{
				SlideID:  p.slideID,
				Handle:   p.handle,
				Status:   StatusSucceeded,
				ImageURL: pred.ImageURL(),
			})
			return
		case StatusFailed:
			p.emit(ctx, Result{
				SlideID: p.slideID,
				Handle:  p.handle,
				Status:  StatusFailed,
				Err:     pred.Error,
			})
			return
		}
	}

	p.logger.Warn("image job timed out",
		slog.String("handle", p.handle),
		slog.String("slide_id", p.slideID),
		slog.Int("attempts", p.maxAttempts))
	p.emit(ctx, Result{
		SlideID: p.slideID,
		Handle:  p.handle,
		Status:  StatusTimedOut,
		Err:     "polling attempt cap exceeded",
	})
}

func (p *Poller) emit(ctx context.Context, res Result) {
	p.sink.JobDone(ctx, res)
}
