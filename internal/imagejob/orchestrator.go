package imagejob

import (
	"context"
	"log/slog"
	"sync"

	"github.com/altafr/present99/internal/models"
)

// Client is the full provider surface the orchestrator needs: submitting jobs
// and fetching their status.
type Client interface {
	Submitter
	StatusFetcher
}

// Orchestrator is the entry point called right after content generation. It
// decides which freshly generated slides need images, dispatches one job per
// such slide, and attaches a poller per returned handle. The caller gets the
// dispatch outcomes immediately; the presentation is usable while jobs are
// still in flight.
type Orchestrator struct {
	client  Client
	store   SlideUpdater
	events  EventPublisher
	opts    PollerOpts
	logger  *slog.Logger
	pollers sync.WaitGroup
}

// NewOrchestrator creates an orchestrator. opts apply to every poller it
// starts; zero values take the defaults.
func NewOrchestrator(client Client, store SlideUpdater, events EventPublisher, opts PollerOpts, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client: client,
		store:  store,
		events: events,
		opts:   opts,
		logger: logger,
	}
}

// Start filters slides to those with an illustrated layout and a prompt,
// dispatches the batch, and starts one poller goroutine per returned handle,
// all wired to a reconciler for the given presentation. It returns as soon as
// dispatch completes. The returned dispatches cover only the slides that were
// sent to the dispatcher.
func (o *Orchestrator) Start(ctx context.Context, presentationID string, slides []models.Slide) ([]Dispatch, error) {
	var needing []models.Slide
	for _, s := range slides {
		if s.Layout.Illustrated() && s.ImagePrompt != "" {
			needing = append(needing, s)
		}
	}
	if len(needing) == 0 {
		return nil, nil
	}
	return o.Submit(ctx, presentationID, needing)
}

// Submit dispatches every given slide without layout filtering and attaches
// pollers. The batch endpoint uses it directly: its callers choose the slides
// themselves, and no-prompt slides still get a skipped entry back.
func (o *Orchestrator) Submit(ctx context.Context, presentationID string, slides []models.Slide) ([]Dispatch, error) {
	dispatcher := NewDispatcher(o.client, o.logger)
	dispatches, err := dispatcher.DispatchBatch(ctx, slides)
	if err != nil {
		return nil, err
	}

	sink := NewReconciler(presentationID, o.store, o.events, o.logger)
	for _, d := range dispatches {
		if d.Handle == "" {
			continue
		}
		poller := NewPoller(d.Handle, d.SlideID, o.client, sink, o.opts, o.logger)
		o.pollers.Add(1)
		go func() {
			defer o.pollers.Done()
			poller.Run(ctx)
		}()
	}
	return dispatches, nil
}

// Wait blocks until every poller started so far has finished. Used on
// shutdown and in tests; callers serving live traffic never need it.
func (o *Orchestrator) Wait() {
	o.pollers.Wait()
}
