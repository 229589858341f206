package imagejob

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/altafr/present99/internal/apperr"
	"github.com/altafr/present99/internal/replicate"
)

// recorderSink collects every emitted result.
type recorderSink struct {
	mu      sync.Mutex
	results []Result
}

func (r *recorderSink) JobDone(_ context.Context, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorderSink) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// fastOpts keeps poller tests quick without changing the state machine.
var fastOpts = PollerOpts{
	InitialDelay: time.Millisecond,
	Interval:     time.Millisecond,
	MaxAttempts:  30,
}

func TestPoller_SucceedsOnFirstAttempt(t *testing.T) {
	client := &fakeClient{statuses: []*replicate.Prediction{
		{ID: "h1", Status: replicate.StateSucceeded, Output: []string{"img://x"}},
	}}
	sink := &recorderSink{}

	NewPoller("h1", "1", client, sink, fastOpts, nil).Run(context.Background())

	if client.statusCalls != 1 {
		t.Errorf("status calls = %d, want 1 (no polling after terminal)", client.statusCalls)
	}
	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("emitted %d results, want exactly 1", len(results))
	}
	if results[0].Status != StatusSucceeded || results[0].ImageURL != "img://x" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestPoller_ProcessingThenSucceeded(t *testing.T) {
	client := &fakeClient{statuses: []*replicate.Prediction{
		{ID: "h1", Status: replicate.StateProcessing},
		{ID: "h1", Status: replicate.StateProcessing},
		{ID: "h1", Status: replicate.StateSucceeded, Output: []string{"img://x"}},
	}}
	sink := &recorderSink{}

	NewPoller("h1", "1", client, sink, fastOpts, nil).Run(context.Background())

	if client.statusCalls != 3 {
		t.Errorf("status calls = %d, want exactly 3", client.statusCalls)
	}
	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("emitted %d results, want 1", len(results))
	}
	if results[0].SlideID != "1" || results[0].ImageURL != "img://x" {
		t.Errorf("result = %+v, want slide 1 with img://x", results[0])
	}
}

func TestPoller_FailureEmitsErrorDetail(t *testing.T) {
	client := &fakeClient{statuses: []*replicate.Prediction{
		{ID: "h1", Status: replicate.StateFailed, Error: "NSFW content detected"},
	}}
	sink := &recorderSink{}

	NewPoller("h1", "1", client, sink, fastOpts, nil).Run(context.Background())

	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("emitted %d results, want 1", len(results))
	}
	if results[0].Status != StatusFailed || results[0].Err != "NSFW content detected" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestPoller_TimesOutAtAttemptCap(t *testing.T) {
	client := &fakeClient{statuses: []*replicate.Prediction{
		{ID: "h1", Status: replicate.StateProcessing},
	}}
	sink := &recorderSink{}

	opts := fastOpts
	opts.MaxAttempts = 30
	NewPoller("h1", "1", client, sink, opts, nil).Run(context.Background())

	if client.statusCalls != 30 {
		t.Errorf("status calls = %d, want 30 (no 31st call)", client.statusCalls)
	}
	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("emitted %d results, want exactly 1 timeout event", len(results))
	}
	if results[0].Status != StatusTimedOut {
		t.Errorf("status = %q, want timed_out", results[0].Status)
	}
}

func TestPoller_UnknownJobIsTerminalFailure(t *testing.T) {
	client := &fakeClient{statusErr: fmt.Errorf("prediction h1: %w", apperr.ErrUnknownJob)}
	sink := &recorderSink{}

	NewPoller("h1", "1", client, sink, fastOpts, nil).Run(context.Background())

	if client.statusCalls != 1 {
		t.Errorf("status calls = %d, want 1 (unknown handle is not retried)", client.statusCalls)
	}
	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("emitted %d results, want 1", len(results))
	}
	if results[0].Status != StatusFailed {
		t.Errorf("status = %q, want failed", results[0].Status)
	}
}

func TestPoller_CancelledContextEmitsNothing(t *testing.T) {
	client := &fakeClient{statuses: []*replicate.Prediction{
		{ID: "h1", Status: replicate.StateProcessing},
	}}
	sink := &recorderSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewPoller("h1", "1", client, sink, fastOpts, nil).Run(ctx)

	if client.statusCalls != 0 {
		t.Errorf("status calls = %d, want 0", client.statusCalls)
	}
	if len(sink.all()) != 0 {
		t.Errorf("emitted %d results, want 0 on cancellation", len(sink.all()))
	}
}
