// Package imagejob orchestrates asynchronous slide-image generation: it
// submits one provider job per illustrated slide, polls each job to a terminal
// state, and reconciles results back onto the live presentation without
// blocking content generation or editing.
package imagejob

import (
	"context"

	"github.com/altafr/present99/internal/replicate"
)

// Status is the lifecycle state of one image job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
	StatusTimedOut   Status = "timed_out"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusTimedOut:
		return true
	}
	return false
}

// Classify maps a provider-native prediction state to a job status. Unknown
// provider states are treated as still-processing and re-polled.
func Classify(providerState string) Status {
	switch providerState {
	case replicate.StateStarting:
		return StatusQueued
	case replicate.StateSucceeded:
		return StatusSucceeded
	case replicate.StateFailed, replicate.StateCanceled:
		return StatusFailed
	default:
		return StatusProcessing
	}
}

// Dispatch is the per-slide outcome of a batch submission. Handle is empty for
// skipped slides and failed submissions. ProviderStatus carries the provider's
// native state string for successfully submitted jobs.
type Dispatch struct {
	SlideID        string
	Handle         string
	Status         Status
	ProviderStatus string
	Err            string
}

// Result is the single terminal event a poller emits for its job.
type Result struct {
	SlideID  string
	Handle   string
	Status   Status
	ImageURL string
	Err      string
}

// ResultSink receives terminal job results. The reconciler is the production
// sink; tests substitute recorders.
type ResultSink interface {
	JobDone(ctx context.Context, res Result)
}

// Submitter starts one image job and reports whether the provider is usable at
// all, so batches can short-circuit instead of failing once per slide.
type Submitter interface {
	Configured() bool
	CreatePrediction(ctx context.Context, prompt string) (*replicate.Prediction, error)
}

// StatusFetcher looks up the current state of a submitted job.
type StatusFetcher interface {
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}
