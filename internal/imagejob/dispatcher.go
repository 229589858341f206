package imagejob

import (
	"context"
	"log/slog"

	"github.com/altafr/present99/internal/apperr"
	"github.com/altafr/present99/internal/models"
)

// Dispatcher submits one image job per slide that carries a prompt.
type Dispatcher struct {
	submitter Submitter
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher using the given provider client.
func NewDispatcher(submitter Submitter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{submitter: submitter, logger: logger}
}

// DispatchBatch submits jobs sequentially in input order and returns one
// Dispatch per slide. Slides without a prompt are recorded as skipped, not as
// errors. A submission failure for one slide never aborts the rest of the
// batch. When the provider is unconfigured the whole batch short-circuits with
// apperr.ErrProviderUnavailable and no submission is attempted.
func (d *Dispatcher) DispatchBatch(ctx context.Context, slides []models.Slide) ([]Dispatch, error) {
	if !d.submitter.Configured() {
		return nil, apperr.ErrProviderUnavailable
	}

	dispatches := make([]Dispatch, 0, len(slides))
	for _, slide := range slides {
		if slide.ImagePrompt == "" {
			dispatches = append(dispatches, Dispatch{
				SlideID: slide.ID,
				Status:  StatusSkipped,
			})
			continue
		}

		pred, err := d.submitter.CreatePrediction(ctx, slide.ImagePrompt)
		if err != nil {
			d.logger.Warn("image submission failed",
				slog.String("slide_id", slide.ID),
				slog.String("error", err.Error()))
			dispatches = append(dispatches, Dispatch{
				SlideID: slide.ID,
				Status:  StatusFailed,
				Err:     err.Error(),
			})
			continue
		}

		d.logger.Info("image job started",
			slog.String("slide_id", slide.ID),
			slog.String("handle", pred.ID),
			slog.String("provider_status", pred.Status))
		dispatches = append(dispatches, Dispatch{
			SlideID:        slide.ID,
			Handle:         pred.ID,
			Status:         Classify(pred.Status),
			ProviderStatus: pred.Status,
		})
	}
	return dispatches, nil
}
