package imagejob

import (
	"context"
	"errors"
	"log/slog"

	"github.com/altafr/present99/internal/apperr"
)

// SlideUpdater writes a generated image reference onto a single slide of a
// stored presentation without disturbing sibling slides or their ordering.
type SlideUpdater interface {
	UpdateSlideImage(ctx context.Context, presentationID, slideID, imageURL string) error
}

// EventPublisher pushes job outcomes to whichever client currently owns the
// slide collection.
type EventPublisher interface {
	PublishSlideImage(presentationID, slideID, imageURL string)
	PublishSlideImageFailure(presentationID, slideID, status, detail string)
}

// Reconciler merges terminal job results into the live slide collection. It is
// the single place all outcomes (success, failure, timeout) surface, and it is
// safe to invoke at any time relative to user edits: a result for a slide that
// was deleted in the interim is dropped with a log line, and nothing but the
// image reference is ever written.
type Reconciler struct {
	presentationID string
	store          SlideUpdater
	events         EventPublisher
	logger         *slog.Logger
}

// NewReconciler creates a reconciler bound to one presentation.
func NewReconciler(presentationID string, store SlideUpdater, events EventPublisher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		presentationID: presentationID,
		store:          store,
		events:         events,
		logger:         logger,
	}
}

// JobDone applies one terminal result. It satisfies ResultSink.
func (r *Reconciler) JobDone(ctx context.Context, res Result) {
	if res.Status != StatusSucceeded {
		r.logger.Warn("image job did not produce an image",
			slog.String("presentation_id", r.presentationID),
			slog.String("slide_id", res.SlideID),
			slog.String("status", string(res.Status)),
			slog.String("error", res.Err))
		if r.events != nil {
			r.events.PublishSlideImageFailure(r.presentationID, res.SlideID, string(res.Status), res.Err)
		}
		return
	}

	err := r.store.UpdateSlideImage(ctx, r.presentationID, res.SlideID, res.ImageURL)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// The slide (or the whole presentation) was deleted while the
			// job was in flight. Drop the result.
			r.logger.Info("dropping image result for missing slide",
				slog.String("presentation_id", r.presentationID),
				slog.String("slide_id", res.SlideID))
			return
		}
		r.logger.Error("failed to apply image result",
			slog.String("presentation_id", r.presentationID),
			slog.String("slide_id", res.SlideID),
			slog.String("error", err.Error()))
		return
	}

	r.logger.Info("slide image applied",
		slog.String("presentation_id", r.presentationID),
		slog.String("slide_id", res.SlideID),
		slog.String("image_url", res.ImageURL))
	if r.events != nil {
		r.events.PublishSlideImage(r.presentationID, res.SlideID, res.ImageURL)
	}
}
