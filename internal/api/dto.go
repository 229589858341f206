package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/altafr/present99/internal/models"
)

// GenerateRequest is the request body for generating a presentation outline.
type GenerateRequest struct {
	Topic      string `json:"topic" example:"The Future of Remote Work" validate:"required"`
	SlideCount int    `json:"slideCount" example:"5"`
	Tone       string `json:"tone" example:"professional"`
	ThemeID    string `json:"themeId" example:"purple-gradient"`
}

// Validate checks field constraints.
func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Required),
		validation.Field(&r.SlideCount, validation.Min(0), validation.Max(20)),
	)
}

// GenerateImageRequest is the request body for synchronous single-image
// generation.
type GenerateImageRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	SlideID string `json:"slideId" example:"3"`
}

// Validate checks field constraints.
func (r GenerateImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
	)
}

// BatchSlide is one slide in a batch image-generation request. Only the id
// and prompt matter to the dispatcher.
type BatchSlide struct {
	ID          string `json:"id" validate:"required"`
	ImagePrompt string `json:"imagePrompt"`
}

// GenerateImagesBatchRequest is the request body for batch image generation.
// PresentationID is optional; when set, finished images are written back to
// the stored presentation.
type GenerateImagesBatchRequest struct {
	PresentationID string       `json:"presentationId"`
	Slides         []BatchSlide `json:"slides"`
}

// PredictionDTO is the per-slide outcome of a batch submission.
// PredictionID is null for slides that were skipped or failed to submit.
type PredictionDTO struct {
	SlideID      string  `json:"slideId" validate:"required"`
	PredictionID *string `json:"predictionId"`
	Status       string  `json:"status" validate:"required"`
	Error        string  `json:"error,omitempty"`
}

// BatchResponse wraps batch submission outcomes.
type BatchResponse struct {
	Predictions []PredictionDTO `json:"predictions" validate:"required"`
}

// ImageStatusResponse reports the state of one image job. ImageURL is set
// only on success; Error only on failure.
type ImageStatusResponse struct {
	Status   string `json:"status" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SavePresentationRequest is the request body for creating or replacing a
// presentation.
type SavePresentationRequest struct {
	Topic   string         `json:"topic" validate:"required"`
	ThemeID string         `json:"themeId"`
	Slides  []models.Slide `json:"slides"`
}

// Validate checks field constraints.
func (r SavePresentationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Required),
		validation.Field(&r.Slides, validation.Required),
	)
}

// PresentationListResponse wraps presentation listings.
type PresentationListResponse struct {
	Presentations []models.Presentation `json:"presentations" validate:"required"`
	Total         int                   `json:"total" example:"3" validate:"required"`
}
