package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/altafr/present99/internal/apperr"
	"github.com/altafr/present99/internal/deck"
	"github.com/altafr/present99/internal/export"
	"github.com/altafr/present99/internal/imagejob"
	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/replicate"
	"github.com/altafr/present99/internal/sse"
	"github.com/altafr/present99/internal/store"
	"github.com/altafr/present99/internal/themes"
)

// Handler holds API route handlers.
type Handler struct {
	decks    *deck.Service
	repo     store.Repository
	images   *replicate.Client
	jobs     *imagejob.Orchestrator
	themes   *themes.Catalog
	exporter *export.Exporter
	broker   *sse.Broker
}

// NewHandler creates a new Handler.
func NewHandler(decks *deck.Service, repo store.Repository, images *replicate.Client, jobs *imagejob.Orchestrator, catalog *themes.Catalog, exporter *export.Exporter, broker *sse.Broker) *Handler {
	return &Handler{
		decks:    decks,
		repo:     repo,
		images:   images,
		jobs:     jobs,
		themes:   catalog,
		exporter: exporter,
		broker:   broker,
	}
}

const unconfiguredMsg = "configure a Replicate API token to enable image generation"

// GeneratePresentation handles POST /api/generate.
//
//	@Summary		Generate a presentation outline and kick off slide images
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Generation parameters"
//	@Success		201		{object}	models.Presentation
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate [post]
func (h *Handler) GeneratePresentation(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	slides, err := h.decks.Generate(r.Context(), req.Topic, req.SlideCount, req.Tone)
	if err != nil {
		slog.Error("generate presentation failed", slog.String("topic", req.Topic), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to generate presentation"))
		return
	}

	p := &models.Presentation{
		ID:      uuid.New().String(),
		Topic:   req.Topic,
		ThemeID: h.themes.GetOrDefault(req.ThemeID).ID,
		Slides:  slides,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		slog.Error("save presentation failed", slog.String("id", p.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.broker.PublishPresentationEvent("created", p.ID)

	// Image jobs outlive the request; pollers run on a detached context.
	bg := context.WithoutCancel(r.Context())
	if _, err := h.jobs.Start(bg, p.ID, p.Slides); err != nil && !errors.Is(err, apperr.ErrProviderUnavailable) {
		slog.Error("image dispatch failed", slog.String("id", p.ID), slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, p)
}

// GenerateImage handles POST /api/generate-image. It blocks until the
// provider finishes, unlike the batch endpoint.
//
//	@Summary		Generate a single slide image synchronously
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateImageRequest	true	"Prompt"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate-image [post]
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !h.images.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errResponse{
			Error:   "image generation not configured",
			Message: unconfiguredMsg,
		})
		return
	}

	imageURL, err := h.images.Generate(r.Context(), req.Prompt)
	if err != nil {
		slog.Error("image generation failed", slog.String("slideId", req.SlideID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorDetails("failed to generate image", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"imageUrl": imageURL,
		"slideId":  req.SlideID,
	})
}

// GenerateImagesBatch handles POST /api/generate-images-batch. Jobs are
// submitted without blocking on completion. When presentationId is set the
// server polls and reconciles results itself; otherwise callers poll
// /image-status per prediction.
//
//	@Summary		Submit image generation jobs for a batch of slides
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateImagesBatchRequest	true	"Slides to illustrate"
//	@Success		200		{object}	BatchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate-images-batch [post]
func (h *Handler) GenerateImagesBatch(w http.ResponseWriter, r *http.Request) {
	var req GenerateImagesBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Slides == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("slides array is required"))
		return
	}

	slides := make([]models.Slide, len(req.Slides))
	for i, s := range req.Slides {
		slides[i] = models.Slide{ID: s.ID, ImagePrompt: s.ImagePrompt}
	}

	var (
		dispatches []imagejob.Dispatch
		err        error
	)
	if req.PresentationID != "" {
		dispatches, err = h.jobs.Submit(context.WithoutCancel(r.Context()), req.PresentationID, slides)
	} else {
		dispatcher := imagejob.NewDispatcher(h.images, slog.Default())
		dispatches, err = dispatcher.DispatchBatch(r.Context(), slides)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrProviderUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errResponse{
				Error:   "image generation not configured",
				Message: unconfiguredMsg,
			})
			return
		}
		slog.Error("batch dispatch failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorDetails("failed to generate images", err.Error()))
		return
	}

	out := make([]PredictionDTO, len(dispatches))
	for i, d := range dispatches {
		dto := PredictionDTO{SlideID: d.SlideID, Status: string(d.Status)}
		if d.ProviderStatus != "" {
			dto.Status = d.ProviderStatus
		}
		if d.Handle != "" {
			handle := d.Handle
			dto.PredictionID = &handle
		}
		if d.Err != "" {
			dto.Error = d.Err
		}
		out[i] = dto
	}
	writeJSON(w, http.StatusOK, BatchResponse{Predictions: out})
}

// ImageStatus handles GET /api/image-status/{predictionId}.
//
//	@Summary		Check the status of an image generation job
//	@Tags			images
//	@Produce		json
//	@Param			predictionId	path		string	true	"Prediction ID"
//	@Success		200				{object}	ImageStatusResponse
//	@Failure		400				{object}	errResponse
//	@Failure		503				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/image-status/{predictionId} [get]
func (h *Handler) ImageStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "predictionId")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("prediction id is required"))
		return
	}
	if !h.images.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("image generation not configured"))
		return
	}

	pred, err := h.images.GetPrediction(r.Context(), id)
	if err != nil {
		slog.Error("image status check failed", slog.String("predictionId", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorDetails("failed to check image status", err.Error()))
		return
	}

	switch pred.Status {
	case replicate.StateSucceeded:
		writeJSON(w, http.StatusOK, ImageStatusResponse{Status: "succeeded", ImageURL: pred.ImageURL()})
	case replicate.StateFailed, replicate.StateCanceled:
		writeJSON(w, http.StatusOK, ImageStatusResponse{Status: "failed", Error: pred.Error})
	default:
		writeJSON(w, http.StatusOK, ImageStatusResponse{Status: pred.Status})
	}
}

// ListPresentations handles GET /api/presentations.
//
//	@Summary		List saved presentations, most recently updated first
//	@Tags			presentations
//	@Produce		json
//	@Success		200	{object}	PresentationListResponse
//	@Security		BearerAuth
//	@Router			/presentations [get]
func (h *Handler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("list presentations failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PresentationListResponse{Presentations: items, Total: len(items)})
}

// GetPresentation handles GET /api/presentations/{id}.
//
//	@Summary		Get a presentation by id
//	@Tags			presentations
//	@Produce		json
//	@Param			id	path		string	true	"Presentation ID"
//	@Success		200	{object}	models.Presentation
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id} [get]
func (h *Handler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get presentation failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePresentation handles POST /api/presentations.
//
//	@Summary		Save a presentation
//	@Tags			presentations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SavePresentationRequest	true	"Presentation to save"
//	@Success		201		{object}	models.Presentation
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations [post]
func (h *Handler) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SavePresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p := &models.Presentation{
		ID:      uuid.New().String(),
		Topic:   req.Topic,
		ThemeID: h.themes.GetOrDefault(req.ThemeID).ID,
		Slides:  req.Slides,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		slog.Error("create presentation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.broker.PublishPresentationEvent("created", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePresentation handles PUT /api/presentations/{id}.
//
//	@Summary		Replace a presentation
//	@Tags			presentations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Presentation ID"
//	@Param			body	body		SavePresentationRequest	true	"New contents"
//	@Success		200		{object}	models.Presentation
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id} [put]
func (h *Handler) UpdatePresentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SavePresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p := &models.Presentation{
		ID:      id,
		Topic:   req.Topic,
		ThemeID: h.themes.GetOrDefault(req.ThemeID).ID,
		Slides:  req.Slides,
	}
	if err := h.repo.Save(r.Context(), p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update presentation failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.broker.PublishPresentationEvent("updated", id)
	writeJSON(w, http.StatusOK, p)
}

// DeletePresentation handles DELETE /api/presentations/{id}.
//
//	@Summary		Delete a presentation
//	@Tags			presentations
//	@Param			id	path	string	true	"Presentation ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id} [delete]
func (h *Handler) DeletePresentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete presentation failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.broker.PublishPresentationEvent("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListThemes handles GET /api/themes.
//
//	@Summary		List available themes
//	@Tags			themes
//	@Produce		json
//	@Success		200	{object}	map[string][]themes.Theme
//	@Security		BearerAuth
//	@Router			/themes [get]
func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"themes": h.themes.List()})
}

// ExportPresentation handles GET /api/presentations/{id}/export.
//
//	@Summary		Export a presentation as html, pptx or pdf
//	@Tags			presentations
//	@Param			id		path	string	true	"Presentation ID"
//	@Param			format	query	string	true	"Export format"	Enums(html, pptx, pdf)
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/export [get]
func (h *Handler) ExportPresentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("format must be html, pptx or pdf"))
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("export load failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	theme := h.themes.GetOrDefault(p.ThemeID)

	var data []byte
	switch format {
	case export.FormatHTML:
		data = h.exporter.HTML(p, theme)
	case export.FormatPPTX:
		data, err = h.exporter.PPTX(r.Context(), p, theme)
	case export.FormatPDF:
		data, err = h.exporter.PDF(r.Context(), p, theme)
	}
	if err != nil {
		slog.Error("export failed", slog.String("id", id), slog.String("format", string(format)), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("export failed"))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p.Topic, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("export write failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}
