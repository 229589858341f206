// Package replicate implements a minimal client for the Replicate predictions
// API, used to generate slide illustrations.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/altafr/present99/internal/apperr"
)

// Provider-native prediction states.
const (
	StateStarting   = "starting"
	StateProcessing = "processing"
	StateSucceeded  = "succeeded"
	StateFailed     = "failed"
	StateCanceled   = "canceled"
)

// DefaultBaseURL is the public Replicate API endpoint.
const DefaultBaseURL = "https://api.replicate.com/v1"

// DefaultVersion is the flux-schnell model version used for slide images.
const DefaultVersion = "5599ed30703defd1d160a25a63321b4dec97101d98b4674bcc56e41f62f35637"

// Config holds the provider credential and endpoint. It is constructed once at
// process start and injected into every component that submits image jobs.
type Config struct {
	Token   string
	BaseURL string
	Version string
}

// Prediction is the provider's view of one image-generation job.
type Prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Terminal reports whether the prediction reached a final provider state.
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}

// ImageURL returns the canonical output image. The model is asked for a single
// output; if the provider returns several, the first one is canonical.
func (p *Prediction) ImageURL() string {
	if len(p.Output) == 0 {
		return ""
	}
	return p.Output[0]
}

// Client talks to the Replicate predictions API.
type Client struct {
	token      string
	baseURL    string
	version    string
	httpClient *http.Client
}

// New creates a Client from cfg. An empty token yields a client that reports
// itself unconfigured and fails every call with apperr.ErrProviderUnavailable
// before any network I/O.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		token:   cfg.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		// No client-level timeout: synchronous generation holds the
		// connection open. Callers bound each call through ctx.
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// Configured reports whether a provider credential is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// predictionInput carries the fixed generation parameters. Slide images are
// always 16:9, one output per job.
type predictionInput struct {
	Prompt        string `json:"prompt"`
	NumOutputs    int    `json:"num_outputs"`
	AspectRatio   string `json:"aspect_ratio"`
	OutputFormat  string `json:"output_format"`
	OutputQuality int    `json:"output_quality"`
	GoFast        bool   `json:"go_fast"`
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type apiError struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

func (e *apiError) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// CreatePrediction submits one image-generation job and returns its handle and
// initial status without waiting for the result.
func (c *Client) CreatePrediction(ctx context.Context, prompt string) (*Prediction, error) {
	return c.create(ctx, prompt, false)
}

func (c *Client) create(ctx context.Context, prompt string, wait bool) (*Prediction, error) {
	if !c.Configured() {
		return nil, apperr.ErrProviderUnavailable
	}

	body, err := json.Marshal(predictionRequest{
		Version: c.version,
		Input: predictionInput{
			Prompt:        prompt,
			NumOutputs:    1,
			AspectRatio:   "16:9",
			OutputFormat:  "webp",
			OutputQuality: 80,
			GoFast:        true,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if wait {
		req.Header.Set("Prefer", "wait")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: submit prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("replicate: submission rejected: %s", c.errorMessage(resp))
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("replicate: decode prediction: %w", err)
	}
	return &pred, nil
}

// GetPrediction fetches the current status of a job by handle. An unknown
// handle returns apperr.ErrUnknownJob, which callers treat as terminal.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	if !c.Configured() {
		return nil, apperr.ErrProviderUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: fetch prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("replicate: prediction %s: %w", id, apperr.ErrUnknownJob)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("replicate: status fetch failed: %s", c.errorMessage(resp))
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("replicate: decode prediction: %w", err)
	}
	return &pred, nil
}

// Generate runs one image job synchronously and returns the image URL. It asks
// the provider to hold the connection until the job finishes and re-fetches if
// the response arrives non-terminal. Used by the manual regeneration path; the
// batch path submits asynchronously instead.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	pred, err := c.create(ctx, prompt, true)
	if err != nil {
		return "", err
	}

	for !pred.Terminal() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
		pred, err = c.GetPrediction(ctx, pred.ID)
		if err != nil {
			return "", err
		}
	}

	if pred.Status != StateSucceeded {
		return "", fmt.Errorf("replicate: generation %s: %s", pred.Status, pred.Error)
	}
	return pred.ImageURL(), nil
}

func (c *Client) errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return resp.Status
	}
	var ae apiError
	if err := json.Unmarshal(raw, &ae); err == nil && ae.message() != "" {
		return ae.message()
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return resp.Status
}
