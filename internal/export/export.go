// Package export renders presentations to downloadable documents: a reveal.js
// HTML slideshow, PPTX via GoPPT, and PDF via maroto.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Format identifies an export document type.
type Format string

const (
	FormatHTML Format = "html"
	FormatPPTX Format = "pptx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format query value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatPPTX, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("export: unsupported format %q", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Exporter renders presentations. Generated slide images live on the image
// provider's CDN; binary formats fetch them for embedding and fall back to
// text when a fetch fails.
type Exporter struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an Exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

const maxImageBytes = 10 << 20

// fetchImage downloads a slide image for embedding. Returns the raw bytes and
// the response MIME type.
func (e *Exporter) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("export: image request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("export: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("export: image fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("export: read image: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "image/webp"
	}
	return data, mime, nil
}

// fileStem builds a safe download filename stem from a presentation title.
func fileStem(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	stem := strings.Trim(b.String(), "_")
	if stem == "" {
		stem = "presentation"
	}
	return stem
}

// Filename returns the suggested download filename for a presentation.
func Filename(title string, f Format) string {
	return fileStem(title) + "_presentation." + string(f)
}
