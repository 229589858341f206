// Package deck generates presentation content: slide titles, bullet points,
// layouts, and per-slide image prompts.
package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/altafr/present99/internal/models"
)

const systemPromptFmt = `You are an expert presentation designer. Create a %s presentation about the given topic.

Return ONLY a valid JSON array of slides with this exact structure:
[
  {
    "id": "1",
    "title": "Main Title",
    "subtitle": "Subtitle text",
    "layout": "title",
    "imagePrompt": "A detailed description for generating a relevant background image"
  },
  {
    "id": "2",
    "title": "Slide Title",
    "content": ["Point 1", "Point 2", "Point 3"],
    "layout": "content",
    "imagePrompt": "Description for slide image"
  }
]

Rules:
- First slide MUST use layout "title"
- Content slides should have 3-5 bullet points
- Use layouts: "title", "content", "two-column", "image-text", "big-image", "quote", "section-header", "comparison"
- Every 3rd or 4th slide should use "image-text" or "big-image" layout
- Each slide MUST have an "imagePrompt" field with a detailed description for image generation
- Make imagePrompts specific, descriptive, and relevant to the slide content
- Return ONLY the JSON array, no other text`

// Completer produces an assistant reply for a system+user prompt pair.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service turns a topic into an ordered list of slides. When the text provider
// is unconfigured or misbehaves it falls back to deterministic sample content
// so the rest of the pipeline keeps working.
type Service struct {
	completer Completer
	logger    *slog.Logger
}

// NewService creates a deck generation service.
func NewService(completer Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: completer, logger: logger}
}

// Generate produces slideCount slides about topic in the requested tone.
func (s *Service) Generate(ctx context.Context, topic string, slideCount int, tone string) ([]models.Slide, error) {
	if slideCount <= 0 {
		slideCount = 5
	}
	if tone == "" {
		tone = "professional"
	}

	if !s.completer.Configured() {
		s.logger.Info("text provider not configured, using sample slides", slog.String("topic", topic))
		return mockSlides(topic, slideCount), nil
	}

	system := fmt.Sprintf(systemPromptFmt, tone)
	user := fmt.Sprintf("Create a %d-slide presentation about: %s", slideCount, topic)

	reply, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn("slide generation failed, using sample slides",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return mockSlides(topic, slideCount), nil
	}

	slides, err := parseSlides(reply)
	if err != nil {
		s.logger.Warn("could not parse generated slides, using sample slides",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return mockSlides(topic, slideCount), nil
	}

	normalize(slides, topic, tone)
	return slides, nil
}

// parseSlides extracts the slide array from a model reply, stripping Markdown
// code fences if the model wrapped its JSON in them.
func parseSlides(reply string) ([]models.Slide, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var slides []models.Slide
	if err := json.Unmarshal([]byte(text), &slides); err != nil {
		return nil, fmt.Errorf("deck: parse slides: %w", err)
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("deck: model returned no slides")
	}
	return slides, nil
}

// normalize fills in identifiers, layouts, and image prompts the model left
// out so every slide downstream is well-formed.
func normalize(slides []models.Slide, topic, tone string) {
	for i := range slides {
		if slides[i].ID == "" {
			slides[i].ID = fmt.Sprintf("%d", i+1)
		}
		if !slides[i].Layout.Valid() {
			if i == 0 {
				slides[i].Layout = models.LayoutTitle
			} else {
				slides[i].Layout = models.LayoutContent
			}
		}
		if slides[i].ImagePrompt == "" {
			slides[i].ImagePrompt = fmt.Sprintf("Professional %s image related to %s", tone, slides[i].Title)
		}
	}
}
