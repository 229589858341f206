package deck

import (
	"fmt"
	"strings"

	"github.com/altafr/present99/internal/models"
)

var sectionTopics = []string{
	"Introduction",
	"Key Concepts",
	"Main Points",
	"Analysis",
	"Benefits",
	"Challenges",
	"Solutions",
	"Case Study",
	"Results",
	"Conclusion",
}

// mockSlides builds a deterministic deck used when no text provider is
// configured or the provider response is unusable.
func mockSlides(topic string, slideCount int) []models.Slide {
	slides := make([]models.Slide, 0, slideCount)

	slides = append(slides, models.Slide{
		ID:          "1",
		Layout:      models.LayoutTitle,
		Title:       topic,
		Subtitle:    "An AI-Generated Presentation",
		ImagePrompt: fmt.Sprintf("Professional, modern background image representing %s, high quality, 16:9 aspect ratio", topic),
	})

	for i := 1; i < slideCount; i++ {
		section := sectionTopics[(i-1)%len(sectionTopics)]

		layout := models.LayoutContent
		switch i % 3 {
		case 0:
			layout = models.LayoutTwoColumn
		case 1:
			layout = models.LayoutImageText
		}

		slides = append(slides, models.Slide{
			ID:     fmt.Sprintf("%d", i+1),
			Layout: layout,
			Title:  fmt.Sprintf("%s: %s", section, topic),
			Content: []string{
				fmt.Sprintf("Key point about %s related to %s", strings.ToLower(topic), strings.ToLower(section)),
				"Important insight that demonstrates understanding",
				"Supporting detail that adds value",
				"Conclusion or takeaway for this section",
			},
			ImagePrompt: fmt.Sprintf("Professional illustration of %s related to %s, modern design, clean, 16:9 aspect ratio", strings.ToLower(section), topic),
		})
	}

	return slides
}
