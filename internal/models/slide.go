// Package models defines the domain types for Present99.
package models

import "time"

// Layout identifies how a slide is arranged when rendered.
type Layout string

const (
	LayoutTitle         Layout = "title"
	LayoutContent       Layout = "content"
	LayoutTwoColumn     Layout = "two-column"
	LayoutImageText     Layout = "image-text"
	LayoutBigImage      Layout = "big-image"
	LayoutQuote         Layout = "quote"
	LayoutSectionHeader Layout = "section-header"
	LayoutComparison    Layout = "comparison"
)

// Layouts lists every valid slide layout.
var Layouts = []Layout{
	LayoutTitle,
	LayoutContent,
	LayoutTwoColumn,
	LayoutImageText,
	LayoutBigImage,
	LayoutQuote,
	LayoutSectionHeader,
	LayoutComparison,
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	for _, known := range Layouts {
		if l == known {
			return true
		}
	}
	return false
}

// Illustrated reports whether slides with this layout carry a generated image.
// Only these layouts are ever sent to the image provider.
func (l Layout) Illustrated() bool {
	return l == LayoutImageText || l == LayoutBigImage
}

// Slide is a single slide in a presentation.
//
// ImageURL is the only field the image-generation subsystem may write; every
// other field is owned by the editing path.
type Slide struct {
	ID          string   `json:"id"`
	Layout      Layout   `json:"layout"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Content     []string `json:"content,omitempty"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Presentation is an ordered deck of slides generated for a topic.
type Presentation struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	ThemeID   string    `json:"themeId,omitempty"`
	Slides    []Slide   `json:"slides"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
