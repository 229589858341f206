package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/themes"
)

const revealCDN = "https://cdn.jsdelivr.net/npm/reveal.js@5.1.0/dist"

// HTML renders a self-contained reveal.js slideshow. The document references
// reveal.js from a CDN; slide images stay remote URLs.
func (e *Exporter) HTML(p *models.Presentation, theme themes.Theme) []byte {
	var slides strings.Builder
	for _, s := range p.Slides {
		writeSlideHTML(&slides, s)
	}

	font := theme.Font
	if font == "" {
		font = "Inter, sans-serif"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <link rel="stylesheet" href="%s/reset.css">
  <link rel="stylesheet" href="%s/reveal.css">
  <link rel="stylesheet" href="%s/theme/black.css">
  <style>
    .reveal { font-family: %s; }
    .reveal .slides section {
      background: %s;
      color: %s;
      text-align: left;
      padding: 3rem;
    }
    .reveal h1 { font-size: 3.5rem; font-weight: 700; margin-bottom: 1rem; text-shadow: 0 2px 10px rgba(0, 0, 0, 0.2); }
    .reveal h2 { font-size: 2.5rem; font-weight: 600; margin-bottom: 2rem; text-shadow: 0 2px 8px rgba(0, 0, 0, 0.2); }
    .reveal p { font-size: 1.5rem; opacity: 0.9; }
    .reveal ul { list-style: none; padding: 0; }
    .reveal li { font-size: 1.4rem; line-height: 1.6; padding-left: 2rem; position: relative; margin-bottom: 1.25rem; }
    .reveal li::before { content: '•'; position: absolute; left: 0; font-size: 1.8rem; opacity: 0.8; }
    .reveal .two-column { display: grid; grid-template-columns: 1fr 1fr; gap: 3rem; }
    .reveal .image-text { display: grid; grid-template-columns: 1fr 1fr; gap: 2rem; align-items: center; }
    .reveal img { max-width: 100%%; border-radius: 12px; }
    .reveal .quote-text { font-size: 2.5rem; font-style: italic; text-align: center; margin: 2rem 0; }
    .reveal .quote-author { font-size: 1.5rem; text-align: center; opacity: 0.8; margin-top: 2rem; }
    .reveal .section-number { font-size: 8rem; font-weight: 700; opacity: 0.2; text-align: center; }
    .reveal .section-title { font-size: 4rem; font-weight: 700; text-align: center; }
    .reveal .comparison { display: grid; grid-template-columns: 1fr auto 1fr; gap: 2rem; }
    .reveal .comparison-divider { width: 2px; background: rgba(255, 255, 255, 0.3); }
    .reveal .slide-footer { position: absolute; bottom: 1.5rem; right: 2rem; font-size: 1rem; opacity: 0.7; }
  </style>
</head>
<body>
  <div class="reveal">
    <div class="slides">
%s    </div>
  </div>
  <script src="%s/reveal.js"></script>
  <script>
    Reveal.initialize({
      hash: true,
      controls: true,
      progress: true,
      center: false,
      transition: 'slide',
      width: 1920,
      height: 1080,
      margin: 0
    });
  </script>
</body>
</html>
`,
		html.EscapeString(p.Topic),
		revealCDN, revealCDN, revealCDN,
		font, theme.Gradient, theme.TextColor,
		slides.String(),
		revealCDN,
	)
	return []byte(b.String())
}

func writeSlideHTML(b *strings.Builder, s models.Slide) {
	esc := html.EscapeString

	b.WriteString("      <section>\n")
	switch s.Layout {
	case models.LayoutTitle:
		fmt.Fprintf(b, "        <div class=\"centered\" style=\"text-align: center;\">\n          <h1>%s</h1>\n", esc(s.Title))
		if s.Subtitle != "" {
			fmt.Fprintf(b, "          <p>%s</p>\n", esc(s.Subtitle))
		}
		b.WriteString("        </div>\n")

	case models.LayoutTwoColumn:
		left, right := splitBullets(s.Content)
		fmt.Fprintf(b, "        <h2>%s</h2>\n        <div class=\"two-column\">\n", esc(s.Title))
		writeBullets(b, left)
		writeBullets(b, right)
		b.WriteString("        </div>\n")

	case models.LayoutImageText:
		fmt.Fprintf(b, "        <h2>%s</h2>\n        <div class=\"image-text\">\n", esc(s.Title))
		if s.ImageURL != "" {
			fmt.Fprintf(b, "          <img src=%q alt=%q>\n", esc(s.ImageURL), esc(s.Title))
		} else {
			b.WriteString("          <div class=\"image-placeholder\">Image</div>\n")
		}
		writeBullets(b, s.Content)
		b.WriteString("        </div>\n")

	case models.LayoutBigImage:
		fmt.Fprintf(b, "        <h2>%s</h2>\n", esc(s.Title))
		if s.ImageURL != "" {
			fmt.Fprintf(b, "        <img src=%q alt=%q style=\"max-height: 70vh; margin: 2rem auto; display: block;\">\n", esc(s.ImageURL), esc(s.Title))
		} else {
			b.WriteString("        <div class=\"image-placeholder\">Large Image</div>\n")
		}
		if len(s.Content) > 0 && s.Content[0] != "" {
			fmt.Fprintf(b, "        <p style=\"text-align: center; font-style: italic;\">%s</p>\n", esc(s.Content[0]))
		}

	case models.LayoutQuote:
		quote := s.Title
		if len(s.Content) > 0 && s.Content[0] != "" {
			quote = s.Content[0]
		}
		fmt.Fprintf(b, "        <div class=\"quote-text\">“%s”</div>\n", esc(quote))
		if s.Subtitle != "" {
			fmt.Fprintf(b, "        <div class=\"quote-author\">— %s</div>\n", esc(s.Subtitle))
		}

	case models.LayoutSectionHeader:
		fmt.Fprintf(b, "        <div class=\"section-number\">%s</div>\n        <div class=\"section-title\">%s</div>\n", esc(s.ID), esc(s.Title))
		if s.Subtitle != "" {
			fmt.Fprintf(b, "        <p style=\"text-align: center;\">%s</p>\n", esc(s.Subtitle))
		}

	case models.LayoutComparison:
		left, right := splitBullets(s.Content)
		fmt.Fprintf(b, "        <h2>%s</h2>\n        <div class=\"comparison\">\n          <div>\n", esc(s.Title))
		writeBullets(b, left)
		b.WriteString("          </div>\n          <div class=\"comparison-divider\"></div>\n          <div>\n")
		writeBullets(b, right)
		b.WriteString("          </div>\n        </div>\n")

	default:
		fmt.Fprintf(b, "        <h2>%s</h2>\n", esc(s.Title))
		writeBullets(b, s.Content)
	}

	if s.Layout != models.LayoutTitle {
		fmt.Fprintf(b, "        <div class=\"slide-footer\"><span>%s</span></div>\n", esc(s.ID))
	}
	b.WriteString("      </section>\n")
}

func writeBullets(b *strings.Builder, items []string) {
	b.WriteString("          <ul>\n")
	for _, item := range items {
		fmt.Fprintf(b, "            <li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("          </ul>\n")
}

// splitBullets halves a bullet list for two-column and comparison layouts.
func splitBullets(items []string) ([]string, []string) {
	mid := (len(items) + 1) / 2
	return items[:mid], items[mid:]
}
