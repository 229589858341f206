package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/themes"
)

// PDF renders a printable document, one section per slide. Slide images are
// fetched and embedded; the URL is printed as text when a fetch fails.
func (e *Exporter) PDF(ctx context.Context, p *models.Presentation, theme themes.Theme) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()

	m := maroto.New(cfg)
	accent := pdfColor(theme.PrimaryColor)

	for i, s := range p.Slides {
		e.addPDFSlide(ctx, m, s, i+1, accent)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export: generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func (e *Exporter) addPDFSlide(ctx context.Context, m core.Maroto, s models.Slide, num int, accent *props.Color) {
	switch s.Layout {
	case models.LayoutTitle:
		m.AddRow(20, col.New(12).Add(
			text.New(s.Title, props.Text{
				Size:  22,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: accent,
			}),
		))
		if s.Subtitle != "" {
			m.AddRow(10, col.New(12).Add(
				text.New(s.Subtitle, props.Text{
					Size:  12,
					Align: align.Center,
					Color: &props.Color{Red: 100, Green: 116, Blue: 139},
				}),
			))
		}

	case models.LayoutQuote:
		quote := s.Title
		if len(s.Content) > 0 && s.Content[0] != "" {
			quote = s.Content[0]
		}
		m.AddRow(16, col.New(12).Add(
			text.New("“"+quote+"”", props.Text{
				Size:  14,
				Style: fontstyle.Italic,
				Align: align.Center,
				Color: accent,
			}),
		))
		if s.Subtitle != "" {
			m.AddRow(8, col.New(12).Add(
				text.New("— "+s.Subtitle, props.Text{
					Size:  10,
					Align: align.Center,
				}),
			))
		}

	case models.LayoutImageText, models.LayoutBigImage:
		e.addPDFHeading(m, num, s.Title, accent)
		e.addPDFImage(ctx, m, s.ImageURL)
		e.addPDFBullets(m, s.Content)

	case models.LayoutTwoColumn, models.LayoutComparison:
		e.addPDFHeading(m, num, s.Title, accent)
		left, right := splitBullets(s.Content)
		rows := len(left)
		for i := 0; i < rows; i++ {
			cols := []core.Col{pdfBulletCol(6, left[i])}
			if i < len(right) {
				cols = append(cols, pdfBulletCol(6, right[i]))
			} else {
				cols = append(cols, col.New(6))
			}
			m.AddRow(8, cols...)
		}

	case models.LayoutSectionHeader:
		m.AddRow(16, col.New(12).Add(
			text.New(s.Title, props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: accent,
			}),
		))
		if s.Subtitle != "" {
			m.AddRow(8, col.New(12).Add(
				text.New(s.Subtitle, props.Text{Size: 11, Align: align.Center}),
			))
		}

	default:
		e.addPDFHeading(m, num, s.Title, accent)
		e.addPDFBullets(m, s.Content)
	}

	m.AddRow(6)
}

func (e *Exporter) addPDFHeading(m core.Maroto, num int, title string, accent *props.Color) {
	m.AddRow(10, col.New(12).Add(
		text.New(fmt.Sprintf("%d. %s", num, title), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Color: accent,
		}),
	))
}

func (e *Exporter) addPDFBullets(m core.Maroto, items []string) {
	for _, item := range items {
		m.AddRow(8, pdfBulletCol(12, item))
	}
}

func pdfBulletCol(width int, item string) core.Col {
	return col.New(width).Add(
		text.New("• "+item, props.Text{Size: 10}),
	)
}

func (e *Exporter) addPDFImage(ctx context.Context, m core.Maroto, url string) {
	if url == "" {
		return
	}
	data, mime, err := e.fetchImage(ctx, url)
	if err != nil {
		e.logger.Warn("embedding image url as text", "url", url, "error", err)
		m.AddRow(8, col.New(12).Add(
			text.New(url, props.Text{
				Size:  8,
				Color: &props.Color{Red: 100, Green: 116, Blue: 139},
			}),
		))
		return
	}
	m.AddRow(80, col.New(12).Add(
		image.NewFromBytes(data, imageExtension(mime)),
	))
}

func imageExtension(mime string) extension.Type {
	switch mime {
	case "image/jpeg", "image/jpg":
		return extension.Jpg
	default:
		return extension.Png
	}
}

// pdfColor parses a "#rrggbb" theme color. Unparseable colors fall back to
// the purple-gradient primary.
func pdfColor(hex string) *props.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		hex = "667eea"
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		r, g, b = 102, 126, 234
	}
	return &props.Color{Red: r, Green: g, Blue: b}
}
