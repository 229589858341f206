package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/themes"
)

// 16:9 widescreen geometry in EMU.
const (
	emuPerInch = 914400

	pptxSlideWidth  = int64(10.0 * emuPerInch)
	pptxSlideHeight = int64(5.625 * emuPerInch)

	pptxMarginLeft   = int64(0.5 * emuPerInch)
	pptxContentWidth = int64(9.0 * emuPerInch)

	pptxFontTitle    = 36
	pptxFontHeading  = 28
	pptxFontSubtitle = 20
	pptxFontBody     = 16
	pptxFontFooter   = 9
)

func solidFill(argb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb))
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

// argb converts a theme "#rrggbb" color to GoPPT's AARRGGBB form.
func argb(hex, fallback string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		hex = strings.TrimPrefix(fallback, "#")
	}
	return "FF" + strings.ToUpper(hex)
}

// PPTX renders a PowerPoint document. Slide images are fetched and embedded;
// a slide whose image cannot be fetched falls back to the image URL as text.
func (e *Exporter) PPTX(ctx context.Context, p *models.Presentation, theme themes.Theme) ([]byte, error) {
	doc := ppt.New()
	doc.GetDocumentProperties().Title = p.Topic
	doc.GetDocumentProperties().Creator = "Present99"

	accent := argb(theme.PrimaryColor, "#667eea")

	for i, s := range p.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = doc.GetActiveSlide()
		} else {
			slide = doc.CreateSlide()
		}
		e.buildSlide(ctx, slide, s, accent)
	}

	w, err := ppt.NewWriter(doc, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("export: pptx writer: %w", err)
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write pptx: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) buildSlide(ctx context.Context, slide *ppt.Slide, s models.Slide, accent string) {
	switch s.Layout {
	case models.LayoutTitle:
		e.addTitleLayout(slide, s, accent)
	case models.LayoutQuote:
		e.addQuoteLayout(slide, s, accent)
	case models.LayoutSectionHeader:
		e.addSectionLayout(slide, s, accent)
	case models.LayoutImageText:
		e.addHeading(slide, s.Title, accent)
		e.addImage(ctx, slide, s.ImageURL,
			pptxMarginLeft, int64(1.1*emuPerInch),
			int64(4.2*emuPerInch), int64(3.6*emuPerInch))
		e.addBullets(slide, s.Content,
			int64(5.0*emuPerInch), int64(1.1*emuPerInch),
			int64(4.5*emuPerInch), int64(4.0*emuPerInch))
	case models.LayoutBigImage:
		e.addHeading(slide, s.Title, accent)
		e.addImage(ctx, slide, s.ImageURL,
			pptxMarginLeft, int64(1.1*emuPerInch),
			pptxContentWidth, int64(4.0*emuPerInch))
	case models.LayoutTwoColumn, models.LayoutComparison:
		e.addHeading(slide, s.Title, accent)
		left, right := splitBullets(s.Content)
		half := int64(4.3 * emuPerInch)
		e.addBullets(slide, left, pptxMarginLeft, int64(1.1*emuPerInch), half, int64(4.0*emuPerInch))
		e.addBullets(slide, right, int64(5.2*emuPerInch), int64(1.1*emuPerInch), half, int64(4.0*emuPerInch))
	default:
		e.addHeading(slide, s.Title, accent)
		e.addBullets(slide, s.Content, pptxMarginLeft, int64(1.1*emuPerInch), pptxContentWidth, int64(4.0*emuPerInch))
	}

	if s.Layout != models.LayoutTitle && s.ID != "" {
		footer := slide.CreateRichTextShape()
		footer.SetOffsetX(int64(9.0 * emuPerInch)).SetOffsetY(int64(5.3 * emuPerInch))
		footer.SetWidth(int64(0.8 * emuPerInch)).SetHeight(int64(0.3 * emuPerInch))
		tr := footer.CreateTextRun(s.ID)
		tr.GetFont().SetSize(pptxFontFooter).SetColor(ppt.NewColor("FF94A3B8"))
	}
}

func (e *Exporter) addTitleLayout(slide *ppt.Slide, s models.Slide, accent string) {
	bar := slide.CreateRichTextShape()
	bar.SetOffsetX(0).SetOffsetY(0)
	bar.SetWidth(pptxSlideWidth).SetHeight(int64(0.15 * emuPerInch))
	bar.SetFill(solidFill(accent))

	title := slide.CreateRichTextShape()
	title.SetOffsetX(pptxMarginLeft).SetOffsetY(int64(1.8 * emuPerInch))
	title.SetWidth(pptxContentWidth).SetHeight(int64(1.0 * emuPerInch))
	tr := title.CreateTextRun(s.Title)
	tr.GetFont().SetSize(pptxFontTitle).SetBold(true).SetColor(ppt.NewColor(accent))
	alignCenter(title.GetActiveParagraph())

	if s.Subtitle != "" {
		sub := slide.CreateRichTextShape()
		sub.SetOffsetX(pptxMarginLeft).SetOffsetY(int64(3.0 * emuPerInch))
		sub.SetWidth(pptxContentWidth).SetHeight(int64(0.7 * emuPerInch))
		str := sub.CreateTextRun(s.Subtitle)
		str.GetFont().SetSize(pptxFontSubtitle).SetColor(ppt.NewColor("FF475569"))
		alignCenter(sub.GetActiveParagraph())
	}
}

func (e *Exporter) addQuoteLayout(slide *ppt.Slide, s models.Slide, accent string) {
	quote := s.Title
	if len(s.Content) > 0 && s.Content[0] != "" {
		quote = s.Content[0]
	}
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(int64(1.0 * emuPerInch)).SetOffsetY(int64(2.0 * emuPerInch))
	shape.SetWidth(int64(8.0 * emuPerInch)).SetHeight(int64(1.5 * emuPerInch))
	tr := shape.CreateTextRun("“" + quote + "”")
	tr.GetFont().SetSize(pptxFontHeading).SetColor(ppt.NewColor(accent))
	alignCenter(shape.GetActiveParagraph())

	if s.Subtitle != "" {
		author := slide.CreateRichTextShape()
		author.SetOffsetX(int64(1.0 * emuPerInch)).SetOffsetY(int64(3.8 * emuPerInch))
		author.SetWidth(int64(8.0 * emuPerInch)).SetHeight(int64(0.5 * emuPerInch))
		atr := author.CreateTextRun("— " + s.Subtitle)
		atr.GetFont().SetSize(pptxFontBody).SetColor(ppt.NewColor("FF475569"))
		alignCenter(author.GetActiveParagraph())
	}
}

func (e *Exporter) addSectionLayout(slide *ppt.Slide, s models.Slide, accent string) {
	num := slide.CreateRichTextShape()
	num.SetOffsetX(pptxMarginLeft).SetOffsetY(int64(1.2 * emuPerInch))
	num.SetWidth(pptxContentWidth).SetHeight(int64(1.4 * emuPerInch))
	ntr := num.CreateTextRun(s.ID)
	ntr.GetFont().SetSize(72).SetBold(true).SetColor(ppt.NewColor("FFCBD5E1"))
	alignCenter(num.GetActiveParagraph())

	title := slide.CreateRichTextShape()
	title.SetOffsetX(pptxMarginLeft).SetOffsetY(int64(2.8 * emuPerInch))
	title.SetWidth(pptxContentWidth).SetHeight(int64(1.0 * emuPerInch))
	tr := title.CreateTextRun(s.Title)
	tr.GetFont().SetSize(pptxFontTitle).SetBold(true).SetColor(ppt.NewColor(accent))
	alignCenter(title.GetActiveParagraph())
}

func (e *Exporter) addHeading(slide *ppt.Slide, title, accent string) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(pptxMarginLeft).SetOffsetY(int64(0.3 * emuPerInch))
	shape.SetWidth(pptxContentWidth).SetHeight(int64(0.7 * emuPerInch))
	tr := shape.CreateTextRun(title)
	tr.GetFont().SetSize(pptxFontHeading).SetBold(true).SetColor(ppt.NewColor(accent))
}

func (e *Exporter) addBullets(slide *ppt.Slide, items []string, x, y, w, h int64) {
	if len(items) == 0 {
		return
	}
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(x).SetOffsetY(y)
	shape.SetWidth(w).SetHeight(h)
	for i, item := range items {
		if i > 0 {
			shape.CreateParagraph()
		}
		tr := shape.CreateTextRun("• " + item)
		tr.GetFont().SetSize(pptxFontBody).SetColor(ppt.NewColor("FF334155"))
	}
}

// addImage fetches and embeds a slide image. On any failure the URL is
// rendered as text instead so the export still completes.
func (e *Exporter) addImage(ctx context.Context, slide *ppt.Slide, url string, x, y, w, h int64) {
	if url == "" {
		return
	}
	data, mime, err := e.fetchImage(ctx, url)
	if err != nil {
		e.logger.Warn("embedding image url as text", "url", url, "error", err)
		shape := slide.CreateRichTextShape()
		shape.SetOffsetX(x).SetOffsetY(y)
		shape.SetWidth(w).SetHeight(h)
		tr := shape.CreateTextRun(url)
		tr.GetFont().SetSize(pptxFontFooter).SetColor(ppt.NewColor("FF64748B"))
		return
	}
	img := slide.CreateDrawingShape()
	img.SetImageData(data, mime)
	img.SetOffsetX(x).SetOffsetY(y)
	img.SetWidth(w).SetHeight(h)
}
