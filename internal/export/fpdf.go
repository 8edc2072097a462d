package export

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-pdf/fpdf"
)

// A4 portrait layout, millimetres.
const (
	pageMargin    = 20.0
	pageWidth     = 210.0
	contentWidth  = pageWidth - 2*pageMargin
	pageBottom    = 280.0
	overflowLine  = 7.0
	advanceLine   = 6.0
	paragraphGapY = 8.0
	headerSize    = 14.0
	bodySize      = 11.0
	lineFactor    = 1.15
	mmPerPt       = 25.4 / 72
)

// placement is where one wrapped paragraph lands.
type placement struct {
	Page   int
	Y      float64
	Lines  []string
	Header bool
}

// layout paginates paragraphs: a paragraph starts a new page when its
// estimated height would cross the bottom margin.
func layout(paras []Paragraph, wrap func(Paragraph) []string) []placement {
	out := make([]placement, 0, len(paras))
	page, y := 1, pageMargin
	for _, p := range paras {
		lines := wrap(p)
		if y+float64(len(lines))*overflowLine > pageBottom {
			page++
			y = pageMargin
		}
		out = append(out, placement{Page: page, Y: y, Lines: lines, Header: p.Header})
		y += float64(len(lines))*advanceLine + paragraphGapY
	}
	return out
}

// FPDFRenderer draws documents with the core Helvetica font.
type FPDFRenderer struct{}

func NewFPDFRenderer() FPDFRenderer { return FPDFRenderer{} }

func (FPDFRenderer) ContentType() string { return "application/pdf" }

func (FPDFRenderer) Extension() string { return "pdf" }

func (FPDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFont := func(header bool) float64 {
		if header {
			pdf.SetFont("Helvetica", "B", headerSize)
			return headerSize
		}
		pdf.SetFont("Helvetica", "", bodySize)
		return bodySize
	}

	placements := layout(doc.Paragraphs, func(p Paragraph) []string {
		setFont(p.Header)
		return pdf.SplitText(latin1(p.Text), contentWidth)
	})

	pdf.AddPage()
	page := 1
	for _, pl := range placements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for page < pl.Page {
			pdf.AddPage()
			page++
		}
		lineHeight := setFont(pl.Header) * lineFactor * mmPerPt
		for i, line := range pl.Lines {
			pdf.Text(pageMargin, pl.Y+float64(i)*lineHeight, tr(line))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var typographic = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"•", "-", "…", "...",
	"\t", "    ",
)

// latin1 folds text into the range the core fonts can measure.
func latin1(s string) string {
	s = typographic.Replace(s)
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}
