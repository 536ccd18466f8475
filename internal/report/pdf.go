package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/jamesruggles/secuscan/internal/model"
)

const (
	pageW        = 595.28
	pageH        = 841.89
	margin       = 40.0
	contentW     = pageW - 2*margin
	contentBot   = pageH - 55
	headerH      = 90.0
	lineH        = 14.0
	rowH         = 16.0
	maxImageH    = 240.0
	fontRegular  = "go"
	fontBold     = "go-bold"
	footerFormat = "Page %d / %d - Généré par SecuScan Pro"
)

type rgb struct{ r, g, b uint8 }

var (
	colorHeader  = rgb{15, 23, 42}
	colorAccent  = rgb{16, 185, 129}
	colorText    = rgb{50, 50, 50}
	colorTableHd = rgb{30, 41, 59}
	colorMuted   = rgb{150, 150, 150}
	colorWhite   = rgb{255, 255, 255}
	colorStripe  = rgb{241, 245, 249}
)

var (
	glyphsOnce sync.Once
	glyphFont  *sfnt.Font
)

// printable replaces runes the embedded font has no glyph for, so the
// layout never fails on scripts the Go fonts do not cover.
func printable(s string) string {
	glyphsOnce.Do(func() {
		f, err := sfnt.Parse(goregular.TTF)
		if err != nil {
			slog.Error("parse embedded font", "error", err)
			return
		}
		glyphFont = f
	})
	if glyphFont == nil {
		return s
	}
	var buf sfnt.Buffer
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		idx, err := glyphFont.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return '?'
		}
		return r
	}, s)
}

// ExportPDF builds the report document for r with whatever chart
// snapshots are available.
func ExportPDF(r model.ScanResult, snaps Snapshots) ([]byte, error) {
	return renderPDF(PlanPDF(r, snaps))
}

func PDFFilename(r model.ScanResult) string {
	return fmt.Sprintf("SecuScan_Report_%s.pdf", r.ID)
}

type pdfWriter struct {
	pdf *gopdf.GoPdf
	y   float64
}

func renderPDF(plan Plan) ([]byte, error) {
	pdf, err := layoutPDF(plan)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// newPDFWriter starts an A4 document with the report fonts and its first
// page.
func newPDFWriter() (*pdfWriter, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	w := &pdfWriter{pdf: pdf}
	// Every page gets the footer rule as soon as it is added, so pages that
	// end up holding only blank lines still have content to number.
	pdf.AddFooter(w.footerRule)
	pdf.AddPage()
	return w, nil
}

// layoutPDF draws plan into a document with numbered pages.
func layoutPDF(plan Plan) (*gopdf.GoPdf, error) {
	w, err := newPDFWriter()
	if err != nil {
		return nil, err
	}
	if err := w.header(plan); err != nil {
		return nil, err
	}
	for _, sec := range plan.Sections {
		for _, b := range sec.blocks {
			if err := w.block(b); err != nil {
				return nil, fmt.Errorf("rendering %s section: %w", sec.Name, err)
			}
		}
		w.y += 10
	}
	if err := w.footers(); err != nil {
		return nil, err
	}
	return w.pdf, nil
}

func (w *pdfWriter) font(family string, size float64, c rgb) error {
	w.pdf.SetTextColor(c.r, c.g, c.b)
	return w.pdf.SetFont(family, "", size)
}

func (w *pdfWriter) ensure(h float64) {
	if w.y+h <= contentBot {
		return
	}
	w.pdf.AddPage()
	w.y = margin
}

func (w *pdfWriter) text(x, y, width float64, s string, align int) error {
	w.pdf.SetXY(x, y)
	return w.pdf.CellWithOption(&gopdf.Rect{W: width, H: lineH}, printable(s), gopdf.CellOption{Align: align | gopdf.Middle})
}

func (w *pdfWriter) header(plan Plan) error {
	w.pdf.SetFillColor(colorHeader.r, colorHeader.g, colorHeader.b)
	w.pdf.RectFromUpperLeftWithStyle(0, 0, pageW, headerH, "F")

	if err := w.font(fontBold, 20, colorWhite); err != nil {
		return err
	}
	if err := w.text(margin, 22, 250, "SecuScan Pro", gopdf.Left); err != nil {
		return err
	}
	if err := w.font(fontRegular, 11, colorWhite); err != nil {
		return err
	}
	if err := w.text(margin, 50, 250, "Rapport d'Audit de Sécurité", gopdf.Left); err != nil {
		return err
	}

	if err := w.font(fontRegular, 10, colorWhite); err != nil {
		return err
	}
	right := pageW - margin - 260
	for i, line := range []string{"Cible: " + plan.Target, "Date: " + plan.Timestamp, "Score: " + plan.Score} {
		if err := w.text(right, 20+float64(i)*16, 260, w.fit(line, 260), gopdf.Right); err != nil {
			return err
		}
	}
	w.y = headerH + 20
	return nil
}

func (w *pdfWriter) block(b block) error {
	switch b.kind {
	case blockHeading:
		w.ensure(30)
		if err := w.font(fontBold, 14, colorAccent); err != nil {
			return err
		}
		if err := w.text(margin, w.y, contentW, b.text, gopdf.Left); err != nil {
			return err
		}
		w.y += 22
	case blockSubheading:
		w.ensure(24)
		if err := w.font(fontBold, 11, colorText); err != nil {
			return err
		}
		if err := w.text(margin, w.y, contentW, w.fit(b.text, contentW), gopdf.Left); err != nil {
			return err
		}
		w.y += 18
	case blockParagraph:
		return w.paragraph(b.text)
	case blockImage:
		w.image(b)
	case blockTable:
		return w.table(b.table)
	}
	return nil
}

func (w *pdfWriter) paragraph(s string) error {
	if err := w.font(fontRegular, 10, colorText); err != nil {
		return err
	}
	for _, line := range w.wrap(printable(s), contentW) {
		w.ensure(lineH)
		if line == "" {
			if w.y > margin {
				w.y += lineH
			}
			continue
		}
		if err := w.text(margin, w.y, contentW, line, gopdf.Left); err != nil {
			return err
		}
		w.y += lineH
	}
	w.y += 6
	return nil
}

// wrap breaks s into lines no wider than width at word boundaries.
func (w *pdfWriter) wrap(s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, word := range words {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if w.width(next) <= width || cur == "" {
				cur = next
				continue
			}
			lines = append(lines, w.fit(cur, width))
			cur = word
		}
		lines = append(lines, w.fit(cur, width))
	}
	return lines
}

func (w *pdfWriter) width(s string) float64 {
	wd, err := w.pdf.MeasureTextWidth(s)
	if err != nil {
		return 0
	}
	return wd
}

// fit shortens s with an ellipsis until it fits in width.
func (w *pdfWriter) fit(s string, width float64) string {
	s = printable(s)
	if w.width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if cand := string(r) + "..."; w.width(cand) <= width {
			return cand
		}
	}
	return ""
}

func (w *pdfWriter) image(b block) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b.image))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		slog.Warn("skipping unreadable chart image", "chart", b.chartID, "error", err)
		return
	}
	holder, err := gopdf.ImageHolderByBytes(b.image)
	if err != nil {
		slog.Warn("skipping chart image", "chart", b.chartID, "error", err)
		return
	}

	wd := contentW
	ht := wd * float64(cfg.Height) / float64(cfg.Width)
	if ht > maxImageH {
		ht = maxImageH
		wd = ht * float64(cfg.Width) / float64(cfg.Height)
	}
	w.ensure(ht + 8)
	x := margin + (contentW-wd)/2
	if err := w.pdf.ImageByHolder(holder, x, w.y, &gopdf.Rect{W: wd, H: ht}); err != nil {
		slog.Warn("skipping chart image", "chart", b.chartID, "error", err)
		return
	}
	w.y += ht + 8
}

func (w *pdfWriter) table(t *table) error {
	widths := make([]float64, len(t.widths))
	for i, f := range t.widths {
		widths[i] = f * contentW
	}

	if err := w.tableRow(t.header, widths, true, false); err != nil {
		return err
	}
	for i, row := range t.rows {
		if w.y+rowH > contentBot {
			w.pdf.AddPage()
			w.y = margin
			if err := w.tableRow(t.header, widths, true, false); err != nil {
				return err
			}
		}
		if err := w.tableRow(row, widths, false, i%2 == 1); err != nil {
			return err
		}
	}
	w.y += 10
	return nil
}

func (w *pdfWriter) tableRow(cells []string, widths []float64, head, stripe bool) error {
	w.ensure(rowH)
	switch {
	case head:
		w.pdf.SetFillColor(colorTableHd.r, colorTableHd.g, colorTableHd.b)
		w.pdf.RectFromUpperLeftWithStyle(margin, w.y, contentW, rowH, "F")
		if err := w.font(fontBold, 9, colorWhite); err != nil {
			return err
		}
	case stripe:
		w.pdf.SetFillColor(colorStripe.r, colorStripe.g, colorStripe.b)
		w.pdf.RectFromUpperLeftWithStyle(margin, w.y, contentW, rowH, "F")
		fallthrough
	default:
		if err := w.font(fontRegular, 9, colorText); err != nil {
			return err
		}
	}

	x := margin
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		w.pdf.SetXY(x+3, w.y)
		text := w.fit(strings.ReplaceAll(cell, "\n", " "), widths[i]-6)
		if err := w.pdf.CellWithOption(&gopdf.Rect{W: widths[i] - 6, H: rowH}, text, gopdf.CellOption{Align: gopdf.Left | gopdf.Middle}); err != nil {
			return err
		}
		x += widths[i]
	}
	w.y += rowH
	return nil
}

func (w *pdfWriter) footerRule() {
	w.pdf.SetStrokeColor(colorStripe.r, colorStripe.g, colorStripe.b)
	w.pdf.SetLineWidth(0.5)
	w.pdf.Line(margin, pageH-36, pageW-margin, pageH-36)
}

// footers stamps page numbers once the page count is known.
func (w *pdfWriter) footers() error {
	n := w.pdf.GetNumberOfPages()
	for i := 1; i <= n; i++ {
		if err := w.pdf.SetPage(i); err != nil {
			return fmt.Errorf("selecting page %d: %w", i, err)
		}
		if err := w.font(fontRegular, 8, colorMuted); err != nil {
			return err
		}
		if err := w.text(margin, pageH-30, contentW, fmt.Sprintf(footerFormat, i, n), gopdf.Center); err != nil {
			return err
		}
	}
	return nil
}
