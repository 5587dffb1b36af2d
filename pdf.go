package main

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// PDF Generation
// ---------------------------------------------------------------------------

const (
	pdfHeadingFontSize   = 18
	spacingBeforeCoupons = 50.0
	couponPadding        = 4.0
	couponFontFamily     = "Helvetica"
)

// couponSheet describes how a batch is laid out on the pages.
type couponSheet struct {
	Columns    int
	Rows       int
	Pages      int
	Coupons    int
	Fillers    int
	CellWidth  float64
	CellHeight float64
}

// planSheet derives the table grid. The column count is the number of
// requested coupon widths fitting the page width; the cells then share the
// usable width evenly. The last row is completed with filler cells.
func planSheet(b CouponBatch, pageWidth, usableWidth float64) couponSheet {
	columns := int(pageWidth / float64(b.Width))
	if columns < 1 {
		columns = 1
	}
	rows := (b.Amount + columns - 1) / columns

	return couponSheet{
		Columns:   columns,
		Rows:      rows,
		Coupons:   b.Amount,
		Fillers:   rows*columns - b.Amount,
		CellWidth: usableWidth / float64(columns),
	}
}

// createCouponPDF renders the coupon table of a batch.
// Rows are never split across pages - if a row doesn't fit, a new page is added.
func createCouponPDF(b CouponBatch) ([]byte, couponSheet, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(buildHeading(b), true)
	pdf.SetAuthor(b.Creator, true)
	pdf.SetSubject(b.Reason, true)
	pdf.SetCreator("coupongen v"+version, false)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	marginLeft, marginTop, marginRight, _ := pdf.GetMargins()
	pdf.SetAutoPageBreak(false, marginTop)
	maxY := pageHeight - marginTop

	// Heading
	pdf.SetFont("Courier", "U", pdfHeadingFontSize)
	pdf.CellFormat(0, pdfHeadingFontSize, encodeText(buildHeading(b)), "", 1, "C", false, 0, "")

	sheet := planSheet(b, pageWidth, pageWidth-marginLeft-marginRight)
	lines := wrapCouponLines(pdf, buildCouponLines(b), sheet.CellWidth-2*couponPadding)
	textHeight := linesHeight(lines)
	sheet.CellHeight = math.Max(float64(b.Height), textHeight+2*couponPadding)

	pdf.SetLineWidth(0.5)
	y := pdf.GetY() + spacingBeforeCoupons
	for i := 0; i < sheet.Rows*sheet.Columns; i++ {
		col := i % sheet.Columns
		if col == 0 {
			if i > 0 {
				y += sheet.CellHeight
			}
			if y+sheet.CellHeight > maxY && y > marginTop {
				pdf.AddPage()
				y = marginTop
			}
		}

		x := marginLeft + float64(col)*sheet.CellWidth
		pdf.Rect(x, y, sheet.CellWidth, sheet.CellHeight, "D")
		if i < b.Amount {
			drawCoupon(pdf, lines, x, y+(sheet.CellHeight-textHeight)/2, sheet.CellWidth)
		}
	}
	sheet.Pages = pdf.PageNo()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, sheet, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), sheet, nil
}

// drawCoupon writes the coupon lines centred in a cell starting at top.
func drawCoupon(pdf *fpdf.Fpdf, lines []couponLine, x, top, cellWidth float64) {
	for _, l := range lines {
		pdf.SetFont(couponFontFamily, l.Style, l.Size)
		pdf.SetXY(x+couponPadding, top)
		pdf.CellFormat(cellWidth-2*couponPadding, l.height(), l.Text, "", 0, "C", false, 0, "")
		top += l.height()
	}
}

// wrapCouponLines breaks every line into cp1252 encoded lines no wider than
// width. A single word wider than width stays on its own line.
func wrapCouponLines(pdf *fpdf.Fpdf, lines []couponLine, width float64) []couponLine {
	wrapped := make([]couponLine, 0, len(lines))
	for _, l := range lines {
		words := strings.Fields(l.Text)
		if len(words) == 0 {
			wrapped = append(wrapped, couponLine{Style: l.Style, Size: l.Size})
			continue
		}

		pdf.SetFont(couponFontFamily, l.Style, l.Size)
		current := encodeText(words[0])
		for _, w := range words[1:] {
			candidate := current + " " + encodeText(w)
			if pdf.GetStringWidth(candidate) > width {
				wrapped = append(wrapped, couponLine{Text: current, Style: l.Style, Size: l.Size})
				current = encodeText(w)
				continue
			}
			current = candidate
		}
		wrapped = append(wrapped, couponLine{Text: current, Style: l.Style, Size: l.Size})
	}
	return wrapped
}
