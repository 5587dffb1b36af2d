package main

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// ---------------------------------------------------------------------------
// Document Generation Helpers
// ---------------------------------------------------------------------------

const (
	couponTitleSize  = 16
	couponBodySize   = 12
	couponFooterSize = 10
	couponLineFactor = 1.2

	pdfExtension = ".pdf"
)

// documentID generates a structured batch reference number.
// Format: GS-YYYY-MM-XXXX (e.g., GS-2026-10-A7K2)
func documentID(year int, month time.Month) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("failed to read random bytes: %w", err))
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}

	return fmt.Sprintf("GS-%d-%02d-%s", year, month, string(b))
}

// defaultFileName is used whenever the save dialog yields no usable path.
func defaultFileName(now time.Time) string {
	return fmt.Sprintf("Gutscheine_%s%s", documentID(now.Year(), now.Month()), pdfExtension)
}

// resolveSavePath turns the answer of a save dialog into the file to write.
// A cancelled dialog, an empty answer or a foreign extension fall back to a
// generated name in dir. Names without extension get ".pdf" appended and
// relative paths are taken relative to dir.
func resolveSavePath(chosen string, ok bool, dir string, now time.Time) string {
	fallback := filepath.Join(dir, defaultFileName(now))

	chosen = strings.TrimSpace(chosen)
	if !ok || chosen == "" {
		return fallback
	}
	if !filepath.IsAbs(chosen) {
		chosen = filepath.Join(dir, chosen)
	}

	ext := filepath.Ext(chosen)
	switch {
	case ext == "":
		return chosen + pdfExtension
	case strings.EqualFold(ext, pdfExtension):
		return chosen
	default:
		return fallback
	}
}

// encodeText converts UTF-8 to Windows-1252, the encoding of the PDF core
// fonts. Runes outside the code page become '?'.
func encodeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Document Content Builders
// ---------------------------------------------------------------------------

// couponLine is one line of coupon text. Text is UTF-8 until the line is
// wrapped for a concrete cell width.
type couponLine struct {
	Text  string
	Style string
	Size  float64
}

func (l couponLine) height() float64 {
	return l.Size * couponLineFactor
}

// buildHeading creates the document heading above the coupon table.
func buildHeading(b CouponBatch) string {
	return "Gutscheine - von " + b.Creator
}

// buildCouponLines creates the text of a single coupon. Every font size is
// multiplied by the batch font scale and each gap gets Scaling blank lines.
func buildCouponLines(b CouponBatch) []couponLine {
	scale := b.FontScale()
	blank := couponLine{Size: couponBodySize * scale}

	lines := []couponLine{{Text: "GUTSCHEIN", Style: "B", Size: couponTitleSize * scale}}
	lines = appendBlank(lines, blank, b.Scaling)
	lines = append(lines, couponLine{Text: "für " + b.Recipient, Size: couponBodySize * scale})
	lines = appendBlank(lines, blank, b.Scaling)
	lines = append(lines, couponLine{Text: b.Reason, Size: couponBodySize * scale})
	lines = appendBlank(lines, blank, b.Scaling)
	lines = append(lines, couponLine{Text: "von " + b.Creator, Style: "I", Size: couponFooterSize * scale})

	return lines
}

func appendBlank(lines []couponLine, blank couponLine, n int) []couponLine {
	for i := 0; i < n; i++ {
		lines = append(lines, blank)
	}
	return lines
}

// linesHeight sums the line heights of a coupon.
func linesHeight(lines []couponLine) float64 {
	var h float64
	for _, l := range lines {
		h += l.height()
	}
	return h
}
