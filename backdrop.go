package main

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ---------------------------------------------------------------------------
// Backdrop
// ---------------------------------------------------------------------------

var (
	colorLightGray = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	colorDarkGray  = color.RGBA{R: 64, G: 64, B: 64, A: 255}
)

// loadFace parses an embedded TrueType font at the given pixel size.
func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// labelFace is the font every label and input is measured with.
func labelFace() (font.Face, error) {
	return loadFace(goregular.TTF, defaultFontSize)
}

// paintBackdrop draws the static part of the form: background, heading,
// inner panel, attribute labels and the size separator. The result is PNG
// encoded.
func paintBackdrop(layout formLayout, title string) ([]byte, error) {
	regular, err := labelFace()
	if err != nil {
		return nil, err
	}
	heading, err := loadFace(gobold.TTF, headingFontSize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(windowWidth, windowHeight)

	dc.SetColor(colorLightGray)
	dc.DrawRectangle(0, 0, windowWidth, windowHeight)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetFontFace(heading)
	tw, _ := dc.MeasureString(title)
	dc.DrawString(title, windowWidth/2-tw/2-15, headingY)

	inner := innerRect()
	dc.SetColor(colorDarkGray)
	dc.DrawRectangle(float64(inner.X), float64(inner.Y), float64(inner.W), float64(inner.H))
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetFontFace(regular)
	for i, label := range attributeLabels {
		dc.DrawString(label, attributesBeginX, float64(attributeY(i)))
	}

	sx, sy := layout.sizeSeparator()
	dc.DrawString("x", float64(sx), float64(sy))

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode backdrop: %w", err)
	}
	return buf.Bytes(), nil
}
