package main

import (
	"golang.org/x/image/font"
)

// ---------------------------------------------------------------------------
// Form Layout
// ---------------------------------------------------------------------------

const (
	windowTitle  = "Gutschein-Generator"
	windowWidth  = 600
	windowHeight = 450

	defaultFontSize   = 20
	headingFontSize   = 30
	headingY          = 40
	innerRectMargin   = 100
	attributesBeginX  = 110
	attributesBeginY  = 120
	lineSpacingFactor = 1.5

	textFieldWidth    = 100
	scaleBoxWidth     = 70
	scaleBoxHeight    = 35
	generateBtnWidth  = 200
	generateBtnHeight = 40
)

// attributeLabels are painted line by line; the empty line keeps row 3 free.
var attributeLabels = []string{
	"Empfänger:",
	"Anlass:",
	"Ersteller:",
	"",
	"Größe:",
	"Anzahl:",
	"Skalierung:",
}

// Attribute rows used by the input fields.
const (
	rowRecipient = 0
	rowReason    = 1
	rowCreator   = 2
	rowSize      = 4
	rowAmount    = 5
	rowScaling   = 6
)

// rect is a pixel rectangle relative to the top-left corner of the window.
type rect struct {
	X, Y, W, H int
}

// fieldRect places one form control.
type fieldRect struct {
	Name string
	rect
}

// formLayout holds the geometry derived once from the measured label font.
type formLayout struct {
	objectX int
}

// newFormLayout measures every attribute label with face and places the input
// column 50px right of the widest one.
func newFormLayout(face font.Face) formLayout {
	widest := 0
	for _, label := range attributeLabels {
		if w := font.MeasureString(face, label).Ceil(); w > widest {
			widest = w
		}
	}
	return formLayout{objectX: widest + attributesBeginX + 50}
}

// attributeY returns the baseline of the label on the given line.
func attributeY(line int) int {
	return int(attributesBeginY + float64(line)*(defaultFontSize*lineSpacingFactor))
}

// objectY returns the top edge of the input placed next to the label on line.
func objectY(line int) int {
	return attributeY(line) - defaultFontSize
}

// fields returns the rectangles of all form controls in tab order.
func (l formLayout) fields() []fieldRect {
	x := l.objectX
	return []fieldRect{
		{Name: "recipient", rect: rect{x, objectY(rowRecipient), textFieldWidth, defaultFontSize}},
		{Name: "reason", rect: rect{x, objectY(rowReason), textFieldWidth, defaultFontSize}},
		{Name: "creator", rect: rect{x, objectY(rowCreator), textFieldWidth, defaultFontSize}},
		{Name: "width", rect: rect{x, objectY(rowSize), textFieldWidth / 2, defaultFontSize}},
		{Name: "height", rect: rect{x + 100, objectY(rowSize), textFieldWidth / 2, defaultFontSize}},
		{Name: "amount", rect: rect{x, objectY(rowAmount), textFieldWidth, defaultFontSize}},
		{Name: "scaling", rect: rect{x, objectY(rowScaling) + 7, scaleBoxWidth, scaleBoxHeight}},
		{Name: "generate", rect: rect{
			windowWidth/2 - generateBtnWidth/2 - 7,
			int(windowHeight - innerRectMargin + 0.1*generateBtnHeight),
			generateBtnWidth,
			generateBtnHeight,
		}},
	}
}

// sizeSeparator returns the baseline position of the "x" between width and height.
func (l formLayout) sizeSeparator() (x, y int) {
	return l.objectX + 70, attributeY(rowSize) - 5
}

// innerRect is the dark panel behind the labels.
func innerRect() rect {
	return rect{
		X: innerRectMargin - 10,
		Y: innerRectMargin - 10,
		W: windowWidth - 2*innerRectMargin,
		H: windowHeight - 2*innerRectMargin,
	}
}
