package tracing

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pageWidth  = 850
	pageHeight = 1100
	pageMargin = 50

	contentWidth = pageWidth - 2*pageMargin

	titleSize    = 36
	guideSize    = 360
	practiceSize = 80
	practiceRows = 4
	rowHeight    = 115
	minFontSize  = 4

	dotStep   = 6
	dotRadius = 2.2
)

var (
	inkColor   = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	dotColor   = color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	guideColor = color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

// Worksheet renders printable tracing pages. Parsed fonts are shared; font
// faces are built per render, so one Worksheet serves concurrent requests.
type Worksheet struct {
	regular *truetype.Font
	cursive *truetype.Font
}

func NewWorksheet() (*Worksheet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	cursive, err := truetype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse cursive font: %w", err)
	}
	return &Worksheet{regular: regular, cursive: cursive}, nil
}

func (w *Worksheet) Render(d Directive) (image.Image, error) {
	dc, err := w.draw(d)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (w *Worksheet) EncodePNG(out io.Writer, d Directive) error {
	img, err := w.Render(d)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

func (w *Worksheet) draw(d Directive) (*gg.Context, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidDirective, d)
	}
	glyphFont := w.regular
	if d.Style == StyleCursive {
		glyphFont = w.cursive
	}

	dc := gg.NewContext(pageWidth, pageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetFontFace(fitFace(w.regular, titleSize, d.Description, contentWidth))
	dc.SetColor(inkColor)
	dc.DrawStringAnchored(d.Description, pageWidth/2, 80, 0.5, 0.5)

	drawDottedGuide(dc, glyphFont, d.Content, pageWidth/2, 345)

	practiceFace := fitFace(glyphFont, practiceSize, d.Content, contentWidth-40)
	for i := 0; i < practiceRows; i++ {
		drawPracticeRow(dc, practiceFace, d.Content, float64(620+i*rowHeight))
	}
	return dc, nil
}

// drawDottedGuide outlines text with dots sampled along the glyph edges,
// scaling the face down so long words still fit the page.
func drawDottedGuide(dc *gg.Context, f *truetype.Font, text string, cx, cy float64) {
	mask := gg.NewContext(pageWidth, pageHeight)
	mask.SetFontFace(fitFace(f, guideSize, text, contentWidth))
	mask.SetColor(color.Black)
	mask.DrawStringAnchored(text, cx, cy, 0.5, 0.5)
	img := mask.Image()

	inside := func(x, y int) bool {
		if x < 0 || y < 0 || x >= pageWidth || y >= pageHeight {
			return false
		}
		_, _, _, a := img.At(x, y).RGBA()
		return a > 0x8000
	}

	half := dotStep / 2
	dc.SetColor(dotColor)
	for y := 0; y < pageHeight; y += dotStep {
		for x := 0; x < pageWidth; x += dotStep {
			if !inside(x, y) {
				continue
			}
			if inside(x-half, y) && inside(x+half, y) && inside(x, y-half) && inside(x, y+half) {
				continue
			}
			dc.DrawCircle(float64(x), float64(y), dotRadius)
		}
	}
	dc.Fill()
}

func drawPracticeRow(dc *gg.Context, ff font.Face, text string, top float64) {
	baseline := top + 90
	midline := top + 45
	left, right := float64(pageMargin), float64(pageWidth-pageMargin)

	dc.SetColor(guideColor)
	dc.SetLineWidth(1)
	dc.DrawLine(left, top, right, top)
	dc.Stroke()

	dc.SetDash(8, 8)
	dc.DrawLine(left, midline, right, midline)
	dc.Stroke()
	dc.SetDash()

	dc.SetColor(inkColor)
	dc.SetLineWidth(2)
	dc.DrawLine(left, baseline, right, baseline)
	dc.Stroke()

	dc.SetFontFace(ff)
	dc.SetColor(guideColor)
	tw, _ := dc.MeasureString(text)
	for x := left + 20; x+tw < right; x += tw + 40 {
		dc.DrawString(text, x, baseline)
	}
}

// fitFace returns a face at size, shrunk so text spans at most maxWidth.
// Very long content bottoms out at minFontSize and may still overflow.
func fitFace(f *truetype.Font, size float64, text string, maxWidth float64) font.Face {
	ff := face(f, size)
	tw := float64(font.MeasureString(ff, text)) / 64
	if tw <= maxWidth {
		return ff
	}
	return face(f, math.Max(minFontSize, math.Floor(size*maxWidth/tw)))
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}
