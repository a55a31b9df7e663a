package charts

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type legendEntry struct {
	label string
	color drawing.Color
}

// toRGBA copies img into a drawable RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// drawLegend draws color swatches with labels in the top-right corner.
func drawLegend(img image.Image, entries []legendEntry) image.Image {
	if img == nil || len(entries) == 0 {
		return img
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{R: 51, G: 51, B: 51, A: 255}), Face: face}
	const swatch, gap = 10, 6
	widest := 0
	for _, e := range entries {
		if w := dr.MeasureString(e.label).Ceil(); w > widest {
			widest = w
		}
	}
	x := b.Max.X - widest - swatch - gap - 14
	y := b.Min.Y + 34
	for _, e := range entries {
		sw := image.Rect(x, y-swatch, x+swatch, y)
		draw.Draw(rgba, sw, image.NewUniform(color.RGBA{R: e.color.R, G: e.color.G, B: e.color.B, A: 255}), image.Point{}, draw.Src)
		dr.Dot = fixed.Point26_6{X: fixed.I(x + swatch + gap), Y: fixed.I(y)}
		dr.DrawString(e.label)
		y += face.Metrics().Height.Ceil() + 4
	}
	return rgba
}

// drawHint draws a small hint string onto the image near the bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
