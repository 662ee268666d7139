package barcode

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

// Annotator outlines a decoded symbol and writes its text above the box.
type Annotator struct {
	Color     color.RGBA
	Thickness int
}

func NewAnnotator() *Annotator {
	return &Annotator{Color: color.RGBA{G: 255, A: 255}, Thickness: 2}
}

// Annotate draws on a copy; img is left untouched.
func (a *Annotator) Annotate(img image.Image, sym domscan.Symbol) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	box := sym.Bounds.Intersect(b)
	if box.Empty() {
		return out
	}
	a.outline(out, box)

	label := sym.Text
	if sym.Format != "" {
		label = sym.Format + " " + label
	}
	y := box.Min.Y - 4
	if y < b.Min.Y+basicfont.Face7x13.Ascent {
		y = box.Max.Y + basicfont.Face7x13.Ascent + 2
	}
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(a.Color),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(box.Min.X, y),
	}
	d.DrawString(label)
	return out
}

func (a *Annotator) outline(dst *image.RGBA, r image.Rectangle) {
	src := image.NewUniform(a.Color)
	t := a.Thickness
	if t <= 0 {
		t = 1
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}
