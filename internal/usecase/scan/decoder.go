package scan

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

// SymbolReader runs the barcode primitive over one image. Zero symbols with
// a nil error means nothing was found.
type SymbolReader interface {
	Read(img image.Image) ([]domscan.Symbol, error)
}

// Enhancement maps every channel value v to clamp(Gain*v + Offset).
type Enhancement struct {
	Gain   float64
	Offset float64
}

var DefaultEnhancement = Enhancement{Gain: 1.5, Offset: 20}

func (e Enhancement) Apply(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: e.scale(c.R), G: e.scale(c.G), B: e.scale(c.B), A: c.A}
	})
}

func (e Enhancement) scale(v uint8) uint8 {
	f := e.Gain*float64(v) + e.Offset
	if f <= 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(math.Round(f))
}

// Stage names the preprocessing step that produced a symbol.
type Stage string

const (
	StageRaw       Stage = "raw"
	StageGrayscale Stage = "grayscale"
	StageEnhanced  Stage = "enhanced"
)

type Detection struct {
	Symbol domscan.Symbol
	Stage  Stage
}

// Decoder tries the raw frame, then a grayscale copy, then an enhanced copy
// of the grayscale image, and stops at the first stage that yields a symbol.
// A reader error at one stage does not stop the later ones; the errors are
// returned only when no stage found a symbol. The input image is never
// modified.
type Decoder struct {
	reader      SymbolReader
	enhancement Enhancement
}

func NewDecoder(reader SymbolReader, enhancement Enhancement) *Decoder {
	if enhancement.Gain <= 0 {
		enhancement = DefaultEnhancement
	}
	return &Decoder{reader: reader, enhancement: enhancement}
}

func (d *Decoder) Decode(img image.Image) (Detection, bool, error) {
	if img == nil {
		return Detection{}, false, nil
	}

	var errs []error
	try := func(stage Stage, in image.Image) (Detection, bool) {
		sym, ok, err := d.first(in)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s stage: %w", stage, err))
		}
		return Detection{Symbol: sym, Stage: stage}, ok
	}

	if det, ok := try(StageRaw, img); ok {
		return det, true, nil
	}
	gray := imaging.Grayscale(img)
	if det, ok := try(StageGrayscale, gray); ok {
		return det, true, nil
	}
	if det, ok := try(StageEnhanced, d.enhancement.Apply(gray)); ok {
		return det, true, nil
	}
	return Detection{}, false, errors.Join(errs...)
}

func (d *Decoder) first(img image.Image) (domscan.Symbol, bool, error) {
	symbols, err := d.reader.Read(img)
	if err != nil {
		return domscan.Symbol{}, false, err
	}
	for _, sym := range symbols {
		if sym.Text != "" {
			return sym, true, nil
		}
	}
	return domscan.Symbol{}, false, nil
}
