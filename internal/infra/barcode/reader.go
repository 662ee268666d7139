package barcode

import (
	"fmt"
	"image"
	"math"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

// Reader decodes retail barcodes with gozxing. Readers are tried in order and
// the first successful decode wins.
type Reader struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

func NewReader() *Reader {
	return &Reader{
		readers: []gozxing.Reader{
			oned.NewEAN13Reader(),
			oned.NewEAN8Reader(),
			oned.NewUPCAReader(),
			oned.NewUPCEReader(),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			qrcode.NewQRCodeReader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (r *Reader) Read(img image.Image) ([]domscan.Symbol, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("binarize frame: %w", err)
	}

	for _, zr := range r.readers {
		res, err := zr.Decode(bmp, r.hints)
		// A reader that does not recognise its format reports an error; the
		// next one gets a turn.
		if err != nil || res == nil || res.GetText() == "" {
			continue
		}
		return []domscan.Symbol{{
			Text:   res.GetText(),
			Format: res.GetBarcodeFormat().String(),
			Bounds: boundsOf(res.GetResultPoints(), img.Bounds()),
		}}, nil
	}
	return nil, nil
}

// boundsOf turns result points into a rectangle. Linear codes only report
// points along the scan line, so the box is padded vertically.
func boundsOf(points []gozxing.ResultPoint, frame image.Rectangle) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		if p == nil {
			continue
		}
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	if minX > maxX {
		return image.Rectangle{}
	}
	if pad := (maxX - minX) / 4; maxY-minY < pad {
		minY -= pad
		maxY += pad
	}
	r := image.Rect(int(minX), int(minY), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	return r.Add(frame.Min).Intersect(frame)
}
