package barcode

import (
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/stretchr/testify/require"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

func whiteFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestReader_BlankFrameHasNoSymbol(t *testing.T) {
	symbols, err := NewReader().Read(whiteFrame(120, 80))

	require.NoError(t, err)
	require.Empty(t, symbols)
}

func TestBoundsOf(t *testing.T) {
	frame := image.Rect(0, 0, 640, 480)

	tests := []struct {
		name   string
		points []gozxing.ResultPoint
		want   image.Rectangle
	}{
		{
			name:   "No points",
			points: nil,
			want:   image.Rectangle{},
		},
		{
			name: "Linear code is padded vertically",
			points: []gozxing.ResultPoint{
				gozxing.NewResultPoint(100, 200),
				gozxing.NewResultPoint(300, 200),
			},
			want: image.Rect(100, 150, 300, 250),
		},
		{
			name: "Box is clipped to the frame",
			points: []gozxing.ResultPoint{
				gozxing.NewResultPoint(600, 10),
				gozxing.NewResultPoint(700, 10),
			},
			want: image.Rect(600, 0, 640, 35),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, boundsOf(tt.points, frame))
		})
	}
}

func TestAnnotator_DrawsOnCopy(t *testing.T) {
	src := whiteFrame(200, 120)
	sym := domscan.Symbol{Text: "4006381333931", Format: "EAN_13", Bounds: image.Rect(40, 40, 160, 90)}

	out := NewAnnotator().Annotate(src, sym)

	require.Equal(t, src.Bounds(), out.Bounds())
	r, g, b, _ := out.At(40, 40).RGBA()
	require.Zero(t, r)
	require.NotZero(t, g)
	require.Zero(t, b)

	// the source frame keeps its pixels
	r, g, b, _ = src.At(40, 40).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b)
}

func TestAnnotator_NoBoundsLeavesFrameUnmarked(t *testing.T) {
	src := whiteFrame(50, 50)

	out := NewAnnotator().Annotate(src, domscan.Symbol{Text: "X"})

	r, g, b, _ := out.At(0, 0).RGBA()
	require.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}
