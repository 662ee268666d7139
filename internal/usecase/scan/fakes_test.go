package scan

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	domproduct "example.com/pos-scanner/internal/domain/product"
	domscan "example.com/pos-scanner/internal/domain/scan"
)

// --- capture device ---

type fakeDevice struct {
	mu      sync.Mutex
	openErr error
	frames  []image.Image
	loop    bool
	next    int
	opened  int
	closed  int
	isOpen  bool
}

func (d *fakeDevice) Open(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return d.openErr
	}
	d.opened++
	d.isOpen = true
	return nil
}

func (d *fakeDevice) Read() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isOpen {
		return nil, errors.New("device closed")
	}
	if d.next >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return nil, io.EOF
		}
		d.next = 0
	}
	img := d.frames[d.next]
	d.next++
	return img, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	d.isOpen = false
	return nil
}

func (d *fakeDevice) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// --- frames and symbol reader ---

// Frames carry their "barcode" in the red channel of pixel (0,0): a value of
// 255 encodes code, anything else encodes nothing.
func solidFrame(v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func barcodeFrame() image.Image { return solidFrame(255) }
func blankFrame() image.Image   { return solidFrame(0) }

func pixelValue(img image.Image) uint8 {
	c := color.NRGBAModel.Convert(img.At(img.Bounds().Min.X, img.Bounds().Min.Y)).(color.NRGBA)
	return c.R
}

type fakeReader struct {
	calls atomic.Int32
	read  func(img image.Image) ([]domscan.Symbol, error)
}

func (r *fakeReader) Read(img image.Image) ([]domscan.Symbol, error) {
	r.calls.Add(1)
	return r.read(img)
}

// readerFor decodes code from any frame whose marker pixel is at least min.
func readerFor(code string, min uint8) *fakeReader {
	return &fakeReader{read: func(img image.Image) ([]domscan.Symbol, error) {
		if pixelValue(img) >= min {
			return []domscan.Symbol{{Text: code, Format: "EAN_13", Bounds: image.Rect(1, 1, 6, 6)}}, nil
		}
		return nil, nil
	}}
}

// --- catalog ---

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*domproduct.Product
	err      error
	lookups  int
}

func newFakeCatalog(products ...*domproduct.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*domproduct.Product)}
	for _, p := range products {
		c.products[p.Barcode] = p
	}
	return c
}

func (c *fakeCatalog) GetByBarcode(ctx context.Context, barcode string) (*domproduct.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if c.err != nil {
		return nil, c.err
	}
	if p, ok := c.products[barcode]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domproduct.ErrProductNotFound
}

func coffee() *domproduct.Product {
	return &domproduct.Product{ID: 1, Barcode: "8934563138165", Name: "Coffee", Price: decimal.NewFromInt(1000), Stock: 20}
}

// --- beeper ---

type fakeBeeper struct {
	count atomic.Int32
	err   error
}

func (b *fakeBeeper) Beep() error {
	b.count.Add(1)
	return b.err
}

// --- clock ---

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
