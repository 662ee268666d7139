package camera

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

var errNotOpen = errors.New("capture device not open")

// Device reads frames from a local camera through OpenCV. The Mat used for
// reads is reused across frames.
type Device struct {
	mu      sync.Mutex
	width   int
	height  int
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// NewDevice returns a closed device. A zero width or height keeps the
// camera's default resolution.
func NewDevice(width, height int) *Device {
	return &Device{width: width, height: height}
}

func (d *Device) Open(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture != nil {
		return nil
	}
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return fmt.Errorf("open video capture %d: %w", index, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return fmt.Errorf("video capture %d not opened", index)
	}
	if d.width > 0 && d.height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(d.height))
	}

	d.capture = vc
	d.mat = gocv.NewMat()
	return nil
}

func (d *Device) Read() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil, errNotOpen
	}
	if ok := d.capture.Read(&d.mat); !ok {
		return nil, errors.New("cannot read frame")
	}
	if d.mat.Empty() {
		return nil, errors.New("frame is empty")
	}
	return d.mat.ToImage()
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil
	}
	matErr := d.mat.Close()
	capErr := d.capture.Close()
	d.capture = nil
	return errors.Join(capErr, matErr)
}
