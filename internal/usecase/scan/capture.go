package scan

import (
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

// Device is a video capture device addressed by index. Open must release
// anything it acquired when it fails.
type Device interface {
	Open(index int) error
	Read() (image.Image, error)
	Close() error
}

// Source owns the capture device exclusively. Reads and lifecycle changes
// are serialized, so Stop waits for an in-flight read to return.
type Source struct {
	mu     sync.Mutex
	device Device
	index  int
	open   bool
	now    func() time.Time
	logger *zap.Logger
}

func NewSource(device Device, index int, now func() time.Time, logger *zap.Logger) *Source {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{device: device, index: index, now: now, logger: logger}
}

// Start opens the device. It reports whether this call opened it; starting
// an already open source is a no-op.
func (s *Source) Start() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return false, nil
	}
	if err := s.device.Open(s.index); err != nil {
		return false, fmt.Errorf("%w: camera %d: %v", domscan.ErrDeviceUnavailable, s.index, err)
	}
	s.open = true
	s.logger.Info("capture device opened", zap.Int("camera_index", s.index))
	return true, nil
}

// Stop releases the device. Safe to call at any time, any number of times.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.open = false
	if err := s.device.Close(); err != nil {
		s.logger.Warn("capture device close failed", zap.Error(err))
		return
	}
	s.logger.Info("capture device released", zap.Int("camera_index", s.index))
}

func (s *Source) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Source) ReadFrame() (domscan.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return domscan.Frame{}, domscan.ErrFrameUnavailable
	}
	img, err := s.device.Read()
	if err != nil {
		return domscan.Frame{}, fmt.Errorf("%w: %v", domscan.ErrFrameUnavailable, err)
	}
	if img == nil {
		return domscan.Frame{}, domscan.ErrFrameUnavailable
	}
	return domscan.Frame{Image: img, CapturedAt: s.now()}, nil
}
