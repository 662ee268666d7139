package scan

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

// Annotator draws the located symbol onto a copy of the frame.
type Annotator interface {
	Annotate(img image.Image, sym domscan.Symbol) image.Image
}

type Config struct {
	CameraIndex int
	Cooldown    time.Duration
	Enhancement Enhancement
	FrameDelay  time.Duration
	JPEGQuality int
}

type Dependencies struct {
	Device    Device
	Reader    SymbolReader
	Annotator Annotator
	Catalog   Catalog
	Cart      CartStore
	Beeper    Beeper
	Clock     func() time.Time
	Logger    *zap.Logger
}

type Status struct {
	Running        bool
	Mode           domscan.Mode
	SessionID      string
	LastAcceptedAt time.Time
}

// Scanner is the single scanning session of the process: one camera, one
// mode, one debounce state.
type Scanner struct {
	cfg        Config
	source     *Source
	debounce   *Debouncer
	dispatcher *Dispatcher
	annotator  Annotator
	now        func() time.Time
	logger     *zap.Logger

	mu           sync.RWMutex
	mode         domscan.Mode
	sessionID    string
	registration *domscan.RegistrationResult
	streams      int
}

func NewScanner(cfg Config, deps Dependencies) *Scanner {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = jpeg.DefaultQuality
	}

	debounce := NewDebouncer(cfg.Cooldown)
	decoder := NewDecoder(deps.Reader, cfg.Enhancement)
	return &Scanner{
		cfg:        cfg,
		source:     NewSource(deps.Device, cfg.CameraIndex, deps.Clock, deps.Logger),
		debounce:   debounce,
		dispatcher: NewDispatcher(decoder, debounce, deps.Catalog, deps.Cart, deps.Beeper, deps.Clock, deps.Logger),
		annotator:  deps.Annotator,
		now:        deps.Clock,
		logger:     deps.Logger,
		mode:       domscan.ModeAddToCart,
	}
}

func (s *Scanner) Start(ctx context.Context) error {
	_, err := s.start()
	return err
}

// start opens the camera and reports whether this call is the one that
// opened it.
func (s *Scanner) start() (bool, error) {
	started, err := s.source.Start()
	if err != nil {
		return false, err
	}
	if started {
		id := uuid.NewString()
		s.mu.Lock()
		s.sessionID = id
		s.mu.Unlock()
		s.logger.Info("scanner started", zap.String("session", id))
	}
	return started, nil
}

// attach counts a live feed as a user of the camera until the returned func
// is called.
func (s *Scanner) attach() (detach func()) {
	s.mu.Lock()
	s.streams++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.streams--
		s.mu.Unlock()
	}
}

// release stops the camera unless a live feed is attached to it.
func (s *Scanner) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streams > 0 {
		s.logger.Debug("camera kept open for live feed", zap.Int("streams", s.streams))
		return
	}
	s.source.Stop()
}

// Stop ends any running loop at its next iteration and releases the camera.
func (s *Scanner) Stop() {
	s.source.Stop()
}

func (s *Scanner) Running() bool {
	return s.source.IsOpen()
}

func (s *Scanner) Mode() domscan.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Scanner) SetMode(mode domscan.Mode) error {
	if !mode.IsValid() {
		return domscan.ErrInvalidMode
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.logger.Info("scan mode changed", zap.String("mode", string(mode)))
	return nil
}

func (s *Scanner) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Running:        s.source.IsOpen(),
		Mode:           s.mode,
		SessionID:      s.sessionID,
		LastAcceptedAt: s.debounce.LastAcceptedAt(),
	}
}

// TakeRegistration returns the latest register-check result produced by the
// live feed, once.
func (s *Scanner) TakeRegistration() (domscan.RegistrationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registration == nil {
		return domscan.RegistrationResult{}, false
	}
	r := *s.registration
	s.registration = nil
	return r, true
}

func (s *Scanner) observe(out Outcome) {
	if out.Registration == nil {
		return
	}
	r := *out.Registration
	s.mu.Lock()
	s.registration = &r
	s.mu.Unlock()
}

// Stream runs the capture loop, handing every encoded frame to emit. It
// returns when the scanner is stopped, ctx is done, emit fails, or the
// device stops producing frames. In the last case the camera is released.
func (s *Scanner) Stream(ctx context.Context, emit func(jpeg []byte) error) error {
	detach := s.attach()
	defer detach()

	if err := s.Start(ctx); err != nil {
		return err
	}

	for s.Running() {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := s.source.ReadFrame()
		if err != nil {
			if !s.Running() {
				return nil
			}
			s.logger.Warn("frame read failed, stopping stream", zap.Error(err))
			s.Stop()
			return err
		}

		out, err := s.dispatcher.Dispatch(ctx, frame, s.Mode())
		if err != nil {
			s.logger.Warn("scan dispatch failed", zap.Error(err))
		}
		s.observe(out)

		img := frame.Image
		if out.Decoded() && s.annotator != nil {
			img = s.annotator.Annotate(img, out.Symbol)
		}
		buf, err := s.encode(img)
		if err != nil {
			s.logger.Debug("frame encode failed", zap.Error(err))
			continue
		}
		if err := emit(buf); err != nil {
			return err
		}

		if err := sleepCtx(ctx, s.cfg.FrameDelay); err != nil {
			return err
		}
	}
	return nil
}

// ScanOnce polls frames in the given mode until one yields a result or
// timeout elapses. A camera opened here is released before returning, unless
// a live feed attached to it in the meantime.
func (s *Scanner) ScanOnce(ctx context.Context, mode domscan.Mode, timeout time.Duration) (domscan.RegistrationResult, error) {
	if !mode.IsValid() {
		return domscan.RegistrationResult{}, domscan.ErrInvalidMode
	}

	openedHere, err := s.start()
	if err != nil {
		return domscan.RegistrationResult{}, err
	}
	if openedHere {
		defer s.release()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return domscan.Rejected("", domscan.ReasonTimeout), nil
			}
			return domscan.RegistrationResult{}, err
		}

		frame, err := s.source.ReadFrame()
		if err != nil {
			return domscan.RegistrationResult{}, err
		}

		out, err := s.dispatcher.Dispatch(ctx, frame, mode)
		if err != nil {
			s.logger.Warn("scan dispatch failed", zap.Error(err))
		}

		switch out.Kind {
		case OutcomeRegistration:
			return *out.Registration, nil
		case OutcomeCartUpdated:
			return domscan.Accepted(out.Symbol.Text), nil
		case OutcomeDropped:
			return domscan.Rejected(out.Symbol.Text, domscan.ReasonNotFound), nil
		}

		if err := sleepCtx(ctx, s.cfg.FrameDelay); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return domscan.RegistrationResult{}, err
		}
	}
}

func (s *Scanner) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.cfg.JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
