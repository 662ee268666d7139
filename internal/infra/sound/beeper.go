package sound

import (
	"errors"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

var ErrBusy = errors.New("beeper busy")

// Beeper plays a short tone on a background goroutine so that Beep never
// blocks the caller. While a tone is queued, further requests are dropped.
type Beeper struct {
	freq     float64
	duration time.Duration
	play     func(freq float64, durationMs int) error
	queue    chan struct{}
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewBeeper(freq float64, duration time.Duration, logger *zap.Logger) *Beeper {
	return newBeeper(freq, duration, beeep.Beep, logger)
}

func newBeeper(freq float64, duration time.Duration, play func(float64, int) error, logger *zap.Logger) *Beeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Beeper{
		freq:     freq,
		duration: duration,
		play:     play,
		queue:    make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   logger,
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Beeper) Beep() error {
	select {
	case <-b.done:
		return ErrBusy
	default:
	}
	select {
	case b.queue <- struct{}{}:
		return nil
	default:
		return ErrBusy
	}
}

func (b *Beeper) Close() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}

func (b *Beeper) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.queue:
			if err := b.play(b.freq, int(b.duration.Milliseconds())); err != nil {
				b.logger.Debug("beep failed", zap.Error(err))
			}
		}
	}
}

// Silent satisfies the beeper contract without making a sound.
type Silent struct{}

func (Silent) Beep() error { return nil }
