package scan

import (
	"sync"
	"time"
)

// Debouncer admits at most one accepted scan per window, whatever the
// barcode.
type Debouncer struct {
	mu             sync.Mutex
	window         time.Duration
	lastAcceptedAt time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

func (d *Debouncer) ShouldAttempt(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastAcceptedAt.IsZero() {
		return true
	}
	return now.Sub(d.lastAcceptedAt) >= d.window
}

func (d *Debouncer) RecordAccepted(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastAcceptedAt = now
}

func (d *Debouncer) LastAcceptedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastAcceptedAt
}
