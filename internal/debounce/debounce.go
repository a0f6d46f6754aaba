// Package debounce coalesces rapid repeated triggers into a single
// delayed action, restarting the delay on each new trigger.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once per burst of Trigger calls, delay after the
// last one. Cancelling a pending run is best effort: a run already in
// flight is never interrupted, only a not-yet-fired timer is stopped.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn to run after the configured delay, cancelling any
// previously scheduled run that has not fired yet.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.fn()
}

// Flush runs a pending fn immediately. A no-op when nothing is pending,
// so it is safe to call unconditionally on shutdown or screen dismissal.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mu.Unlock()
	d.fn()
}

// Stop discards any pending run without executing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
