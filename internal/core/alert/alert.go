// Package alert implements the board's single transient banner.
package alert

import (
	"sync"
	"time"

	"github.com/penwyp/go-tally/internal/util"
)

// Alert is a message that hides itself after a delay. At most one expiry
// timer is pending; raising again or dismissing supersedes it.
type Alert struct {
	mu      sync.Mutex
	message string
	visible bool
	gen     uint64
	timer   *time.Timer
	expired chan uint64
}

// New returns a hidden alert.
func New() *Alert {
	return &Alert{expired: make(chan uint64, 1)}
}

// C delivers the generation of each timer that fires. Pass it to Expire from
// the goroutine that owns the display.
func (a *Alert) C() <-chan uint64 {
	return a.expired
}

// Raise shows msg and schedules it to hide after d. A non-positive d keeps
// the alert up until dismissed. It returns the new generation.
func (a *Alert) Raise(msg string, d time.Duration) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
	a.gen++
	a.message = msg
	a.visible = true

	if d > 0 {
		gen := a.gen
		a.timer = time.AfterFunc(d, func() { a.post(gen) })
	}
	util.LogDebug("Alert raised", util.F("gen", a.gen), util.F("message", msg))
	return a.gen
}

// Dismiss hides the alert and cancels any pending expiry.
func (a *Alert) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
	a.gen++
	a.visible = false
	a.message = ""
}

// Expire hides the alert if gen is still current. It reports whether
// anything changed.
func (a *Alert) Expire(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || !a.visible {
		return false
	}
	a.visible = false
	a.message = ""
	a.timer = nil
	return true
}

// Active returns the visible message.
func (a *Alert) Active() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message, a.visible
}

// Stop cancels the pending timer without changing visibility.
func (a *Alert) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Alert) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// post never blocks the timer goroutine. A full buffer holds an older
// generation, which Expire would reject anyway, so it is replaced.
func (a *Alert) post(gen uint64) {
	for {
		select {
		case a.expired <- gen:
			return
		default:
		}
		select {
		case <-a.expired:
		default:
		}
	}
}
