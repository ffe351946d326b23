// Package idletimer is a debounce timer driven by the host's frame tick.
//
// The timer arms on input activity and fires once after Delay has passed
// without further activity. It holds no goroutine; time only moves when the
// host calls Advance.
package idletimer

import "time"

// Timer fires once per quiet period.
type Timer struct {
	delay   time.Duration
	elapsed time.Duration
	armed   bool
}

// New returns a disarmed timer.
func New(delay time.Duration) *Timer {
	return &Timer{delay: delay}
}

// Delay returns the quiet period the timer waits for.
func (t *Timer) Delay() time.Duration { return t.delay }

// Armed reports whether the timer will fire if left alone.
func (t *Timer) Armed() bool { return t.armed }

// Reset records input activity and restarts the quiet period.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.armed = true
}

// Stop disarms the timer without firing.
func (t *Timer) Stop() {
	t.elapsed = 0
	t.armed = false
}

// Advance moves the timer by dt and reports whether it fired. A fired timer
// stays quiet until the next Reset.
func (t *Timer) Advance(dt time.Duration) bool {
	if !t.armed || dt < 0 {
		return false
	}
	t.elapsed += dt
	if t.elapsed < t.delay {
		return false
	}
	t.Stop()
	return true
}
