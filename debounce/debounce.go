// Package debounce coalesces bursts of values into a single delivery.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period applied to search text.
const DefaultDelay = 200 * time.Millisecond

// Debouncer delivers the last value pushed once no new value has arrived for
// the configured delay. Earlier values in a burst are dropped.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	// deliver serializes claim-and-call, so values reach fn in push order.
	deliver sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
	stopped bool
}

// New creates a Debouncer that calls fn with the settled value. A delay of
// zero or less uses DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push records v as the pending value and restarts the delay.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = v
	d.armed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush delivers the pending value now. It reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	v, ok := d.take(0, false)
	if ok {
		d.fn(v)
	}
	return ok
}

// Stop drops the pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	var zero T
	d.pending = zero
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	v, ok := d.take(gen, true)
	if ok {
		d.fn(v)
	}
}

// take claims the pending value. When checkGen is set, a timer from a
// superseded push gets nothing.
func (d *Debouncer[T]) take(gen uint64, checkGen bool) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.armed || (checkGen && gen != d.gen) {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v, true
}
