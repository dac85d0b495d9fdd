// Package schedule holds the two timed primitives the UI layer needs: a debouncer that
// keeps only the latest call, and an expiring undo window.
package schedule

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search query is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer runs fn with the arguments of the last Call once delay has passed without a
// newer Call. A superseded call never runs.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
	latest  T
	stopped bool
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call replaces any pending call with v and restarts the quiet period.
func (d *Debouncer[T]) Call(v T) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.seq++
	d.pending = true
	d.latest = v
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop still runs; the sequence check drops it.
	if d.stopped || !d.pending || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = false
	v := d.latest
	d.mu.Unlock()
	d.fn(v)
}

// Flush runs the pending call immediately. It reports whether one was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = false
	v := d.latest
	d.mu.Unlock()
	d.fn(v)
	return true
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	was := d.pending
	d.pending = false
	return was
}

// Stop cancels the pending call and ignores later ones.
func (d *Debouncer[T]) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
