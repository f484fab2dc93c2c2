package console

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period of the search input.
const DefaultDebounce = 300 * time.Millisecond

type stopper interface {
	Stop() bool
}

// afterFunc matches time.AfterFunc; tests replace it.
type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Debouncer forwards the last pushed value once no new value has arrived
// for the wait period. Intermediate values are dropped.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func(string)
	after   afterFunc
	timer   stopper
	latest  string
	gen     uint64
	stopped bool
}

// NewDebouncer calls fn with the settled value. A non-positive wait uses
// DefaultDebounce.
func NewDebouncer(wait time.Duration, fn func(string)) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait, fn: fn, after: realAfterFunc}
}

// Push records v and restarts the quiet period.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.latest = v
	d.gen++
	gen := d.gen
	d.timer = d.after(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.latest
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Stop cancels any pending value. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
