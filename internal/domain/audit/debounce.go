package audit

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key onto the trailing edge: each
// call resets the key's timer and only the last payload fires after the wait.
// Flush and Close fire every pending key immediately, so nothing is lost on
// shutdown.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	after   func(time.Duration, func()) *time.Timer
	pending map[string]*pendingCall
	closed  bool
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{
		wait:    wait,
		after:   time.AfterFunc,
		pending: make(map[string]*pendingCall),
	}
}

// Do schedules fn for key. A newer call for the same key supersedes the
// pending one. Calls after Close run fn immediately.
func (d *Debouncer) Do(key string, fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		fn()
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pendingCall{fn: fn}
	p.timer = d.after(d.wait, func() { d.fire(key) })
	d.pending[key] = p
	d.mu.Unlock()
}

func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if ok {
		p.fn()
	}
}

// Flush fires all pending calls now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		fns = append(fns, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close flushes and stops accepting new scheduled work.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}

// PendingCount reports how many keys are waiting.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
