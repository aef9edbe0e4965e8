package incoming

import (
	"context"
	"sync"
	"time"
)

// debouncer serializes fetches for one input field. Each new fetch
// supersedes the previous one: its timer is stopped, its context canceled
// and its generation retired, so a late result can be recognised and dropped.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	gen     uint64
	running sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// schedule runs fn after the quiet period unless superseded first
func (d *debouncer) schedule(parent context.Context, fn func(ctx context.Context, gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()
	gen := d.gen
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel

	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		defer cancel()
		fn(ctx, gen)
	})
}

// claim supersedes any pending fetch and hands out a generation for a fetch
// the caller runs right away. The caller must call the returned cancel.
func (d *debouncer) claim(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	return ctx, d.gen, cancel
}

// isCurrent reports whether gen has not been superseded
func (d *debouncer) isCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == gen
}

// supersede retires the pending fetch without scheduling another
func (d *debouncer) supersede() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
}

// stop supersedes and waits for a fetch that already started to return
func (d *debouncer) stop() {
	d.supersede()
	d.running.Wait()
}

func (d *debouncer) supersedeLocked() {
	if d.timer != nil {
		if d.timer.Stop() {
			d.running.Done()
		}
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}
