package form

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of triggers for the same key into one call
// made after the key has been quiet for the delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	seq     map[string]uint64
	next    uint64
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		seq:    make(map[string]uint64),
	}
}

// Trigger schedules fn for key, superseding any pending call for the same key
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.next++
	gen := d.next
	d.seq[key] = gen

	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a later trigger may have raced a timer that already fired
		if d.stopped || d.seq[key] != gen {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		delete(d.seq, key)
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		fn()
	})
}

// Cancel drops a pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	delete(d.seq, key)
}

// Pending reports how many keys have a scheduled call
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending call and waits for calls already running.
// Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()

	d.running.Wait()
}
