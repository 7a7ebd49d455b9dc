package form

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceCollapsesRapidEdits(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var calls []string
	fired := make(chan struct{}, 3)

	for _, edit := range []string{"first", "second", "third"} {
		edit := edit
		d.Trigger("s1/q1", func() {
			mu.Lock()
			calls = append(calls, edit)
			mu.Unlock()
			fired <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"third"}, calls)
	assert.Equal(t, 0, d.Pending())
}

func TestDebounceKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	d.Trigger("s1/q1", wg.Done)
	d.Trigger("s1/q2", wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected one call per key")
	}
}

func TestDebounceCancelAndStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	called := make(chan struct{}, 1)
	d.Trigger("k", func() { called <- struct{}{} })
	require.Equal(t, 1, d.Pending())
	d.Cancel("k")

	d.Stop()
	d.Trigger("k", func() { called <- struct{}{} })
	assert.Equal(t, 0, d.Pending())

	select {
	case <-called:
		t.Fatal("cancelled call fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebounceStopWaitsForRunningCall(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	started := make(chan struct{})
	var done bool
	d.Trigger("k", func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		done = true
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("call never started")
	}
	d.Stop()
	assert.True(t, done)
}
