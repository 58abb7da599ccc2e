package daemon

import "sync"

// Timeline runs background work and hands its result back to the shell loop,
// which is the only goroutine allowed to touch shell state.
type Timeline struct {
	apply chan func()
	done  chan struct{}
	once  sync.Once
}

// NewTimeline creates a timeline with room for buffer pending results.
func NewTimeline(buffer int) *Timeline {
	return &Timeline{
		apply: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Go runs work on its own goroutine. The closure it returns is executed by
// the shell loop. Results arriving after Stop are dropped.
func (t *Timeline) Go(work func() func()) {
	go func() {
		fn := work()
		if fn == nil {
			return
		}
		select {
		case t.apply <- fn:
		case <-t.done:
		}
	}()
}

// Results delivers closures waiting to run on the shell loop.
func (t *Timeline) Results() <-chan func() {
	return t.apply
}

// Stop releases goroutines still waiting to deliver a result.
func (t *Timeline) Stop() {
	t.once.Do(func() { close(t.done) })
}
