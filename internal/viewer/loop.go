package viewer

import (
	"context"
	"sync"
	"time"
)

// Dispatcher splits work between the UI loop and engine calls.
//
// Post runs fn on the UI loop; every mutation of Coordinator and controller
// state happens there. Go runs blocking engine work off the loop; the work
// reports back by calling Post. After runs fn on the loop once d elapses.
type Dispatcher interface {
	Go(work func())
	Post(fn func())
	After(d time.Duration, fn func()) (stop func())
}

// Loop is a channel-driven UI loop. Run it in its own goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with a task buffer of the given size.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted tasks in order until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// Go runs work in a new goroutine.
func (l *Loop) Go(work func()) {
	go work()
}

// Post queues fn. Tasks posted after Run returned are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// After posts fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return func() { t.Stop() }
}

// Inline runs everything synchronously on the caller's goroutine. It suits
// headless rendering where the caller is the only source of events. After
// runs fn immediately.
type Inline struct{}

func (Inline) Go(work func()) { work() }

func (Inline) Post(fn func()) { fn() }

func (Inline) After(_ time.Duration, fn func()) func() {
	fn()
	return func() {}
}
