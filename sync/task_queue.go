package sync

import "sync"

// taskQueue serializes every public Synchronizer call through a single
// worker goroutine, so calls submitted concurrently from multiple
// goroutines still execute strictly in submission order (spec.md §5).
// submit blocks the caller until its task has run, which is what lets the
// public API stay synchronous while still being internally single-threaded.
type taskQueue struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *taskQueue) run() {
	for {
		select {
		case fn := <-q.tasks:
			fn()
		case <-q.done:
			return
		}
	}
}

// submit enqueues fn and waits for it to finish running on the worker
// goroutine. If the queue has already been stopped (the worker is gone),
// submit runs fn on the caller's own goroutine instead of blocking forever
// trying to hand it to a worker that will never receive it — by the time
// stop has been called, the Synchronizer has reached a terminal phase, so
// there is nothing left to serialize against.
func (q *taskQueue) submit(fn func()) {
	done := make(chan struct{})
	select {
	case q.tasks <- func() {
		defer close(done)
		fn()
	}:
		<-done
	case <-q.done:
		fn()
	}
}

// stop shuts the worker goroutine down. Safe to call more than once (a
// Synchronizer may reach finishLocked twice, e.g. Commit called again after
// it already succeeded); only the first call actually closes q.done.
// Submitting after stop is also safe — see submit's fallback.
func (q *taskQueue) stop() {
	q.stopOnce.Do(func() { close(q.done) })
}
