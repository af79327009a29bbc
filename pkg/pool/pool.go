package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-concurrent/concurrent/pkg/queue"
	"github.com/go-concurrent/concurrent/pkg/types"
)

// Config defines configuration for the pool
type Config struct {
	// Workers is the number of worker goroutines. Values below one are
	// normalized to one.
	Workers int

	// PollInterval bounds how long an idle worker sleeps before
	// re-checking the queue and the stop signal. Missed wake signals
	// are repaired at this interval.
	PollInterval time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock
}

// DefaultConfig returns the default configuration: one worker per CPU
// and a 100ms idle poll
func DefaultConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		PollInterval: 100 * time.Millisecond,
		Clock:        types.NewRealClock(),
	}
}

// Pool runs submitted tasks on a fixed set of worker goroutines fed by
// a lock-free queue. Workers are started by New and run until Close.
//
// Task hand-off never takes a lock: Submit enqueues and nudges an idle
// worker through a signal channel; a worker that misses the nudge
// notices the task on its next poll.
type Pool struct {
	tasks *queue.Queue[func()]
	clock types.Clock
	poll  time.Duration
	size  int

	active atomic.Int64
	closed atomic.Bool

	// wake carries at most one pending nudge; stopCh is closed to stop
	// every worker at once.
	wake      chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a pool and starts its workers. A nil config means
// DefaultConfig. There is no separate start step: a pool that exists
// accepts tasks.
func New(config *Config) *Pool {
	if config == nil {
		config = DefaultConfig()
	}

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	poll := config.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	clock := config.Clock
	if clock == nil {
		clock = types.NewRealClock()
	}

	p := &Pool{
		tasks:  queue.New[func()](),
		clock:  clock,
		poll:   poll,
		size:   workers,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit hands fn to the pool and returns a future for its result. The
// future resolves with fn's value, fn's error, or a types.TaskPanicError
// if fn panicked. Submitting to a closed pool resolves the future with
// types.ErrPoolClosed; Submit itself never blocks and never fails.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	if p.closed.Load() {
		f.reject(types.ErrPoolClosed)
		return f
	}

	p.tasks.Enqueue(func() {
		defer func() {
			if r := recover(); r != nil {
				var buf [4096]byte
				n := runtime.Stack(buf[:], false)
				f.reject(types.NewTaskPanicError(r, buf[:n]))
			}
		}()
		value, err := fn()
		f.resolve(value, err)
	})

	if p.closed.Load() {
		// The pool began closing while we enqueued. Close's final drain
		// may still run the task; if nothing does, this keeps the
		// future from hanging. resolve is one-shot, so whichever side
		// gets there first wins.
		f.reject(types.ErrPoolClosed)
		return f
	}

	p.wakeOne()
	return f
}

// Wait blocks until the pool looks quiescent: no active tasks and an
// empty queue. Tasks it observes in the queue are executed inline in
// the calling goroutine. The answer is best-effort, not a barrier; a
// task submitted while Wait returns can be missed.
func (p *Pool) Wait() {
	for {
		if fn, ok := p.tasks.Dequeue(); ok {
			p.run(fn)
			continue
		}
		if p.active.Load() == 0 && p.tasks.Empty() {
			return
		}
		runtime.Gosched()
	}
}

// Close waits for outstanding work, stops all workers and joins them.
// After Close returns no task is running or queued. Close is
// idempotent; submissions racing with it resolve with
// types.ErrPoolClosed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.Wait()
		close(p.stopCh)
		p.wg.Wait()

		// Submissions that slipped past the closed check during Wait
		// may have left tasks behind with no workers to run them.
		for {
			fn, ok := p.tasks.Dequeue()
			if !ok {
				return
			}
			p.run(fn)
		}
	})
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.size
}

// ActiveTasks returns the number of tasks currently executing.
func (p *Pool) ActiveTasks() int {
	return int(p.active.Load())
}

// QueuedTasks returns the approximate number of tasks waiting in the
// queue.
func (p *Pool) QueuedTasks() int {
	return p.tasks.Size()
}

// IsClosed reports whether Close has begun.
func (p *Pool) IsClosed() bool {
	return p.closed.Load()
}

func (p *Pool) run(fn func()) {
	p.active.Add(1)
	defer p.active.Add(-1)
	fn()
}

// wakeOne nudges one idle worker. The channel holds a single pending
// signal; if it is already full every idle worker is due to wake
// anyway.
func (p *Pool) wakeOne() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		if fn, ok := p.tasks.Dequeue(); ok {
			p.run(fn)
			continue
		}

		timer := p.clock.NewTimer(p.poll)
		select {
		case <-p.wake:
			timer.Stop()
		case <-timer.C():
		case <-p.stopCh:
			timer.Stop()
			return
		}
	}
}
