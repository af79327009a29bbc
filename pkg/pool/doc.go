/*
Package pool provides a fixed-size worker pool built on the module's
lock-free queue, with typed futures for task results.

# Overview

The pool starts a fixed number of worker goroutines at construction and
feeds them through a lock-free FIFO queue:
- Non-blocking task submission from any goroutine
- Typed results through one-shot futures
- Panic recovery with captured stacks
- Best-effort quiescence waiting
- Graceful shutdown that drains outstanding work

# Core Components

## Pool

Owns the task queue and the worker goroutines. Idle workers park on a
wake signal with a bounded poll interval, so a missed signal delays a
task by at most one poll rather than losing it.

## Future

The handle returned by Submit. It resolves exactly once with the task's
value, the task's error, or a types.TaskPanicError when the task
panicked. Waiters can block, poll, attach a context deadline, or select
on the Done channel.

# Concurrency Safety

Task hand-off and all pool counters use atomic operations; there are no
locks on the submission or execution paths. The active-task count and
queue length are diagnostics: the underlying queue only supports
approximate counting, so both may lag the true state.

# Usage

	p := pool.New(nil) // one worker per CPU
	defer p.Close()

	f := pool.Submit(p, func() (int, error) {
		return compute(), nil
	})

	v, err := f.Wait()
	if err != nil {
		log.Printf("task failed: %v", err)
	}

Waiting for a batch:

	for i := 0; i < 100; i++ {
		futures = append(futures, pool.Submit(p, work(i)))
	}
	p.Wait() // callers help drain the queue

# Configuration

Config supports:
- Workers: number of worker goroutines (defaults to runtime.NumCPU)
- PollInterval: idle re-check period for missed wake signals
- Clock: time source, mockable in tests
*/
package pool
