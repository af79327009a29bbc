// Package testutils provides shared helpers for the concurrency tests
package testutils

import (
	"runtime"
	"testing"
	"time"
)

// ScaledWorkers returns a goroutine count scaled to the machine the
// tests run on, never below min. Stress tests use it so contention
// grows with the available parallelism instead of being hard-coded.
func ScaledWorkers(min int) int {
	n := runtime.GOMAXPROCS(0)
	if n < min {
		return min
	}
	return n
}

// AssertCompletes runs fn and fails the test if it has not returned
// within timeout. Used for operations that must not deadlock, like
// pool shutdown and quiescence waits.
func AssertCompletes(t testing.TB, timeout time.Duration, name string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not complete within %v", name, timeout)
	}
}
