// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolClosed indicates the pool has been closed and no longer
	// accepts tasks
	ErrPoolClosed = errors.New("pool is closed")
)

// TaskPanicError reports a panic recovered while running a submitted task.
// It is delivered through the task's future; the worker that recovered it
// keeps running.
type TaskPanicError struct {
	// Value is the value the task panicked with
	Value interface{}

	// Stack is the goroutine stack captured at recovery time
	Stack []byte
}

// Error implements the error interface
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// NewTaskPanicError creates a task panic error from a recovered value and
// the captured stack
func NewTaskPanicError(value interface{}, stack []byte) *TaskPanicError {
	return &TaskPanicError{
		Value: value,
		Stack: stack,
	}
}

// IsTaskPanic checks if an error was produced by a recovered task panic
func IsTaskPanic(err error) bool {
	var panicErr *TaskPanicError
	return errors.As(err, &panicErr)
}
