// Package utils holds small shared helpers, currently panic isolation for
// the per-model analysis loop.
package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverAsError recovers from a panic and converts it to an error.
// It should be called with defer at the beginning of a function.
// The errPtr should be a pointer to the error return value.
//
// Example:
//
//	func doWork() (err error) {
//	    defer RecoverAsError(&err)
//	    // ... code that might panic
//	}
func RecoverAsError(errPtr *error) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		*errPtr = &PanicError{
			Value:      r,
			StackTrace: stack,
		}
		slog.Error("Recovered from panic", "panic", r, "stack", stack)
	}
}

// MustRecover is a helper for tests that ensures a panic is recovered
// and converted to an error for assertion.
func MustRecover(fn func()) (recovered interface{}) {
	defer func() {
		recovered = recover()
	}()
	fn()
	return nil
}
