// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() directly, code can use the Clock interface which
// can be mocked in tests to control time-dependent behavior. Plan deadline
// anchoring and follow-up epoch computation both depend on this.
package clock

import "time"

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() Clock {
	return RealClock{}
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Fixed implements Clock with a predetermined time. Tests use it to pin the
// deadline anchor date and follow-up epochs.
type Fixed struct {
	// Time is the value returned by every Now call.
	Time time.Time
}

// Now returns the fixed time.
func (f Fixed) Now() time.Time {
	return f.Time
}

// Ensure Fixed implements Clock.
var _ Clock = Fixed{}
