// Package clock abstracts time for code that stamps or compares
// snapshot update times, so tests can drive the last-write-wins logic
// with a controlled clock.
package clock

import "time"

// Clock is the time source handed to services instead of time.Now.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

var _ Clock = (*RealClock)(nil)

// New returns the system clock.
func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}
