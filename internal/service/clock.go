package service

import "time"

// Clock supplies the current time. Injected so due-date math and sweep
// behavior are testable without sleeping; production code uses
// SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
