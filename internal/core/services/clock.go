package services

import "time"

// Clock returns the current instant. Services never call time.Now
// directly so tests can pin the evaluation time.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
