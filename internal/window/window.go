// Package window evaluates cyclic time-of-day intervals that may wrap past
// midnight.
package window

import (
	"time"

	"github.com/julianstephens/nightshift/internal/constants"
)

// Window is an inclusive interval over seconds-of-day. Low > High means the
// interval spans midnight.
type Window struct {
	Low  int
	High int
}

// FromTimes builds the window running from start to end, discarding the date
// of both timestamps. Each time is read in its own location.
func FromTimes(start, end time.Time) Window {
	return Window{Low: SecondsOfDay(start), High: SecondsOfDay(end)}
}

// Contains reports whether x falls inside the window.
func (w Window) Contains(x int) bool {
	return InWindow(w.Low, w.High, x)
}

// Wraps reports whether the window spans midnight.
func (w Window) Wraps() bool {
	return w.Low > w.High
}

// InWindow reports whether x lies in [low, high] on a 24 hour clock. When
// low > high the interval wraps midnight and x matches if x >= low or
// x <= high. Both ends are inclusive.
func InWindow(low, high, x int) bool {
	return mod(x-low) <= mod(high-low)
}

// SecondsOfDay returns the number of seconds since local midnight of t.
func SecondsOfDay(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

// mod maps n onto [0, SecondsPerDay) for negative inputs too.
func mod(n int) int {
	return ((n % constants.SecondsPerDay) + constants.SecondsPerDay) % constants.SecondsPerDay
}
