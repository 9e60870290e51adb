package window

import (
	"testing"
	"time"
)

// caseSplit is the two-branch definition InWindow must agree with.
func caseSplit(low, high, x int) bool {
	if low <= high {
		return low <= x && x <= high
	}
	return x >= low || x <= high
}

func TestInWindowMatchesCaseSplit(t *testing.T) {
	bounds := []int{0, 1, 3600, 21600, 43200, 64800, 79200, 82800, 86398, 86399}
	for _, low := range bounds {
		for _, high := range bounds {
			for x := 0; x < 86400; x += 97 {
				if got, want := InWindow(low, high, x), caseSplit(low, high, x); got != want {
					t.Fatalf("InWindow(%d, %d, %d) = %v, want %v", low, high, x, got, want)
				}
			}
			// Bounds themselves and their neighbours
			for _, x := range []int{low, high, (low + 1) % 86400, (high + 86399) % 86400} {
				if got, want := InWindow(low, high, x), caseSplit(low, high, x); got != want {
					t.Fatalf("InWindow(%d, %d, %d) = %v, want %v", low, high, x, got, want)
				}
			}
		}
	}
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name      string
		low, high int
		x         int
		want      bool
	}{
		{"wrapping night late evening", 64800, 21600, 84600, true},
		{"wrapping night midday", 64800, 21600, 43200, false},
		{"wrapping night just after midnight", 82800, 21600, 0, true},
		{"wrapping night at sunrise", 82800, 21600, 21600, true},
		{"wrapping night one second after sunrise", 82800, 21600, 21601, false},
		{"wrapping night at sunset", 82800, 21600, 82800, true},
		{"wrapping night one second before sunset", 82800, 21600, 82799, false},
		{"plain interval inside", 21600, 64800, 43200, true},
		{"plain interval outside", 21600, 64800, 70000, false},
		{"plain interval from midnight", 0, 3600, 0, true},
		{"plain interval to last second", 80000, 86399, 86399, true},
		{"degenerate exact", 79200, 79200, 79200, true},
		{"degenerate before", 79200, 79200, 79199, false},
		{"degenerate after", 79200, 79200, 79201, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.low, tt.high, tt.x); got != tt.want {
				t.Errorf("InWindow(%d, %d, %d) = %v, want %v", tt.low, tt.high, tt.x, got, tt.want)
			}
		})
	}
}

func TestSecondsOfDay(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"midnight", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 0},
		{"sunrise", time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), 21600},
		{"late evening", time.Date(1999, 12, 31, 23, 30, 0, 0, time.UTC), 84600},
		{"last second", time.Date(2024, 3, 1, 23, 59, 59, 999, time.UTC), 86399},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondsOfDay(tt.t); got != tt.want {
				t.Errorf("SecondsOfDay(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestFromTimes(t *testing.T) {
	sunset := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	sunrise := time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)

	w := FromTimes(sunset, sunrise)
	if w.Low != 64800 || w.High != 21600 {
		t.Fatalf("FromTimes() = %+v, want {64800 21600}", w)
	}
	if !w.Wraps() {
		t.Error("expected sunset-to-sunrise window to wrap midnight")
	}
	if !w.Contains(84600) {
		t.Error("expected 23:30 to be inside the night window")
	}
	if w.Contains(43200) {
		t.Error("expected 12:00 to be outside the night window")
	}
}
