package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/nightshift/internal/scheduler"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder(nil, "")

	r.Evaluated(scheduler.Night)
	r.Evaluated(scheduler.Night)
	r.Evaluated(scheduler.Day)
	r.Skipped(scheduler.SkipMissingTimestamps)

	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("night")); got != 2 {
		t.Errorf("night evaluations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("day")); got != 1 {
		t.Errorf("day evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.skips.WithLabelValues(scheduler.SkipMissingTimestamps)); got != 1 {
		t.Errorf("skips = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.decision); got != 0 {
		t.Errorf("night_active = %v, want 0 after a day decision", got)
	}

	r.Evaluated(scheduler.Night)
	if got := testutil.ToFloat64(r.decision); got != 1 {
		t.Errorf("night_active = %v, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Evaluated(scheduler.Day)
	r.Skipped(scheduler.SkipOverlap)
}

func TestTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nightshift.prom")
	r := NewRecorder(nil, path)

	r.Evaluated(scheduler.Night)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		`nightshift_evaluations_total{decision="night"} 1`,
		"nightshift_night_active 1",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q:\n%s", want, content)
		}
	}
}
