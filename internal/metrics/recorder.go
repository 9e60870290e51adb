// Package metrics records scheduler activity as Prometheus metrics and can
// dump them in the node_exporter textfile format.
package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/scheduler"
)

const namespace = "nightshift"

// Recorder implements scheduler.Observer
type Recorder struct {
	reg         *prom.Registry
	textfile    string
	evaluations *prom.CounterVec
	skips       *prom.CounterVec
	decision    prom.Gauge
	lastEval    prom.Gauge
}

// NewRecorder registers the scheduler metrics on reg, or on a fresh registry
// when reg is nil. A non-empty textfile is rewritten after every observation.
func NewRecorder(reg *prom.Registry, textfile string) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg:      reg,
		textfile: textfile,
		evaluations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Scheduler evaluations by resulting decision",
		}, []string{"decision"}),
		skips: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_skipped_total",
			Help:      "Scheduler ticks that produced no decision, by reason",
		}, []string{"reason"}),
		decision: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "night_active",
			Help:      "1 while the last decision is night, 0 by day",
		}),
		lastEval: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_evaluation_timestamp_seconds",
			Help:      "Unix time of the last completed evaluation",
		}),
	}
	reg.MustRegister(r.evaluations, r.skips, r.decision, r.lastEval)
	return r
}

func (r *Recorder) Evaluated(d scheduler.Decision) {
	if r == nil {
		return
	}
	r.evaluations.WithLabelValues(d.String()).Inc()
	if d == scheduler.Night {
		r.decision.Set(1)
	} else {
		r.decision.Set(0)
	}
	r.lastEval.SetToCurrentTime()
	r.flush()
}

func (r *Recorder) Skipped(reason string) {
	if r == nil {
		return
	}
	r.skips.WithLabelValues(reason).Inc()
	r.flush()
}

func (r *Recorder) Registry() *prom.Registry {
	return r.reg
}

// WriteTextfile writes all registered metrics to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, r.reg)
}

func (r *Recorder) flush() {
	if r.textfile == "" {
		return
	}
	if err := r.WriteTextfile(r.textfile); err != nil {
		logger.Warn("Failed to write metrics textfile", "path", r.textfile, "error", err)
	}
}
