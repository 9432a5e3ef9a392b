// Package metrics records run statistics and exports them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "siteblock"

// Recorder holds the metrics of one run on a private registry, so repeated
// runs in one process (tests) never collide on the default registerer.
type Recorder struct {
	reg *prometheus.Registry

	keywords      prometheus.Counter
	fetchFailures prometheus.Counter
	linesSkipped  *prometheus.CounterVec
	tokens        prometheus.Gauge
	lastRun       prometheus.Gauge
	duration      prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		keywords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_total",
			Help:      "Keywords processed in the last run.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Keywords whose fragment could not be fetched.",
		}),
		linesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_skipped_total",
			Help:      "Upstream lines that produced no token, by reason.",
		}, []string{"reason"}),
		tokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens",
			Help:      "Unique tokens written to the output file.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}

	r.reg.MustRegister(r.keywords, r.fetchFailures, r.linesSkipped, r.tokens, r.lastRun, r.duration)
	return r
}

// ObserveKeyword counts one processed keyword.
func (r *Recorder) ObserveKeyword(failed bool) {
	r.keywords.Inc()
	if failed {
		r.fetchFailures.Inc()
	}
}

// ObserveSkipped adds n skipped lines for reason.
func (r *Recorder) ObserveSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	r.linesSkipped.WithLabelValues(reason).Add(float64(n))
}

func (r *Recorder) SetTokens(n int) {
	r.tokens.Set(float64(n))
}

// Finish records the end of a run.
func (r *Recorder) Finish(end time.Time, took time.Duration) {
	r.lastRun.Set(float64(end.Unix()))
	r.duration.Set(took.Seconds())
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
