package engine

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// StatusOK labels runs that completed without error.
const StatusOK = "ok"

// Registry holds the engine's run metrics. It is separate from the default
// registry so that WriteMetrics only reports query runs.
var Registry = prometheus.NewRegistry()

var (
	runsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "lcq",
		Name:      "runs_total",
		Help:      "The total number of query runs, by status.",
	}, []string{"status"})

	candidatesVisited = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: "lcq",
		Name:      "candidates_visited_total",
		Help:      "The total number of candidate tuples visited by successful runs.",
	})

	rowsAccepted = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: "lcq",
		Name:      "rows_accepted_total",
		Help:      "The total number of rows produced by successful runs.",
	})

	runDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "lcq",
		Name:      "run_duration_seconds",
		Help:      "Wall time of successful runs.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})
)

func observeSuccess(res *Result) {
	runsTotal.WithLabelValues(StatusOK).Inc()
	candidatesVisited.Add(float64(res.Visited))
	rowsAccepted.Add(float64(res.Accepted))
	runDuration.Observe(res.Elapsed.Seconds())
}

func observeFailure(code RuntimeErrorCode) {
	runsTotal.WithLabelValues(string(code)).Inc()
}

// WriteMetrics writes the engine metrics to w in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
