package observability

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/stats"
)

// Metrics holds the Prometheus collectors describing simulation runs. They
// are registered on a private registry so a batch run can dump them to a
// node_exporter textfile.
type Metrics struct {
	Registry *prometheus.Registry

	TrialsTotal    prometheus.Counter
	NonFiniteTotal prometheus.Counter
	RunsTotal      *prometheus.CounterVec // labels: outcome={ok,error}
	RunDuration    prometheus.Histogram
	LiftMean       prometheus.Gauge
	LiftStdDev     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TrialsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftmc",
			Name:      "trials_total",
			Help:      "Total Monte Carlo trials evaluated.",
		}),
		NonFiniteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftmc",
			Name:      "non_finite_trials_total",
			Help:      "Trials whose lift evaluated to NaN or Inf.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftmc",
			Name:      "runs_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "liftmc",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one simulation run.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		LiftMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "liftmc",
			Name:      "lift_mean_newtons",
			Help:      "Mean lift of the last run.",
		}),
		LiftStdDev: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "liftmc",
			Name:      "lift_stddev_newtons",
			Help:      "Population standard deviation of lift in the last run.",
		}),
	}

	m.Registry.MustRegister(
		m.TrialsTotal,
		m.NonFiniteTotal,
		m.RunsTotal,
		m.RunDuration,
		m.LiftMean,
		m.LiftStdDev,
	)
	return m
}

// OnTrial counts trials; Metrics can be attached to a Simulator as an
// observer.
func (m *Metrics) OnTrial(trial int, c montecarlo.Conditions, lift float64) {
	m.TrialsTotal.Inc()
	if math.IsNaN(lift) || math.IsInf(lift, 0) {
		m.NonFiniteTotal.Inc()
	}
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(summary stats.Summary, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.LiftMean.Set(summary.Mean)
	m.LiftStdDev.Set(summary.StdDev)
}

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
