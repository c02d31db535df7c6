package observability

import (
	"context"
	"math/big"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "archsynth"

// Metrics collects search counters.
type Metrics struct {
	Attempts    prometheus.Counter
	Decisions   *prometheus.CounterVec
	Rollbacks   *prometheus.CounterVec
	Searches    *prometheus.CounterVec
	Duration    prometheus.Histogram
	Live        prometheus.Gauge
	SearchSpace prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if one of them is already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of passes over the steps.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of recorded decisions by operation.",
		}, []string{"op"}),
		Rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_total",
			Help:      "Total number of rollbacks by culprit engine.",
		}, []string{"engine"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of finished searches by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of finished searches.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_decisions",
			Help:      "Live decisions at the end of the last search.",
		}),
		SearchSpace: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_space",
			Help:      "Product of the candidate set sizes of the last search.",
		}),
	}
	reg.MustRegister(m.Attempts, m.Decisions, m.Rollbacks, m.Searches, m.Duration, m.Live, m.SearchSpace)
	return m
}

// Hooks returns lifecycle hooks updating m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttempt: func(context.Context, *domain.AttemptEvent) {
			m.Attempts.Inc()
		},
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) {
			m.Decisions.WithLabelValues(string(e.Decision.Kind)).Inc()
		},
		OnRollback: func(_ context.Context, e *domain.RollbackEvent) {
			m.Rollbacks.WithLabelValues(e.Culprit.Engine).Inc()
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			m.Searches.WithLabelValues(string(e.Outcome)).Inc()
			m.Duration.Observe(e.Stats.Duration.Seconds())
			m.Live.Set(float64(e.Stats.Decisions))
			m.SearchSpace.Set(toFloat(e.Stats.SearchSpace))
		},
	}
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
