package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives domain counters from the service.
type Metrics interface {
	PlateRegistered(points int)
	StepFailed(step string)
	RarityLookup(hit bool)
}

type NoopMetrics struct{}

func (NoopMetrics) PlateRegistered(int) {}
func (NoopMetrics) StepFailed(string)   {}
func (NoopMetrics) RarityLookup(bool)   {}

type PromMetrics struct {
	registered   prometheus.Counter
	points       prometheus.Counter
	stepFailures *prometheus.CounterVec
	rarity       *prometheus.CounterVec
}

func NewPromMetrics(reg prometheus.Registerer, namespace string) *PromMetrics {
	f := promauto.With(reg)
	return &PromMetrics{
		registered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plates_registered_total",
			Help:      "Total number of registered plates",
		}),
		points: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Total number of points awarded by score events",
		}),
		stepFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_step_failures_total",
			Help:      "Best-effort registration steps that failed",
		}, []string{"step"}),
		rarity: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rarity_lookups_total",
			Help:      "Rarity lookups by cache result",
		}, []string{"result"}),
	}
}

func (m *PromMetrics) PlateRegistered(points int) {
	m.registered.Inc()
	m.points.Add(float64(points))
}

func (m *PromMetrics) StepFailed(step string) {
	m.stepFailures.WithLabelValues(step).Inc()
}

func (m *PromMetrics) RarityLookup(hit bool) {
	if hit {
		m.rarity.WithLabelValues("hit").Inc()
		return
	}
	m.rarity.WithLabelValues("miss").Inc()
}
