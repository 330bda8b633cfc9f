package metrics

import "github.com/prometheus/client_golang/prometheus"

// Suggestion outcomes
const (
	OutcomeSuggested = "suggested"
	OutcomeEmpty     = "empty"
	OutcomeCached    = "cached"
)

// SchedulerMetrics exposes counters/histograms for suggestion and booking flows.
type SchedulerMetrics struct {
	suggestTotal    *prometheus.CounterVec
	candidates      prometheus.Histogram
	suggestDuration *prometheus.HistogramVec
	bookingsTotal   *prometheus.CounterVec
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		suggestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetsched",
			Subsystem: "suggest",
			Name:      "requests_total",
			Help:      "Total suggestion requests by visit type and outcome",
		}, []string{"visit_type", "outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vetsched",
			Subsystem: "suggest",
			Name:      "candidates",
			Help:      "Number of candidate start times scored per request",
			Buckets:   []float64{0, 10, 25, 50, 100, 150, 200},
		}),
		suggestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetsched",
			Subsystem: "suggest",
			Name:      "duration_seconds",
			Help:      "Time spent generating and scoring candidates",
			Buckets:   prometheus.DefBuckets,
		}, []string{"visit_type"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetsched",
			Name:      "bookings_total",
			Help:      "Booking attempts against the stored schedule by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.suggestTotal, m.candidates, m.suggestDuration, m.bookingsTotal)
	return m
}

func (m *SchedulerMetrics) ObserveSuggest(visitType, outcome string, candidates int, seconds float64) {
	if m == nil {
		return
	}
	m.suggestTotal.WithLabelValues(visitType, outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	m.candidates.Observe(float64(candidates))
	m.suggestDuration.WithLabelValues(visitType).Observe(seconds)
}

func (m *SchedulerMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}
