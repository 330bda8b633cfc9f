package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestSchedulerMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg)

	m.ObserveSuggest("surgery", OutcomeSuggested, 40, 0.01)
	m.ObserveSuggest("surgery", OutcomeSuggested, 12, 0.02)
	m.ObserveSuggest("surgery", OutcomeCached, 0, 0)
	m.ObserveBooking("booked")

	assert.Equal(t, 2.0, counterValue(t, reg, "vetsched_suggest_requests_total",
		map[string]string{"visit_type": "surgery", "outcome": OutcomeSuggested}))
	assert.Equal(t, 1.0, counterValue(t, reg, "vetsched_suggest_requests_total",
		map[string]string{"visit_type": "surgery", "outcome": OutcomeCached}))
	assert.Equal(t, 1.0, counterValue(t, reg, "vetsched_bookings_total",
		map[string]string{"result": "booked"}))
}

func TestSchedulerMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewSchedulerMetrics(nil)
	m.ObserveBooking("slot_taken")
	assert.Equal(t, 1.0, counterValue(t, reg, "vetsched_bookings_total", map[string]string{"result": "slot_taken"}))
}

func TestSchedulerMetricsNilSafe(t *testing.T) {
	var m *SchedulerMetrics
	m.ObserveSuggest("consult", OutcomeEmpty, 0, 0.1)
	m.ObserveBooking("slot_taken")
}
