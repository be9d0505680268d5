package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking wizard flows.
type BookingMetrics struct {
	fanoutTotal      *prometheus.CounterVec
	fanoutLatency    prometheus.Histogram
	holdsTotal       *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	bookingsCreated  prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		fanoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beautycrm",
			Subsystem: "availability",
			Name:      "fanout_requests_total",
			Help:      "Per-master slot queries issued by the availability aggregator",
		}, []string{"status"}),
		fanoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beautycrm",
			Subsystem: "availability",
			Name:      "aggregate_seconds",
			Help:      "Latency of a full availability aggregation",
			Buckets:   prometheus.DefBuckets,
		}),
		holdsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beautycrm",
			Subsystem: "holds",
			Name:      "attempts_total",
			Help:      "Provisional hold attempts by outcome",
		}, []string{"outcome"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beautycrm",
			Subsystem: "bookings",
			Name:      "submissions_total",
			Help:      "Booking submissions by result",
		}, []string{"status"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "beautycrm",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings created on the scheduler",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fanoutTotal, m.fanoutLatency, m.holdsTotal, m.submissionsTotal, m.bookingsCreated)
	return m
}

func (m *BookingMetrics) ObserveFanout(status string) {
	if m == nil {
		return
	}
	m.fanoutTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveAggregateLatency(seconds float64) {
	if m == nil {
		return
	}
	m.fanoutLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveHold(outcome string) {
	if m == nil {
		return
	}
	m.holdsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}
