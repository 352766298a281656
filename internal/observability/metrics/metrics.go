package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	availabilityTotal   *prometheus.CounterVec
	slotsComputed       prometheus.Histogram
	bookingsTotal       *prometheus.CounterVec
	calendarSyncLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "availability",
			Name:      "requests_total",
			Help:      "Total availability computations",
		}, []string{"outcome"}),
		slotsComputed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookline",
			Subsystem: "availability",
			Name:      "slots_per_day",
			Help:      "Bookable slots returned per availability request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40, 80},
		}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookline",
			Subsystem: "bookings",
			Name:      "total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		calendarSyncLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookline",
			Subsystem: "calendar",
			Name:      "sync_latency_seconds",
			Help:      "Latency of external calendar operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.slotsComputed, m.bookingsTotal, m.calendarSyncLatency)
	return m
}

func (m *BookingMetrics) ObserveAvailability(outcome string, slots int) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.slotsComputed.Observe(float64(slots))
	}
}

func (m *BookingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveCalendarSync(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.calendarSyncLatency.WithLabelValues(operation, status).Observe(seconds)
}
