package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barbershop",
			Name:      "bookings_created_total",
			Help:      "Count of booking creation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	slotQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barbershop",
			Name:      "slot_queries_total",
			Help:      "Count of availability queries served.",
		},
	)

	viewCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barbershop",
			Name:      "view_cache_total",
			Help:      "View cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, slotQueries, viewCache)
	})
}

func IncBookingCreated(outcome string) {
	bookingsCreated.WithLabelValues(outcome).Inc()
}

func IncSlotQuery() {
	slotQueries.Inc()
}

func IncViewCache(result string) {
	viewCache.WithLabelValues(result).Inc()
}
