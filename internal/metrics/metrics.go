package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	paymentsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coursedesk",
			Name:      "payments_recorded_total",
			Help:      "Count of payments recorded against bookings.",
		},
	)

	paymentsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coursedesk",
			Name:      "payments_deleted_total",
			Help:      "Count of payments removed from bookings.",
		},
	)

	ledgerRecompute = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedesk",
			Name:      "ledger_recompute_total",
			Help:      "Count of booking balance recomputations by result.",
		},
		[]string{"result"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedesk",
			Name:      "booking_status_transitions_total",
			Help:      "Count of booking status changes by source (ledger or manual).",
		},
		[]string{"from", "to", "source"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(paymentsRecorded, paymentsDeleted, ledgerRecompute, statusTransitions)
	})
}

func IncPaymentRecorded() {
	paymentsRecorded.Inc()
}

func IncPaymentDeleted() {
	paymentsDeleted.Inc()
}

func IncLedgerRecompute(result string) {
	ledgerRecompute.WithLabelValues(result).Inc()
}

func IncStatusTransition(from, to, source string) {
	statusTransitions.WithLabelValues(from, to, source).Inc()
}
