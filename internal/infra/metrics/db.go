package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		storeErrors,
		retentionDeleted,
	)
}

var (
	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Storage faults swallowed at the fail-soft boundary, by operation.",
		},
		[]string{"op"},
	)

	retentionDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_chats_deleted_total",
			Help: "Idle chats removed by the retention sweeper.",
		},
	)
)

func IncStoreError(op string) {
	storeErrors.WithLabelValues(norm(op)).Inc()
}

func AddRetentionDeleted(n int64) {
	if n > 0 {
		retentionDeleted.Add(float64(n))
	}
}
