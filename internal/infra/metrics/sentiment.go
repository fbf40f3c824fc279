package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sentimentTurns,
		resourcesSurfaced,
	)
}

var (
	sentimentTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_turns_total",
			Help: "Classified user turns by mood.",
		},
		[]string{"mood"},
	)

	resourcesSurfaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_resources_surfaced_total",
			Help: "Turns where crisis resources were surfaced to the user.",
		},
	)
)

func ObserveSentiment(mood string) {
	sentimentTurns.WithLabelValues(norm(mood)).Inc()
}

func IncResourcesSurfaced() {
	resourcesSurfaced.Inc()
}
