package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiPromptTokens,
		aiStreamFragments,
		aiStreamLatencyMs,
	)
}

var (
	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens",
			Help: "Sum of estimated prompt tokens per model.",
		},
		[]string{"model"},
	)

	aiStreamFragments = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_stream_fragments",
			Help:    "Fragments delivered per completion stream.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"provider", "model"},
	)

	aiStreamLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_stream_latency_ms",
			Help:    "Completion stream duration distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "model", "success"},
	)
)

func AddPromptTokens(model string, n int) {
	if n <= 0 {
		return
	}
	aiPromptTokens.WithLabelValues(norm(model)).Add(float64(n))
}

func ObserveStream(provider, model string, fragments int, latencyMs int64, success bool) {
	aiStreamFragments.WithLabelValues(norm(provider), norm(model)).Observe(float64(fragments))
	aiStreamLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
