package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ChatRequests    *prometheus.CounterVec
	SentimentMoods  *prometheus.CounterVec
	ResponderErrors prometheus.Counter
	FactsLearned    prometheus.Counter
	ExchangeLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by response source.",
		}, []string{"source"}),
		SentimentMoods: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_moods_total",
			Help:      "Classified user message moods.",
		}, []string{"mood"}),
		ResponderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responder_errors_total",
			Help:      "AI responder failures absorbed into canned fallbacks.",
		}),
		FactsLearned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facts_learned_total",
			Help:      "User statements recorded to the knowledge log.",
		}),
		ExchangeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exchange_latency_ms",
			Help:      "End-to-end chat exchange latency in milliseconds.",
			Buckets:   []float64{5, 20, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}
}

func (m *Metrics) ObserveExchangeLatency(d time.Duration) {
	m.ExchangeLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
