package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	MessagesTotal      *prometheus.CounterVec
	RepliesTotal       prometheus.Counter
	IntentsTotal       *prometheus.CounterVec
	AuthEvents         *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	MatchScore         prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages by kind (text, voice, command).",
		}, []string{"kind"}),
		RepliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Outbound replies emitted to users.",
		}),
		IntentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Resolved intents by name.",
		}, []string{"intent"}),
		AuthEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Authentication sub-dialogue events by type.",
		}, []string{"event"}),
		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "External collaborator failures by collaborator.",
		}, []string{"collaborator"}),
		MatchScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Fuzzy match score of resolved task names.",
			Buckets:   []float64{0, 50, 70, 82, 90, 95, 100},
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
