package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/usmanghani/chatbot-api/internal/health"
)

var (
	// Auth metrics

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "registrations_total",
		Help:      "Total successful user registrations.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	ResetRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "password_reset_requests_total",
		Help:      "Total password reset tokens issued.",
	})

	ResetsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "password_resets_completed_total",
		Help:      "Total passwords changed through the reset flow.",
	})

	EmailFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "email_failures_total",
		Help:      "Total email deliveries that failed and were swallowed.",
	})

	// Chat metrics

	ChatRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "chat_requests_total",
		Help:      "Total chat messages processed, by type.",
	}, []string{"type"})

	ChatGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Name:      "chat_generation_duration_seconds",
		Help:      "Latency of AI response generation.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	// Housekeeping metrics

	ResetTokensPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "reset_tokens_purged_total",
		Help:      "Total dead reset tokens removed by the cleanup job.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		ResetRequestsTotal,
		ResetsCompletedTotal,
		EmailFailuresTotal,
		ChatRequestsTotal,
		ChatGenerationDuration,
		ResetTokensPurgedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
