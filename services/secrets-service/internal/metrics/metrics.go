package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Authentication attempts by strategy and outcome"},
		[]string{"strategy", "outcome"},
	)
	UsersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "users_created_total", Help: "Users created by identity anchor"},
		[]string{"anchor"},
	)
	SecretsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "secrets_submitted_total", Help: "Secrets stored or replaced"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// MustRegister registers every collector with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts, UsersCreated, SecretsSubmitted, RequestDuration)
}
