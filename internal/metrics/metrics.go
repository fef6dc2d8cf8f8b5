package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memberwall_login_attempts_total",
		Help: "Login attempts that reached credential verification, by result",
	}, []string{"result"})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memberwall_rate_limited_total",
		Help: "Login requests rejected with 429 before touching the user store",
	})
	blocksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memberwall_blocks_total",
		Help: "Clients placed on the blocklist after exhausting their attempts",
	})
	sessionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memberwall_sessions_created_total",
		Help: "Sessions issued after a successful login",
	})
)

// Register registers Prometheus collectors on registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(loginAttemptsTotal, rateLimitedTotal, blocksTotal, sessionsCreatedTotal)
}

// IncLoginAttempt counts a verified login attempt; result is "success" or "failure".
func IncLoginAttempt(result string) { loginAttemptsTotal.WithLabelValues(result).Inc() }

// IncRateLimited counts a request rejected by the login throttle.
func IncRateLimited() { rateLimitedTotal.Inc() }

// IncBlocked counts a new blocklist entry.
func IncBlocked() { blocksTotal.Inc() }

// IncSessionCreated counts an issued session.
func IncSessionCreated() { sessionsCreatedTotal.Inc() }
