package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus counters. A nil *Metrics is valid
// and records nothing, which keeps handler tests free of registry setup.
type Metrics struct {
	Logins           *prometheus.CounterVec
	Refreshes        *prometheus.CounterVec
	FederatedLogins  *prometheus.CounterVec
	UpstreamFailures prometheus.Counter
	Revalidations    prometheus.Counter
}

// NewMetrics registers the gateway counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiongate_logins_total",
			Help: "Credential login attempts by result.",
		}, []string{"result"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiongate_token_refreshes_total",
			Help: "Token refresh attempts by result.",
		}, []string{"result"}),
		FederatedLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiongate_federated_logins_total",
			Help: "Federated login completions by result.",
		}, []string{"result"}),
		UpstreamFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiongate_upstream_failures_total",
			Help: "Requests that failed because the credential store was unreachable.",
		}),
		Revalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiongate_revalidations_total",
			Help: "Accepted revalidation webhook calls.",
		}),
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) refresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) federated(result string) {
	if m != nil {
		m.FederatedLogins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) upstreamFailure() {
	if m != nil {
		m.UpstreamFailures.Inc()
	}
}

func (m *Metrics) revalidation() {
	if m != nil {
		m.Revalidations.Inc()
	}
}
