package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CertificatesIssued   prometheus.Counter
	IssuanceRetries      prometheus.Counter
	VerificationVerdicts *prometheus.CounterVec
	RegistryCallDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certichain_certificates_issued_total",
			Help: "Total number of certificates written to the registry",
		}),
		IssuanceRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certichain_issuance_retries_total",
			Help: "Total number of issuance retries after a duplicate token id",
		}),
		VerificationVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certichain_verification_verdicts_total",
			Help: "Verification outcomes by verdict",
		}, []string{"verdict"}),
		RegistryCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certichain_registry_call_duration_seconds",
			Help:    "Latency of registry submit/fetch calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// IncrementIssued records a successful issuance.
func (m *Metrics) IncrementIssued() {
	if m == nil || m.CertificatesIssued == nil {
		return
	}
	m.CertificatesIssued.Inc()
}

// IncrementIssuanceRetry records one duplicate-id retry.
func (m *Metrics) IncrementIssuanceRetry() {
	if m == nil || m.IssuanceRetries == nil {
		return
	}
	m.IssuanceRetries.Inc()
}

// ObserveVerdict counts a completed verification by outcome.
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil || m.VerificationVerdicts == nil {
		return
	}
	m.VerificationVerdicts.WithLabelValues(verdict).Inc()
}

// ObserveRegistryCall records the duration of one ledger round trip.
func (m *Metrics) ObserveRegistryCall(operation string, elapsed time.Duration) {
	if m == nil || m.RegistryCallDuration == nil {
		return
	}
	m.RegistryCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
