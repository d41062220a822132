package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC metrics
	solanaRPCCallsTotal    *prometheus.CounterVec
	solanaRPCCallDuration  *prometheus.HistogramVec
	solanaRPCRateLimitHits *prometheus.CounterVec
	solanaRPCRetries       *prometheus.CounterVec
	confirmationPolls      *prometheus.HistogramVec

	// Transfer metrics
	transfersTotal   *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec

	// Session metrics
	sessionConnectsTotal    *prometheus.CounterVec
	sessionDisconnectsTotal *prometheus.CounterVec

	// Backend API metrics
	backendRequestsTotal   *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec

	// Event publishing metrics
	eventsPublishedTotal *prometheus.CounterVec

	// Local store metrics
	storeOperationsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		solanaRPCRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_rate_limit_hits_total",
				Help: "Total number of Solana RPC rate limit hits (429 errors)",
			},
			[]string{"endpoint"},
		),
		solanaRPCRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_retries_total",
				Help: "Total number of Solana RPC retry attempts",
			},
			[]string{"method", "reason"},
		),
		confirmationPolls: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "confirmation_polls_per_signature",
				Help:    "Number of status polls needed to resolve a signature",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"endpoint"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Total number of transfers by terminal outcome",
			},
			[]string{"outcome"},
		),
		transferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transfer_duration_seconds",
				Help:    "End-to-end transfer duration from build to terminal outcome",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"outcome"},
		),
		sessionConnectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_connects_total",
				Help: "Total number of wallet session connect attempts",
			},
			[]string{"provider", "status"},
		),
		sessionDisconnectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_disconnects_total",
				Help: "Total number of wallet session disconnects",
			},
			[]string{"status"},
		),
		backendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_requests_total",
				Help: "Total number of backend API requests",
			},
			[]string{"operation", "status"},
		),
		backendRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_request_duration_seconds",
				Help:    "Duration of backend API requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"operation"},
		),
		eventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfer_events_published_total",
				Help: "Total number of transfer events published to NATS",
			},
			[]string{"status"},
		),
		storeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "local_store_operations_total",
				Help: "Total number of local store operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordRateLimitHit records a 429 response from the RPC endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.solanaRPCRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRPCRetry records a retry attempt for an RPC method.
func (m *Metrics) RecordRPCRetry(method, reason string) {
	m.solanaRPCRetries.WithLabelValues(method, reason).Inc()
}

// RecordConfirmationPolls records how many polls a signature needed to
// reach a terminal outcome.
func (m *Metrics) RecordConfirmationPolls(endpoint string, polls float64) {
	m.confirmationPolls.WithLabelValues(endpoint).Observe(polls)
}

// RecordTransfer records a transfer's terminal outcome and duration.
func (m *Metrics) RecordTransfer(outcome string, durationSeconds float64) {
	m.transfersTotal.WithLabelValues(outcome).Inc()
	m.transferDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordSessionConnect records a connect attempt against a signer provider.
func (m *Metrics) RecordSessionConnect(provider, status string) {
	m.sessionConnectsTotal.WithLabelValues(provider, status).Inc()
}

// RecordSessionDisconnect records a disconnect.
func (m *Metrics) RecordSessionDisconnect(status string) {
	m.sessionDisconnectsTotal.WithLabelValues(status).Inc()
}

// RecordBackendRequest records a backend API request with its duration.
func (m *Metrics) RecordBackendRequest(operation, status string, durationSeconds float64) {
	m.backendRequestsTotal.WithLabelValues(operation, status).Inc()
	m.backendRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordEventPublished records a transfer event publish attempt.
func (m *Metrics) RecordEventPublished(status string) {
	m.eventsPublishedTotal.WithLabelValues(status).Inc()
}

// RecordStoreOperation records a local store operation.
func (m *Metrics) RecordStoreOperation(operation, status string) {
	m.storeOperationsTotal.WithLabelValues(operation, status).Inc()
}
