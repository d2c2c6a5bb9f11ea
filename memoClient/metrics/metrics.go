// Package metrics exposes Prometheus collectors for the transaction
// pipeline.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/instruction"
)

const namespace = "memo"

// Metrics holds the pipeline collectors on a private registry. It
// satisfies submit.Observer.
type Metrics struct {
	registry *prometheus.Registry

	submitted     *prometheus.CounterVec
	confirmed     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	computeUnits  *prometheus.HistogramVec
	confirmTime   *prometheus.HistogramVec
	batchDuration prometheus.Histogram
	minted        prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_submitted_total",
			Help:      "Transactions accepted by the RPC node.",
		}, []string{"operation"}),
		confirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_confirmed_total",
			Help:      "Transactions confirmed without error.",
		}, []string{"operation"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_failed_total",
			Help:      "Transactions rejected, failed on chain or timed out, by classified hint.",
		}, []string{"operation", "hint"}),
		computeUnits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tx_compute_units",
			Help:      "Compute units consumed by confirmed transactions.",
			Buckets:   prometheus.ExponentialBuckets(5_000, 2, 9),
		}, []string{"operation"}),
		confirmTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tx_confirm_seconds",
			Help:      "Time from send to confirmation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_mint_duration_seconds",
			Help:      "Latency of individual batch-mint attempts.",
			Buckets:   prometheus.DefBuckets,
		}),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_minted_units_total",
			Help:      "Token units minted by batch runs.",
		}),
	}
	m.registry.MustRegister(m.submitted, m.confirmed, m.failed, m.computeUnits, m.confirmTime, m.batchDuration, m.minted)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Submitted(op instruction.Op) {
	m.submitted.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) Confirmed(op instruction.Op, unitsConsumed uint64, elapsed time.Duration) {
	m.confirmed.WithLabelValues(op.String()).Inc()
	if unitsConsumed > 0 {
		m.computeUnits.WithLabelValues(op.String()).Observe(float64(unitsConsumed))
	}
	m.confirmTime.WithLabelValues(op.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) Failed(op instruction.Op, hint string) {
	m.failed.WithLabelValues(op.String(), hint).Inc()
}

// BatchAttempt records one batch-mint attempt.
func (m *Metrics) BatchAttempt(elapsed time.Duration, mintedUnits uint64) {
	m.batchDuration.Observe(elapsed.Seconds())
	m.minted.Add(float64(mintedUnits))
}

// Router serves GET /metrics and GET /health.
func (m *Metrics) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Serve exposes Router on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: m.Router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
