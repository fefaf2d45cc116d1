// Package metrics exposes batch progress to Prometheus.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

const (
	namespace       = "nft_minter"
	shutdownTimeout = 5 * time.Second
)

// Service records mint and transfer outcomes on its own registry.
type Service struct {
	registry *prometheus.Registry

	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    prometheus.Gauge
}

var _ minter.Observer = (*Service)(nil)

func New() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Mint and transfer steps by outcome.",
		}, []string{"step", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time from submission to confirmation.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		}, []string{"step"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_items",
			Help:      "Number of items in the running batch.",
		}),
	}

	s.registry.MustRegister(s.steps)
	s.registry.MustRegister(s.duration)
	s.registry.MustRegister(s.items)

	return s
}

func (s *Service) ObserveMint(outcome minter.Outcome, seconds float64) {
	s.observe("mint", outcome, seconds)
}

func (s *Service) ObserveTransfer(outcome minter.Outcome, seconds float64) {
	s.observe("transfer", outcome, seconds)
}

func (s *Service) observe(step string, outcome minter.Outcome, seconds float64) {
	s.steps.WithLabelValues(step, string(outcome)).Inc()
	s.duration.WithLabelValues(step).Observe(seconds)
}

// SetBatchItems records the size of the batch about to run.
func (s *Service) SetBatchItems(n int) {
	s.items.Set(float64(n))
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. The returned channel
// yields the listener's terminal error, if any.
func (s *Service) Serve(ctx context.Context, addr string) (<-chan error, error) {
	log := util.LogFromContext(ctx).With().Str("component", "metrics").Logger()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down metrics listener")
		}
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("Serving metrics")

	return done, nil
}

// Start serves /metrics on addr until ctx is cancelled and logs a listener
// that fails while the batch is still running.
func (s *Service) Start(ctx context.Context, addr string) error {
	done, err := s.Serve(ctx, addr)
	if err != nil {
		return err
	}

	go ReportErrors(ctx, done)

	return nil
}

// ReportErrors logs every error received from done until it is closed.
func ReportErrors(ctx context.Context, done <-chan error) {
	log := util.LogFromContext(ctx).With().Str("component", "metrics").Logger()

	for err := range done {
		log.Warn().Err(err).Msg("Metrics listener stopped")
	}
}
