// Package metrics counts poll cycles, toggles and page fetches and can
// expose them on a Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
)

const namespace = "iotdash"

// Recorder implements the observer interfaces of poller, devices and
// history. The zero value is not usable; call New.
type Recorder struct {
	registry *prometheus.Registry

	polls        *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec
	samples      *prometheus.GaugeVec
	toggles      *prometheus.CounterVec
	pages        *prometheus.CounterVec
}

// New registers all collectors on a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Sensor poll cycles by view and result.",
		}, []string{"view", "result"}),
		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Latency of sensor poll requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_samples",
			Help:      "Samples returned by the last successful poll.",
		}, []string{"view"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_toggles_total",
			Help:      "Device toggles by target status and outcome.",
		}, []string{"target", "outcome"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pages_total",
			Help:      "History page fetches by list and result.",
		}, []string{"list", "result"}),
	}
	r.registry.MustRegister(
		r.polls, r.pollDuration, r.samples, r.toggles, r.pages,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// PollCompleted records one sensor poll cycle.
func (r *Recorder) PollCompleted(view string, samples int, elapsed time.Duration, err error) {
	r.polls.WithLabelValues(view, result(err)).Inc()
	r.pollDuration.WithLabelValues(view).Observe(elapsed.Seconds())
	if err == nil {
		r.samples.WithLabelValues(view).Set(float64(samples))
	}
}

// ToggleCompleted records a settled device toggle.
func (r *Recorder) ToggleCompleted(_ api.ID, target api.Status, rolledBack bool, err error) {
	outcome := "ok"
	switch {
	case err != nil && rolledBack:
		outcome = "rolled_back"
	case err != nil:
		outcome = "superseded"
	}
	r.toggles.WithLabelValues(string(target), outcome).Inc()
}

// PageFetched records a history page fetch.
func (r *Recorder) PageFetched(list string, _ int, _ time.Duration, err error) {
	r.pages.WithLabelValues(list, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends. It returns once the
// listener is bound; serve errors are logged.
func (r *Recorder) Serve(ctx context.Context, addr string, log *zap.Logger) (net.Addr, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics endpoint listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}
