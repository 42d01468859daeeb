package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests     *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors to reg. Collectors that are already
// registered are reused.
func New(reg *prometheus.Registry) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "view_counter_requests_total",
		Help: "Requests handled by the counter endpoint",
	}, []string{"method", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "view_counter_store_duration_seconds",
		Help:    "Time taken by the store increment",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	m := &Metrics{gatherer: reg}
	var err error
	if m.Requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if m.StoreLatency, err = register(reg, latency); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg *prometheus.Registry, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(T), nil
		}
		var zero T
		return zero, fmt.Errorf("reg.Register: %w", err)
	}
	return c, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
