package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// PrometheusConfig configures the Prometheus observer.
type PrometheusConfig struct {
	// Namespace is the metrics namespace (default: "asyncvalue").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*PrometheusConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *PrometheusConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *PrometheusConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *PrometheusConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *PrometheusConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *PrometheusConfig) {
		c.Registry = registry
	}
}

func defaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace: "asyncvalue",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// PrometheusObserver records dispatch, persist and rehydrate activity.
//
// Metrics collected:
//   - asyncvalue_dispatches_total: Counter of dispatches by store and changed
//   - asyncvalue_dispatch_duration_seconds: Histogram of reducer time by store
//   - asyncvalue_persists_total: Counter of snapshot saves by key and status
//   - asyncvalue_rehydrates_total: Counter of snapshot loads by key and result
type PrometheusObserver struct {
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	persists         *prometheus.CounterVec
	rehydrates       *prometheus.CounterVec
}

var _ api.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers its metrics and returns the observer.
// Registering twice against the same registry panics, so create one
// observer per registry and share it between stores.
func NewPrometheusObserver(opts ...Option) *PrometheusObserver {
	config := defaultPrometheusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &PrometheusObserver{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of actions dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "changed"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Time spent in the reducer per dispatch in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		persists: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "persists_total",
			Help:        "Total number of snapshot saves",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "status"}),

		rehydrates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rehydrates_total",
			Help:        "Total number of snapshot loads",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "result"}),
	}
}

func (o *PrometheusObserver) OnDispatch(ctx context.Context, store string, a api.Action, changed bool, d time.Duration) {
	o.dispatches.WithLabelValues(store, strconv.FormatBool(changed)).Inc()
	o.dispatchDuration.WithLabelValues(store).Observe(d.Seconds())
}

func (o *PrometheusObserver) OnPersist(ctx context.Context, key string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.persists.WithLabelValues(key, status).Inc()
}

func (o *PrometheusObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	result := "empty"
	switch {
	case err != nil:
		result = "error"
	case restored:
		result = "restored"
	}
	o.rehydrates.WithLabelValues(key, result).Inc()
}
