package exportprom

import (
	"context"
	"errors"

	"github.com/goliatone/go-impact-export/export"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the Prometheus metrics hook.
type Config struct {
	Namespace string
	Subsystem string
	// Registry receives the collectors; nil uses prometheus.DefaultRegisterer.
	Registry        prometheus.Registerer
	DurationBuckets []float64
}

// DefaultConfig returns the namespace and buckets used by the daemon.
func DefaultConfig() Config {
	return Config{
		Namespace:       "impact",
		Subsystem:       "export",
		DurationBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
}

// Hook records export lifecycle events as Prometheus metrics.
type Hook struct {
	exports  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	fallback *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ export.MetricsHook = (*Hook)(nil)

// NewHook creates and registers the export collectors. Collectors that are
// already registered are reused.
func NewHook(cfg Config) (*Hook, error) {
	defaults := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = defaults.Subsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = defaults.DurationBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	h := &Hook{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Export requests by entity type, format and outcome.",
		}, []string{"entity_type", "format", "outcome", "error_kind"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "rows_total",
			Help:      "Rows written to completed exports.",
		}, []string{"entity_type", "format"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "skipped_rows_total",
			Help:      "Rows skipped because they could not be formatted.",
		}, []string{"entity_type", "format"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "bytes_total",
			Help:      "Bytes produced by completed exports.",
		}, []string{"entity_type", "format"}),
		fallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "document_fallbacks_total",
			Help:      "Document exports downgraded to structured data.",
		}, []string{"entity_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "duration_seconds",
			Help:      "Export duration from request to payload.",
			Buckets:   cfg.DurationBuckets,
		}, []string{"format", "outcome"}),
	}

	if err := h.register(registry); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hook) register(registry prometheus.Registerer) error {
	var err error
	if h.exports, err = registerCounter(registry, h.exports); err != nil {
		return err
	}
	if h.rows, err = registerCounter(registry, h.rows); err != nil {
		return err
	}
	if h.skipped, err = registerCounter(registry, h.skipped); err != nil {
		return err
	}
	if h.bytes, err = registerCounter(registry, h.bytes); err != nil {
		return err
	}
	if h.fallback, err = registerCounter(registry, h.fallback); err != nil {
		return err
	}
	if err := registry.Register(h.duration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return err
		}
		h.duration = existing
	}
	return nil
}

func registerCounter(registry prometheus.Registerer, counter *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := registry.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		return existing, nil
	}
	return counter, nil
}

// Emit records evt.
func (h *Hook) Emit(ctx context.Context, evt export.MetricsEvent) error {
	if h == nil {
		return nil
	}
	entity := string(evt.EntityType)
	format := string(evt.Format)

	switch evt.Name {
	case export.EventExportCompleted:
		h.exports.WithLabelValues(entity, format, "completed", "").Inc()
		h.rows.WithLabelValues(entity, format).Add(float64(evt.Rows))
		h.skipped.WithLabelValues(entity, format).Add(float64(evt.Skipped))
		h.bytes.WithLabelValues(entity, format).Add(float64(evt.Bytes))
		h.duration.WithLabelValues(format, "completed").Observe(evt.Duration.Seconds())
	case export.EventExportFailed:
		h.exports.WithLabelValues(entity, format, "failed", string(evt.ErrorKind)).Inc()
		h.duration.WithLabelValues(format, "failed").Observe(evt.Duration.Seconds())
	case export.EventExportDegraded:
		h.fallback.WithLabelValues(entity).Inc()
	}
	return nil
}
