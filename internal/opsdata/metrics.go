package opsdata

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes payload loads. A nil *Metrics is a no-op.
type Metrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the loader collectors. Collectors already registered
// on reg are reused so repeated wiring in tests does not panic.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsboard_data_cache_hits_total",
			Help: "Number of dashboard payload loads served from cache.",
		}, []string{"source"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsboard_data_cache_miss_total",
			Help: "Number of dashboard payload loads that reached the source.",
		}, []string{"source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsboard_data_load_failures_total",
			Help: "Number of failed dashboard payload loads.",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsboard_data_load_duration_seconds",
			Help:    "Duration required to load and decode the dashboard payload.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}
	var err error
	m.hits = registerCounter(reg, m.hits, &err)
	m.misses = registerCounter(reg, m.misses, &err)
	m.failures = registerCounter(reg, m.failures, &err)
	if regErr := reg.Register(m.duration); regErr != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(regErr, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.duration = existing
			}
		} else if err == nil {
			err = regErr
		}
	}
	return m, err
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec, errOut *error) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		if *errOut == nil {
			*errOut = err
		}
	}
	return c
}

func (m *Metrics) observe(source string, hit bool, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(source).Inc()
		return
	}
	if hit {
		m.hits.WithLabelValues(source).Inc()
	} else {
		m.misses.WithLabelValues(source).Inc()
	}
	m.duration.WithLabelValues(source).Observe(elapsed.Seconds())
}
