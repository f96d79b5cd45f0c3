package infra

import (
	"context"

	"numbers-gateway/aggregator/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe os FetchEvent como métricas.
type PrometheusStatsStore struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	s := &PrometheusStatsStore{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "numbers",
			Name:      "fetch_total",
			Help:      "Upstream fetches by result and failure kind.",
		}, []string{"result", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "numbers",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{s.fetches, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.FetchEvent) error {
	result, kind := "success", "none"
	if !ev.Success {
		result, kind = "failure", string(ev.Kind)
		if kind == "" {
			kind = "unknown"
		}
	}
	s.fetches.WithLabelValues(result, kind).Inc()
	s.duration.WithLabelValues(result).Observe(ev.Duration.Seconds())
	return nil
}
