package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsUseCaseObserver struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsUseCaseObserver counts and times use cases on reg. Registering
// twice on the same registry reuses the existing collectors.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) (UseCaseObserver, error) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tremor",
		Name:      "use_case_total",
		Help:      "Service use cases executed, by outcome.",
	}, []string{"use_case", "success"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tremor",
		Name:      "use_case_duration_seconds",
		Help:      "Service use case latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"use_case"})

	var err error
	if total, err = register(reg, total); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &metricsUseCaseObserver{total: total, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.total.WithLabelValues(event.Name, strconv.FormatBool(event.Success)).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}
