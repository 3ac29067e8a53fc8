package clipdex

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// clientMetrics counts backend calls per operation. status is "ok" or "error";
// local validation failures never reach it.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	operations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clipdex",
		Subsystem: "client",
		Name:      "operations_total",
		Help:      "Requests sent to the retrieval backend, by client operation and outcome.",
	}, []string{"operation", "status"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clipdex",
		Subsystem: "client",
		Name:      "operation_duration_seconds",
		Help:      "Round trip to the retrieval backend including response decoding.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	return &clientMetrics{operations: operations, duration: duration}, nil
}

// register adds c to reg. Several clients may share one registry, so a
// collector that is already there is returned in place of c.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("clipdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("clipdex: metric registered as %T, want %T", are.ExistingCollector, c)
	}
	return existing, nil
}

// observer turns every finished backend call into metric samples and a
// single log entry: Debug on success, Warn on failure.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(
	op, method, path, requestID string, start time.Time, err error,
) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Duration("duration", dur),
	}
	if err == nil {
		o.logger.Debug("backend call completed", fields...)
		return
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		fields = append(fields,
			zap.Int("status", reqErr.StatusCode),
			zap.String("status_text", reqErr.Status),
		)
	}
	o.logger.Warn("backend call failed", append(fields, zap.Error(err))...)
}
