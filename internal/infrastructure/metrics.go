package infrastructure

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Request body metrics
	RequestBodyDecodes metric.Int64Counter
	RequestBodyBytes   metric.Int64Histogram
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestBodyDecodes, err := meter.Int64Counter(
		"request_body_decodes",
		metric.WithDescription("Request bodies decoded, by endpoint variant and outcome"),
	)
	if err != nil {
		return nil, err
	}

	requestBodyBytes, err := meter.Int64Histogram(
		"request_body_size",
		metric.WithDescription("Size of request bodies read by the decoding endpoints"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(16, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		RequestBodyDecodes:  requestBodyDecodes,
		RequestBodyBytes:    requestBodyBytes,
	}, nil
}

// RecordDecode counts one decode attempt of an endpoint variant
func (m *BusinessMetrics) RecordDecode(ctx context.Context, variant, outcome string) {
	if m == nil {
		return
	}
	m.RequestBodyDecodes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("outcome", outcome),
	))
}

// RecordBodySize records the size of a body read by an endpoint variant
func (m *BusinessMetrics) RecordBodySize(ctx context.Context, variant string, size int) {
	if m == nil {
		return
	}
	m.RequestBodyBytes.Record(ctx, int64(size), metric.WithAttributes(
		attribute.String("variant", variant),
	))
}
