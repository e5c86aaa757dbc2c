package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
	requestSize    metric.Int64Histogram
	responseSize   metric.Int64Histogram
	inFlight       metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter, namespace string) (*httpMetrics, error) {
	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sizeBuckets := metric.WithExplicitBucketBoundaries(256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304)

	requestSize, err := meter.Int64Histogram(
		fmt.Sprintf("%s_http_request_size_bytes", namespace),
		metric.WithDescription("HTTP request body size in bytes"),
		metric.WithUnit("By"),
		sizeBuckets,
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		fmt.Sprintf("%s_http_response_size_bytes", namespace),
		metric.WithDescription("HTTP response body size in bytes"),
		metric.WithUnit("By"),
		sizeBuckets,
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
		requestSize:    requestSize,
		responseSize:   responseSize,
		inFlight:       inFlight,
	}, nil
}

// HTTPMetricsMiddleware records request count, duration, body sizes and in-flight
// requests. Paths are reported as route patterns (e.g. /v1/messages/encrypt) so
// cardinality stays bounded.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	metrics, err := newHTTPMetrics(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		metrics.inFlight.Add(ctx, 1)
		c.Next()
		metrics.inFlight.Add(ctx, -1)

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)

		metrics.requestCounter.Add(ctx, 1, attrs)
		metrics.durationHisto.Record(ctx, time.Since(start).Seconds(), attrs)
		if c.Request.ContentLength > 0 {
			metrics.requestSize.Record(ctx, c.Request.ContentLength, attrs)
		}
		if size := c.Writer.Size(); size > 0 {
			metrics.responseSize.Record(ctx, int64(size), attrs)
		}
	}
}

// sanitizePath returns "unknown" for requests that matched no route.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
