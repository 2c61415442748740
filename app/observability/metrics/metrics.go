package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	PermissionDeniedTotal   metric.Int64Counter
	ValidationFailuresTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Init configures the global meter provider with a Prometheus exporter and
// creates the application's instruments. Safe to call more than once.
func Init() (*AppMetrics, error) {
	var initErr error
	once.Do(func() {
		exporter, err := prometheus.New()
		if err != nil {
			initErr = fmt.Errorf("failed to create prometheus exporter: %w", err)
			return
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		otel.SetMeterProvider(mp)

		meter := otel.GetMeterProvider().Meter("fundhub")
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.PermissionDeniedTotal, err = meter.Int64Counter(
			"permission_denied_total",
			metric.WithDescription("Total number of requests rejected by a permission predicate"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.ValidationFailuresTotal, err = meter.Int64Counter(
			"validation_failures_total",
			metric.WithDescription("Total number of writes rejected by validation"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		appMetrics = m
	})
	if initErr != nil {
		return nil, initErr
	}
	return appMetrics, nil
}

// Get returns the initialized instruments, or nil before Init.
func Get() *AppMetrics {
	return appMetrics
}

// Middleware records request count and duration per method/path/status.
func Middleware(m *AppMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("path", r.URL.Path),
				attribute.String("status", strconv.Itoa(ww.Status())),
			)
			m.HTTPRequestsTotal.Add(r.Context(), 1, attrs)
			m.HTTPRequestDuration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			if ww.Status() == http.StatusForbidden {
				m.PermissionDeniedTotal.Add(r.Context(), 1, attrs)
			}
		})
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
