package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus instruments. A fresh registry is
// created per instance so tests never collide on duplicate registration.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	fulfillmentEvents   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petstore",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "petstore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		fulfillmentEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petstore",
			Name:      "fulfillment_events_total",
			Help:      "Gateway events by type and handling outcome.",
		}, []string{"type", "outcome"}),
	}
}

// ObserveEvent records how a gateway event was resolved: fulfilled,
// duplicate, conflict, updated, unmatched, ignored or error.
func (m *Metrics) ObserveEvent(eventType, outcome string) {
	m.fulfillmentEvents.WithLabelValues(eventType, outcome).Inc()
}

// Middleware instruments every HTTP request handled by echo.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			m.httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
