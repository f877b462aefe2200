package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics counts requests by matched route pattern so that path values do not explode label cardinality.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer, namespace string) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *HTTPMetrics) Middleware() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrapStatus(w)
			t := time.Now()

			next.ServeHTTP(sw, r)

			// r.Pattern is filled in by the innermost mux that matched.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			status := sw.Status
			if status == 0 {
				status = http.StatusOK
			}

			m.requestsTotal.WithLabelValues(r.Method, route, statusBucket(status)).Inc()
			m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(t).Seconds())
		})
	}
}

func statusBucket(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
