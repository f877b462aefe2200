package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
)

type httpStatusWriter struct {
	http.ResponseWriter
	Status int
}

func (sw *httpStatusWriter) WriteHeader(status int) {
	sw.Status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *httpStatusWriter) Write(b []byte) (int, error) {
	if sw.Status == 0 {
		sw.Status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *httpStatusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func wrapStatus(w http.ResponseWriter) *httpStatusWriter {
	if sw, ok := w.(*httpStatusWriter); ok {
		return sw
	}
	return &httpStatusWriter{ResponseWriter: w}
}

func Log() router.Middleware {
	return LogWith(slog.Default())
}

func LogWith(l *slog.Logger) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			statusWriter := wrapStatus(w)
			t := time.Now()

			next.ServeHTTP(statusWriter, r)
			l.Info("request received",
				"time", t,
				"duration_ms", time.Since(t).Milliseconds(),
				"method", r.Method,
				"url", r.URL.String(),
				"ip", r.RemoteAddr,
				"status", statusWriter.Status,
				"agent", r.UserAgent())
		})
	}
}
