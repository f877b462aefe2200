package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
)

func Recover() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.Error("internal server error",
					"error", err,
					"method", r.Method,
					"url", r.URL.String(),
					"remote_addr", r.RemoteAddr,
					"stack_trace", string(debug.Stack()),
				)
				httpx.WriteError(w, http.StatusInternalServerError, "Internal Server Error", "")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
