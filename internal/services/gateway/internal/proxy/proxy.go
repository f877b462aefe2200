// Package proxy routes public traffic to the backend services.
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
)

type Backends struct {
	Plates *url.URL
	Photos *url.URL
}

func newProxy(name string, target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("backend unavailable",
				"backend", name,
				"error", err,
				"method", r.Method,
				"url", r.URL.String(),
			)
			httpx.WriteError(w, http.StatusBadGateway, "Bad Gateway", "")
		},
	}
}

// Mount registers the public routes. Photo uploads stay internal; only
// stored images are reachable from outside.
func Mount(mux *http.ServeMux, b Backends) {
	plates := newProxy("plates", b.Plates)
	photos := newProxy("photos", b.Photos)

	mux.Handle("/api/v1/", plates)
	mux.Handle("GET /image/", photos)
}
