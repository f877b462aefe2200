package middleware

import (
	"net/http"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/klauspost/compress/gzhttp"
)

// Compress gzips responses for clients that accept it. SVG markup and region lists compress well.
func Compress() router.Middleware {
	return func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	}
}
