package router

import (
	"net/http"
	"strings"
)

type Middleware func(http.Handler) http.Handler

// Router is a ServeMux with a middleware chain and prefix-mounted children.
// A child only runs its own middleware; the parent chain has already wrapped it.
type Router struct {
	prefix     string
	mux        *http.ServeMux
	middleware []Middleware
}

func New() *Router {
	return &Router{mux: http.NewServeMux()}
}

func (rt *Router) Use(mw ...Middleware) {
	rt.middleware = append(rt.middleware, mw...)
}

// Prefix returns the absolute mount point of the router.
func (rt *Router) Prefix() string {
	return rt.prefix
}

func (rt *Router) Handle(pattern string, handler http.Handler) {
	rt.mux.Handle(normalize(pattern), handler)
}

func (rt *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	rt.mux.HandleFunc(normalize(pattern), handler)
}

// Mount serves h under prefix with the prefix stripped from the request path.
func (rt *Router) Mount(prefix string, h http.Handler) {
	prefix = cleanPrefix(prefix)
	rt.mux.Handle(prefix+"/", http.StripPrefix(prefix, h))
}

func (rt *Router) SubRouter(prefix string) *Router {
	prefix = cleanPrefix(prefix)
	s := &Router{
		prefix: rt.prefix + prefix,
		mux:    http.NewServeMux(),
	}

	rt.Mount(prefix, s)
	return s
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = rt.mux
	for i := len(rt.middleware) - 1; i >= 0; i-- {
		h = rt.middleware[i](h)
	}

	h.ServeHTTP(w, r)
}

// normalize keeps an optional "METHOD " prefix and makes the path absolute.
func normalize(pattern string) string {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		path, method = method, ""
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if method == "" {
		return path
	}
	return method + " " + path
}

func cleanPrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		panic("router: empty mount prefix")
	}

	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
