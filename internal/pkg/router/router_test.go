package router_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/stretchr/testify/assert"
)

func TestHandleFunc(t *testing.T) {
	tbl := []struct {
		pattern string
		method  string
		path    string
		status  int
	}{
		{"/regions", "GET", "/regions", http.StatusOK},
		{"regions", "GET", "/regions", http.StatusOK},
		{"GET /regions", "GET", "/regions", http.StatusOK},
		{"GET regions", "GET", "/regions", http.StatusOK},
		{"GET /regions", "POST", "/regions", http.StatusMethodNotAllowed},
		{"/regions", "GET", "/plates", http.StatusNotFound},
		{"GET /regions/{id}", "GET", "/regions/abc", http.StatusOK},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			r := router.New()
			r.HandleFunc(c.pattern, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, nil))

			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestSubRouter(t *testing.T) {
	tbl := []struct {
		mountPoint   string
		relativePath string
		path         string
		status       int
	}{
		{"/api", "GET /hello", "/api/hello", http.StatusOK},
		{"v1", "/hello/", "/v1/hello/world", http.StatusForbidden},
		{"/long/prefix/", "hello", "/long/prefix/hello", http.StatusConflict},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			r := router.New()
			sub := r.SubRouter(c.mountPoint)

			sub.HandleFunc(c.relativePath, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				fmt.Fprint(w, r.URL.Path)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest("GET", c.path, nil))

			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestSubRouter_Prefix(t *testing.T) {
	r := router.New()
	api := r.SubRouter("/api")
	v1 := api.SubRouter("v1/")

	assert.Equal(t, "/api/v1", v1.Prefix())
}

func TestSubRouter_PanicsWhenEmpty(t *testing.T) {
	r := router.New()
	assert.Panics(t, func() {
		r.SubRouter("")
	})
}

func TestMount(t *testing.T) {
	r := router.New()
	r.Mount("/api/v1", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Path)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/regions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/regions", rec.Body.String())
}

func TestMiddleware_Order(t *testing.T) {
	r := router.New()

	var calls []string
	mw := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	r.Use(mw("outer"), mw("inner"))

	sub := r.SubRouter("/api")
	sub.Use(mw("sub"))
	sub.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "inner", "sub", "handler"}, calls)
}
