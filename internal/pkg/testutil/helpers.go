package testutil

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/middleware"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type TestFile struct {
	Name      string
	FieldName string
	Content   io.Reader
}

// RequestOption mutates an outgoing test request.
type RequestOption func(*http.Request) *http.Request

// AsUser attaches an authenticated user id the way middleware.Auth would.
func AsUser(uid string) RequestOption {
	return func(r *http.Request) *http.Request {
		return r.WithContext(middleware.WithUserID(r.Context(), uid))
	}
}

func WithHeader(key, val string) RequestOption {
	return func(r *http.Request) *http.Request {
		r.Header.Set(key, val)
		return r
	}
}

func serve(h http.Handler, req *http.Request, opts []RequestOption) *httptest.ResponseRecorder {
	for _, opt := range opts {
		req = opt(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func SendFile(t testing.TB, h http.Handler, method, path string, file TestFile, opts ...RequestOption) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(file.FieldName, file.Name)
	require.NoError(t, err)

	_, err = io.Copy(part, file.Content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return serve(h, req, opts)
}

// SendRequest encodes body as JSON. A nil body sends no payload.
func SendRequest(t testing.TB, h http.Handler, method, path string, body any, opts ...RequestOption) *httptest.ResponseRecorder {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return serve(h, req, opts)
}

func ParseResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func WaitFor(t testing.TB, ctx context.Context, interval time.Duration, condition func() bool) bool {
	t.Helper()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}
