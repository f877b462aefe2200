package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	json "github.com/goccy/go-json"
)

// MaxBodySize bounds JSON request bodies.
const MaxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ReadJSON decodes the request body into out. Malformed bodies are reported as 400.
func ReadJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodySize))
	if err := dec.Decode(out); err != nil {
		return serr.NewServiceError(err, http.StatusBadRequest, "invalid request body").
			WithCode(serr.CodeValidation)
	}

	return nil
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes the JSON error envelope without logging.
func WriteError(w http.ResponseWriter, status int, msg, code string) {
	_ = WriteJSON(w, status, errorResponse{Error: msg, Code: code})
}

func HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	var se *serr.ServiceError
	if errors.As(err, &se) {
		level := slog.LevelWarn
		if se.StatusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		attrs := []any{
			"error", err,
			"code", se.Code,
			"status", se.StatusCode,
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		}
		for k, v := range se.Env {
			attrs = append(attrs, k, v)
		}
		slog.Log(r.Context(), level, "request error", attrs...)

		WriteError(w, se.StatusCode, se.Msg, se.Code)
		return
	}

	slog.Error("request error",
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error", "")
}
