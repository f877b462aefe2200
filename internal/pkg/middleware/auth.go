package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

var userIDKey ctxKey

// Auth verifies an HS256 bearer token and stores its subject as the user id.
func Auth(key any) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, key)
	}
}

func authMiddleware(next http.Handler, key any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if rawToken == "" {
			unauthorized(w)
			return
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			authError("failed to parse jwt", w, r, err)
			return
		}
		if !token.Valid {
			unauthorized(w)
			return
		}

		uid, err := token.Claims.GetSubject()
		if err != nil || uid == "" {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

func authError(msg string, w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn(msg,
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
	unauthorized(w)
}

func unauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
}

// WithUserID is used by Auth and by handler tests that bypass token parsing.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}
