package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtected(key []byte) *router.Router {
	r := router.New()
	r.Use(Auth(key))
	r.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, UserIDFromContext(r.Context()))
	})
	return r
}

func sign(t *testing.T, key []byte, claims jwt.Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuth(t *testing.T) {
	key := []byte("test-api-key")

	tbl := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no token", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
		{"raw token", sign(t, key, jwt.RegisteredClaims{Subject: "user-123"}), http.StatusOK, "user-123"},
		{"bearer token", "Bearer " + sign(t, key, jwt.RegisteredClaims{Subject: "user-456"}), http.StatusOK, "user-456"},
		{"no subject", sign(t, key, jwt.RegisteredClaims{}), http.StatusUnauthorized, ""},
		{"wrong key", sign(t, []byte("other"), jwt.RegisteredClaims{Subject: "user-123"}), http.StatusUnauthorized, ""},
		{"expired", sign(t, key, jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}), http.StatusUnauthorized, ""},
	}

	for _, c := range tbl {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()

			newProtected(key).ServeHTTP(rec, req)

			assert.Equal(t, c.status, rec.Code)
			if c.status == http.StatusOK {
				assert.Equal(t, c.body, rec.Body.String())
			}
		})
	}
}
