package config_test

import (
	"testing"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/photos/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	t.Setenv("HTTP_IDLE_TIMEOUT", "70s")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "15s")
	t.Setenv("PHOTO_ROOT", "/var/lib/photos")
	t.Setenv("PHOTO_SERVE_ROOT", "https://cdn.example.com/plates/")
	t.Setenv("PHOTO_MAX_SIZE", "12345")
	t.Setenv("PHOTO_MAX_WIDTH", "2560")
	t.Setenv("PHOTO_MAX_HEIGHT", "1440")

	cfg := config.FromEnv()

	assert.Equal(t, ":9090", cfg.HTTP.ListenAddr)
	assert.Equal(t, 70*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "/var/lib/photos", cfg.Store.Root)
	assert.Equal(t, "https://cdn.example.com/plates/", cfg.Store.ServeRoot.String())
	assert.Equal(t, int64(12345), cfg.Store.MaxSize)
	assert.Equal(t, 2560, cfg.Store.MaxWidth)
	assert.Equal(t, 1440, cfg.Store.MaxHeight)
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "./photos", cfg.Store.Root)
	assert.Equal(t, "http://localhost:8080/image/", cfg.Store.ServeRoot.String())
	assert.Equal(t, int64(10*1024*1024), cfg.Store.MaxSize)
	assert.Equal(t, 4096, cfg.Store.MaxWidth)
}
