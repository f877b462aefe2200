package config

import (
	"net/url"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/env"
)

type Config struct {
	HTTP  httpConfig
	Store storeConfig
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type storeConfig struct {
	Root      string
	ServeRoot *url.URL
	MaxSize   int64
	MaxWidth  int
	MaxHeight int
}

func FromEnv() Config {
	return Config{
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: storeConfig{
			Root:      env.String("PHOTO_ROOT", "./photos"),
			ServeRoot: env.Url("PHOTO_SERVE_ROOT", &url.URL{Scheme: "http", Host: "localhost:8080", Path: "/image/"}),
			MaxSize:   env.Int64("PHOTO_MAX_SIZE", 10*1024*1024),
			MaxWidth:  env.Int("PHOTO_MAX_WIDTH", 4096),
			MaxHeight: env.Int("PHOTO_MAX_HEIGHT", 4096),
		},
	}
}
