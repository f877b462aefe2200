package config

import (
	"net/url"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/env"
)

type Config struct {
	HTTP     httpConfig
	Backends backendsConfig
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type backendsConfig struct {
	Plates *url.URL
	Photos *url.URL
}

func FromEnv() Config {
	return Config{
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backends: backendsConfig{
			Plates: env.Url("PLATES_URL", &url.URL{Scheme: "http", Host: "plates:8080"}),
			Photos: env.Url("PHOTOS_URL", &url.URL{Scheme: "http", Host: "photos:8080"}),
		},
	}
}
