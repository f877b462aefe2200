package config

import (
	"time"
	_ "time/tzdata"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/env"
)

type Config struct {
	AuthSecret string
	HTTP       httpConfig
	DB         dbConfig
	Redis      redisConfig
	AMQP       amqpConfig
	Photo      photoConfig
	OCR        ocrConfig
	Rarity     rarityConfig
	Render     renderConfig
	Search     searchConfig
	Metrics    metricsConfig
	Theme      themeConfig

	ExcludedPrefectures []string
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64
}

type dbConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type redisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// An empty URL disables publishing.
type amqpConfig struct {
	URL string
}

type photoConfig struct {
	Endpoint  string
	FieldName string
	FileName  string
	Timeout   time.Duration
}

// An empty endpoint disables plate recognition.
type ocrConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type rarityConfig struct {
	DefaultTier   int
	DefaultPoints int
	CacheKeys     int64
	CacheCost     int64
	CacheTTL      time.Duration
}

type renderConfig struct {
	CacheBytes int
}

type searchConfig struct {
	Limit int
}

// Location resolves the auto theme for clients that send no zone.
type themeConfig struct {
	Location *time.Location
}

type metricsConfig struct {
	Enabled   bool
	Namespace string
}

func FromEnv() Config {
	return Config{
		AuthSecret: env.RequireString("AUTH_SECRET"),
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadSize:   env.Int64("HTTP_MAX_UPLOAD_SIZE", 8*1024*1024),
		},
		DB: dbConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.String("DB_PORT", "5432"),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", ""),
			Name:     env.String("DB_NAME", "plates"),
		},
		Redis: redisConfig{
			Host:     env.String("REDIS_HOST", "localhost"),
			Port:     env.String("REDIS_PORT", "6379"),
			Password: env.String("REDIS_PASSWORD", ""),
			DB:       env.Int("REDIS_DB", 0),
		},
		AMQP: amqpConfig{
			URL: env.String("AMQP_URL", ""),
		},
		Photo: photoConfig{
			Endpoint:  env.String("PHOTO_ENDPOINT", ""),
			FieldName: env.String("PHOTO_FIELD_NAME", "image"),
			FileName:  env.String("PHOTO_FILE_NAME", "plate.jpg"),
			Timeout:   env.Duration("PHOTO_TIMEOUT", 30*time.Second),
		},
		OCR: ocrConfig{
			Endpoint: env.String("OCR_ENDPOINT", ""),
			Timeout:  env.Duration("OCR_TIMEOUT", 20*time.Second),
		},
		Rarity: rarityConfig{
			DefaultTier:   env.Int("RARITY_DEFAULT_TIER", 5),
			DefaultPoints: env.Int("RARITY_DEFAULT_POINTS", 50),
			CacheKeys:     env.Int64("RARITY_CACHE_KEYS", 10_000),
			CacheCost:     env.Int64("RARITY_CACHE_COST", 1_000),
			CacheTTL:      env.Duration("RARITY_CACHE_TTL", 10*time.Minute),
		},
		Render: renderConfig{
			CacheBytes: env.Int("SVG_CACHE_BYTES", 8*1024*1024),
		},
		Search: searchConfig{
			Limit: min(max(env.Int("SEARCH_LIMIT", 10), 8), 10),
		},
		Theme: themeConfig{
			Location: env.Location("THEME_TZ", tokyo()),
		},
		Metrics: metricsConfig{
			Enabled:   env.Bool("METRICS_ENABLED", true),
			Namespace: env.String("METRICS_NAMESPACE", "plates"),
		},
		ExcludedPrefectures: env.Strings("EXCLUDED_PREFECTURES", []string{"沖縄県"}),
	}
}

func tokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.UTC
	}
	return loc
}
