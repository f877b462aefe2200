package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	SchemaVersion = 2

	schemaKey    = "prefs:schema"
	legacyPrefix = "theme:"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{rdb: rdb}
}

func themeKey(userID string) string {
	return "prefs:v2:" + userID + ":theme"
}

// Theme returns the stored theme, or auto when nothing is stored.
func (s *RedisStore) Theme(ctx context.Context, userID string) (Theme, error) {
	val, err := s.rdb.Get(ctx, themeKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ThemeAuto, nil
		}

		return ThemeAuto, fmt.Errorf("get theme: %w", err)
	}

	return ParseTheme(val), nil
}

func (s *RedisStore) SetTheme(ctx context.Context, userID string, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q", t)
	}

	if err := s.rdb.Set(ctx, themeKey(userID), string(t), 0).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}

	return nil
}

// Migrate moves legacy theme:<uid> keys to the v2 layout once. Values already
// present under v2 win over legacy ones.
func (s *RedisStore) Migrate(ctx context.Context) error {
	v, err := s.rdb.Get(ctx, schemaKey).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v >= SchemaVersion {
		return nil
	}

	var moved, skipped int
	iter := s.rdb.Scan(ctx, 0, legacyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID := strings.TrimPrefix(key, legacyPrefix)
		if userID == "" {
			continue
		}

		val, err := s.rdb.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("read legacy key %s: %w", key, err)
		}

		ok, err := s.rdb.SetNX(ctx, themeKey(userID), string(ParseTheme(val)), 0).Result()
		if err != nil {
			return fmt.Errorf("write v2 key for %s: %w", userID, err)
		}
		if ok {
			moved++
		} else {
			skipped++
		}

		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete legacy key %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan legacy keys: %w", err)
	}

	if err := s.rdb.Set(ctx, schemaKey, SchemaVersion, 0).Err(); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	slog.Info("preferences migrated", "version", SchemaVersion, "moved", moved, "skipped", skipped)
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
