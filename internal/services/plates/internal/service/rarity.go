package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/dgraph-io/ristretto/v2"
)

type rarityStore interface {
	GetRarity(ctx context.Context, regionID string) (model.Rarity, error)
}

// rarityCache reads region rarity through a short-lived cache so that edits
// to the reference table reach new registrations within one TTL. A
// non-positive TTL disables caching.
type rarityCache struct {
	cache    *ristretto.Cache[string, model.Rarity]
	ttl      time.Duration
	fallback model.Rarity
}

func newRarityCache(cfg RarityConfig) *rarityCache {
	rc := &rarityCache{
		ttl:      cfg.CacheTTL,
		fallback: model.Rarity{Tier: cfg.DefaultTier, Points: cfg.DefaultPoints},
	}
	if cfg.CacheKeys <= 0 || cfg.CacheCost <= 0 || cfg.CacheTTL <= 0 {
		return rc
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, model.Rarity]{
		NumCounters: cfg.CacheKeys * 10,
		MaxCost:     cfg.CacheCost,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create rarity cache: %v", err))
	}

	rc.cache = c
	return rc
}

// get returns the rarity of the region, or the default tier when the
// region has no rarity row.
func (rc *rarityCache) get(ctx context.Context, st rarityStore, regionID string) (model.Rarity, bool, error) {
	if rc.cache != nil {
		if rr, ok := rc.cache.Get(regionID); ok {
			return rr, true, nil
		}
	}

	rr, err := st.GetRarity(ctx, regionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return model.Rarity{}, false, fmt.Errorf("get rarity: %w", err)
		}

		rr = rc.fallback
		rr.RegionID = regionID
	}

	if rc.cache != nil {
		rc.cache.SetWithTTL(regionID, rr, 1, rc.ttl)
		rc.cache.Wait()
	}

	return rr, false, nil
}

func (rc *rarityCache) close() {
	if rc.cache != nil {
		rc.cache.Close()
	}
}
