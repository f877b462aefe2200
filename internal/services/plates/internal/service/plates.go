package service

import (
	"context"
	"image"
	"io"
	"net/url"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/events"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/photo"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/render"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/google/uuid"
)

// eventPublisher announces registrations to other systems
type eventPublisher interface {
	PublishPlateRegistered(ctx context.Context, e events.PlateRegistered) error
}

// photoStore keeps uploaded plate photos and returns where they can be fetched
type photoStore interface {
	SaveImage(ctx context.Context, img io.Reader) (*url.URL, error)
}

// recognizer turns a cropped plate image into raw text
type recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type RarityConfig struct {
	DefaultTier   int
	DefaultPoints int
	CacheKeys     int64
	CacheCost     int64
	CacheTTL      time.Duration
}

// Plates orchestrates registration, scoring and the read side of the collection game.
type Plates struct {
	store     store.Store
	catalog   *region.Catalog
	index     *region.Index
	renderer  *render.Cache
	rarity    *rarityCache
	excluded  map[string]struct{}
	events    eventPublisher
	photos    photoStore
	ocr       recognizer
	metrics   Metrics
	now       func() time.Time
	newID     func() uuid.UUID
	searchMax int
}

// PlatesOption defines a functional option for configuring the Plates service
type PlatesOption func(*Plates) *Plates

func WithStore(st store.Store) PlatesOption {
	return func(s *Plates) *Plates {
		s.store = st
		return s
	}
}

func WithCatalog(c *region.Catalog) PlatesOption {
	return func(s *Plates) *Plates {
		s.catalog = c
		s.index = region.NewIndex(c)
		return s
	}
}

func WithRenderer(r *render.Cache) PlatesOption {
	return func(s *Plates) *Plates {
		s.renderer = r
		return s
	}
}

func WithRarity(cfg RarityConfig) PlatesOption {
	return func(s *Plates) *Plates {
		s.rarity = newRarityCache(cfg)
		return s
	}
}

// WithExcludedPrefectures names prefectures whose regions cannot be registered.
func WithExcludedPrefectures(prefs ...string) PlatesOption {
	return func(s *Plates) *Plates {
		s.excluded = make(map[string]struct{}, len(prefs))
		for _, p := range prefs {
			s.excluded[p] = struct{}{}
		}
		return s
	}
}

func WithEvents(p eventPublisher) PlatesOption {
	return func(s *Plates) *Plates {
		s.events = p
		return s
	}
}

func WithPhotos(p photoStore) PlatesOption {
	return func(s *Plates) *Plates {
		s.photos = p
		return s
	}
}

func WithRecognizer(r recognizer) PlatesOption {
	return func(s *Plates) *Plates {
		s.ocr = r
		return s
	}
}

func WithMetrics(m Metrics) PlatesOption {
	return func(s *Plates) *Plates {
		s.metrics = m
		return s
	}
}

func WithSearchLimit(n int) PlatesOption {
	return func(s *Plates) *Plates {
		s.searchMax = min(max(n, region.MinLimit), region.DefaultLimit)
		return s
	}
}

func WithClock(now func() time.Time) PlatesOption {
	return func(s *Plates) *Plates {
		s.now = now
		return s
	}
}

func WithIDGenerator(gen func() uuid.UUID) PlatesOption {
	return func(s *Plates) *Plates {
		s.newID = gen
		return s
	}
}

// NewPlates creates the service. Store and catalog are required, the rest
// falls back to disabled or in-process defaults.
func NewPlates(opts ...PlatesOption) *Plates {
	s := &Plates{
		renderer:  render.NewCache(0),
		events:    events.Noop{},
		photos:    photo.NoStore{},
		metrics:   NoopMetrics{},
		now:       time.Now,
		newID:     uuid.New,
		searchMax: region.DefaultLimit,
	}
	for _, opt := range opts {
		s = opt(s)
	}

	if s.store == nil {
		panic("store is required")
	}

	if s.catalog == nil {
		panic("region catalog is required")
	}

	if s.rarity == nil {
		s.rarity = newRarityCache(RarityConfig{DefaultTier: 5, DefaultPoints: 50})
	}

	return s
}

func (s *Plates) isExcluded(r region.Region) bool {
	_, ok := s.excluded[r.Prefecture]
	return ok
}

// Close releases the caches.
func (s *Plates) Close() {
	s.rarity.close()
}
