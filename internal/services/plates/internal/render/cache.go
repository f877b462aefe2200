package render

import (
	"strings"

	"github.com/coocood/freecache"
)

// Cache memoises Plate. A zero size disables caching.
type Cache struct {
	cache *freecache.Cache
}

func NewCache(sizeBytes int) *Cache {
	if sizeBytes <= 0 {
		return &Cache{}
	}
	return &Cache{cache: freecache.NewCache(sizeBytes)}
}

func (f Fields) key() []byte {
	return []byte(strings.Join([]string{f.RegionName, f.ClassNumber, f.Kana, f.Serial, string(f.Color)}, "\x00"))
}

func (c *Cache) Plate(f Fields) string {
	if c.cache == nil {
		return Plate(f)
	}

	key := f.key()
	if v, err := c.cache.Get(key); err == nil {
		return string(v)
	}

	svg := Plate(f)
	_ = c.cache.Set(key, []byte(svg), 0)
	return svg
}

func (c *Cache) HitRate() float64 {
	if c.cache == nil {
		return 0
	}
	return c.cache.HitRate()
}
