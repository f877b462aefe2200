package region

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sort"

	json "github.com/goccy/go-json"
)

//go:embed regions.json
var catalogJSON []byte

type Region struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Prefecture      string `json:"prefecture"`
	Reading         string `json:"reading,omitempty"`
	PrefectureOrder int    `json:"prefecture_order"`
	Order           int    `json:"order"`
}

// MakeID builds the region identifier from prefecture and place name.
func MakeID(prefecture, name string) string {
	return prefecture + ":" + name
}

// Reader derives a phonetic reading for place names that ship without one.
type Reader interface {
	Reading(text string) (string, bool)
}

// Catalog is the immutable region reference table.
type Catalog struct {
	regions     []Region
	byID        map[string]int
	prefectures []string
}

type catalogFile struct {
	Prefectures []struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Regions []struct {
			Name    string `json:"name"`
			Reading string `json:"reading"`
		} `json:"regions"`
	} `json:"prefectures"`
}

// Load parses the embedded catalog. rd may be nil.
func Load(rd Reader) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(catalogJSON, &f); err != nil {
		return nil, fmt.Errorf("decode region catalog: %w", err)
	}

	var regions []Region
	for _, p := range f.Prefectures {
		for i, r := range p.Regions {
			regions = append(regions, Region{
				ID:              MakeID(p.Name, r.Name),
				Name:            r.Name,
				Prefecture:      p.Name,
				Reading:         r.Reading,
				PrefectureOrder: p.Code,
				Order:           i + 1,
			})
		}
	}

	return NewCatalog(regions, rd)
}

// NewCatalog sorts regions into display order and fills missing readings with rd.
func NewCatalog(regions []Region, rd Reader) (*Catalog, error) {
	c := &Catalog{
		regions: make([]Region, len(regions)),
		byID:    make(map[string]int, len(regions)),
	}
	copy(c.regions, regions)

	sort.SliceStable(c.regions, func(i, j int) bool {
		return less(c.regions[i], c.regions[j])
	})

	filled := 0
	for i := range c.regions {
		r := &c.regions[i]
		if r.ID == "" {
			r.ID = MakeID(r.Prefecture, r.Name)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate region %q", r.ID)
		}
		c.byID[r.ID] = i

		if r.Reading == "" && rd != nil {
			if reading, ok := rd.Reading(r.Name); ok {
				r.Reading = reading
				filled++
			}
		}

		if n := len(c.prefectures); n == 0 || c.prefectures[n-1] != r.Prefecture {
			c.prefectures = append(c.prefectures, r.Prefecture)
		}
	}

	if filled > 0 {
		slog.Info("derived region readings", "count", filled)
	}

	return c, nil
}

func less(a, b Region) bool {
	if a.PrefectureOrder != b.PrefectureOrder {
		return a.PrefectureOrder < b.PrefectureOrder
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.Name < b.Name
}

func (c *Catalog) Get(id string) (Region, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Region{}, false
	}
	return c.regions[i], true
}

// All returns every region in display order.
func (c *Catalog) All() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

func (c *Catalog) Prefectures() []string {
	out := make([]string, len(c.prefectures))
	copy(out, c.prefectures)
	return out
}

func (c *Catalog) InPrefecture(prefecture string) []Region {
	var out []Region
	for _, r := range c.regions {
		if r.Prefecture == prefecture {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.regions)
}
