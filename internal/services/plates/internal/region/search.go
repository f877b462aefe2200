package region

import (
	"sort"
	"strings"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/kana"
)

// Search results are capped at a fixed size between MinLimit and DefaultLimit.
const (
	MinLimit     = 8
	DefaultLimit = 10
)

type MatchMode int

const (
	// MatchPrefix admits regions whose name or reading starts with the query.
	MatchPrefix MatchMode = iota
	// MatchLoose also admits substring hits on name, reading or prefecture.
	MatchLoose
)

type tier int

const (
	tierReadingPrefix tier = iota
	tierNamePrefix
	tierSubstring
	tierNone
)

type SearchOptions struct {
	Mode  MatchMode
	Limit int
}

type indexEntry struct {
	region     Region
	name       string
	reading    string
	prefecture string
}

// Index holds the normalised search keys of a catalog.
type Index struct {
	entries []indexEntry
}

func NewIndex(c *Catalog) *Index {
	ix := &Index{entries: make([]indexEntry, 0, c.Len())}
	for _, r := range c.All() {
		ix.entries = append(ix.entries, indexEntry{
			region:     r,
			name:       kana.Normalize(r.Name),
			reading:    kana.Normalize(r.Reading),
			prefecture: kana.Normalize(r.Prefecture),
		})
	}
	return ix
}

func (e indexEntry) match(q string, mode MatchMode) tier {
	switch {
	case e.reading != "" && strings.HasPrefix(e.reading, q):
		return tierReadingPrefix
	case strings.HasPrefix(e.name, q):
		return tierNamePrefix
	case mode == MatchLoose && (strings.Contains(e.name, q) ||
		strings.Contains(e.reading, q) ||
		strings.Contains(e.prefecture, q)):
		return tierSubstring
	}
	return tierNone
}

// Search returns at most opts.Limit regions ranked by match quality and then display order.
// The limit never exceeds DefaultLimit. An empty query matches nothing.
func (ix *Index) Search(query string, opts SearchOptions) []Region {
	q := kana.Normalize(query)
	if q == "" {
		return []Region{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, DefaultLimit)

	type hit struct {
		tier   tier
		region Region
	}

	var hits []hit
	for _, e := range ix.entries {
		if t := e.match(q, opts.Mode); t != tierNone {
			hits = append(hits, hit{tier: t, region: e.region})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].tier != hits[j].tier {
			return hits[i].tier < hits[j].tier
		}
		return less(hits[i].region, hits[j].region)
	})

	out := make([]Region, 0, min(limit, len(hits)))
	for _, h := range hits[:min(limit, len(hits))] {
		out = append(out, h.region)
	}
	return out
}
