// Package progress derives per-prefecture completion from region records.
package progress

import (
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
)

type Status string

const (
	StatusNone     Status = "none"
	StatusPartial  Status = "partial"
	StatusComplete Status = "complete"
)

type Prefecture struct {
	Name   string `json:"name"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Status Status `json:"status"`
}

type Summary struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func statusOf(done, total int) Status {
	switch {
	case done == 0:
		return StatusNone
	case done == total:
		return StatusComplete
	default:
		return StatusPartial
	}
}

// Aggregate recomputes every prefecture from scratch. Prefectures keep the order in which
// they first appear in regions.
func Aggregate(regions []region.Region, records model.RecordMap) []Prefecture {
	var (
		out   []Prefecture
		index = make(map[string]int)
	)

	for _, r := range regions {
		i, ok := index[r.Prefecture]
		if !ok {
			i = len(out)
			index[r.Prefecture] = i
			out = append(out, Prefecture{Name: r.Prefecture})
		}

		out[i].Total++
		if rec, found := records[r.ID]; found && rec.Completed {
			out[i].Done++
		}
	}

	for i := range out {
		out[i].Status = statusOf(out[i].Done, out[i].Total)
	}
	return out
}

func Summarize(prefs []Prefecture) Summary {
	var s Summary
	for _, p := range prefs {
		s.Done += p.Done
		s.Total += p.Total
	}
	return s
}
