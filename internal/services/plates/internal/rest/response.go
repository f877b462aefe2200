package rest

import (
	"sort"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/fn"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/progress"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
	"github.com/google/uuid"
)

type plateResponse struct {
	ID          uuid.UUID  `json:"id"`
	RegionID    string     `json:"region_id"`
	ClassNumber string     `json:"class_number"`
	Kana        string     `json:"kana"`
	Serial      string     `json:"serial"`
	Color       string     `json:"color"`
	SVG         string     `json:"svg"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toPlate(p model.Plate) plateResponse {
	return plateResponse{
		ID:          p.ID,
		RegionID:    p.RegionID,
		ClassNumber: p.ClassNumber,
		Kana:        p.Kana,
		Serial:      model.SerialDisplay(p.Serial),
		Color:       string(p.Color),
		SVG:         p.SVG,
		PhotoURL:    p.PhotoURL,
		CapturedAt:  p.CapturedAt,
		CreatedAt:   p.CreatedAt,
	}
}

type recordResponse struct {
	RegionID    string     `json:"region_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Memo        string     `json:"memo"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toRecord(r model.RegionRecord) recordResponse {
	return recordResponse{
		RegionID:    r.RegionID,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		Memo:        r.Memo,
		UpdatedAt:   r.UpdatedAt,
	}
}

type totalsResponse struct {
	Plates  int   `json:"plates"`
	Regions int   `json:"regions"`
	Points  int64 `json:"points"`
}

func toTotals(t model.Totals) totalsResponse {
	return totalsResponse{Plates: t.Plates, Regions: t.Regions, Points: t.Points}
}

type progressResponse struct {
	UserID      string                `json:"user_id"`
	Username    string                `json:"username,omitempty"`
	Prefectures []progress.Prefecture `json:"prefectures"`
	Summary     progress.Summary      `json:"summary"`
	Records     []recordResponse      `json:"records"`
	Totals      totalsResponse        `json:"totals"`
}

func toProgress(p service.Progress) progressResponse {
	records := make([]recordResponse, 0, len(p.Records))
	for _, rec := range p.Records {
		records = append(records, toRecord(rec))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].RegionID < records[j].RegionID })

	return progressResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		Prefectures: p.Prefectures,
		Summary:     p.Summary,
		Records:     records,
		Totals:      toTotals(p.Totals),
	}
}

type serialResponse struct {
	Serial    string    `json:"serial"`
	UserID    string    `json:"user_id"`
	PlateID   uuid.UUID `json:"plate_id"`
	SVG       string    `json:"svg"`
	CreatedAt time.Time `json:"created_at"`
}

func toSerial(e model.SerialEntry) serialResponse {
	return serialResponse{
		Serial:    model.SerialDisplay(e.Serial),
		UserID:    e.UserID,
		PlateID:   e.PlateID,
		SVG:       e.SVG,
		CreatedAt: e.CreatedAt,
	}
}

type profileResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Public   bool   `json:"public"`
}

func toProfile(p model.Profile) profileResponse {
	return profileResponse{UserID: p.UserID, Username: p.Username, Public: p.Public}
}

func toProfiles(ps []model.Profile) []profileResponse {
	return fn.Map(ps, toProfile)
}

type rankResponse struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Plates   int    `json:"plates"`
	Regions  int    `json:"regions"`
	Points   int64  `json:"points"`
}

func toRank(e model.RankEntry) rankResponse {
	return rankResponse{
		Rank:     e.Rank,
		UserID:   e.UserID,
		Username: e.Username,
		Plates:   e.Plates,
		Regions:  e.Regions,
		Points:   e.Points,
	}
}
