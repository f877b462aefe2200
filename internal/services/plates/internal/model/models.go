package model

import (
	"time"

	"github.com/google/uuid"
)

type PlateColor string

const (
	ColorWhite  PlateColor = "white"
	ColorYellow PlateColor = "yellow"
	ColorGreen  PlateColor = "green"
	ColorBlack  PlateColor = "black"
)

func (c PlateColor) Valid() bool {
	switch c {
	case ColorWhite, ColorYellow, ColorGreen, ColorBlack:
		return true
	}
	return false
}

type Plate struct {
	ID          uuid.UUID
	UserID      string
	RegionID    string
	ClassNumber string
	Kana        string
	Serial      string
	Color       PlateColor
	SVG         string
	PhotoURL    string
	CapturedAt  *time.Time
	CreatedAt   time.Time
}

// SerialDisplay returns the canonical DD-DD form of a 4-digit serial.
func SerialDisplay(serial string) string {
	if len(serial) != 4 {
		return serial
	}
	return serial[:2] + "-" + serial[2:]
}

type RegionRecord struct {
	UserID      string
	RegionID    string
	Completed   bool
	CompletedAt *time.Time
	Memo        string
	UpdatedAt   time.Time
}

type RecordMap map[string]RegionRecord

// SerialEntry is a serial collection row. The SVG is the snapshot of the plate that first claimed the serial.
type SerialEntry struct {
	Serial    string
	UserID    string
	PlateID   uuid.UUID
	SVG       string
	CreatedAt time.Time
}

type Rarity struct {
	RegionID string
	Tier     int
	Points   int
}

type Totals struct {
	Plates  int
	Regions int
	Points  int64
}

type Profile struct {
	UserID    string
	Username  string
	Public    bool
	CreatedAt time.Time
}

type RankEntry struct {
	Rank     int
	UserID   string
	Username string
	Totals
}
