package store

import (
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/google/uuid"
)

type UserRegionRequest struct {
	UserID   string
	RegionID string
}

type UserSerialRequest struct {
	UserID string
	Serial string
}

type InsertPlateRequest struct {
	ID          uuid.UUID
	UserID      string
	RegionID    string
	ClassNumber string
	Kana        string
	Serial      string
	Color       model.PlateColor
	SVG         string
	CapturedAt  *time.Time
}

type InsertScoreEventRequest struct {
	UserID   string
	PlateID  uuid.UUID
	RegionID string
	Tier     int
	Points   int
}

type InsertSerialRequest struct {
	UserID  string
	Serial  string
	PlateID uuid.UUID
	SVG     string
}

type UpdateMemoRequest struct {
	UserID   string
	RegionID string
	Memo     string
}

type GetPlatesRequest struct {
	UserID string
	// RegionID narrows the result to one region when set.
	RegionID string
}

type AttachPhotoRequest struct {
	UserID     string
	PlateID    uuid.UUID
	PhotoURL   string
	CapturedAt *time.Time
}

// SetProfileRequest updates only the fields that are non-nil.
type SetProfileRequest struct {
	UserID   string
	Username *string
	Public   *bool
}

type FriendRequest struct {
	UserID   string
	FriendID string
}

type AccessRequest struct {
	ViewerID string
	OwnerID  string
}
