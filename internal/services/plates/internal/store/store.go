package store

import (
	"context"
	"errors"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrExists           = errors.New("already exists")
	ErrPermissionDenied = errors.New("permission denied")
)

// Store is the data-access boundary of the plates service.
//
// InsertUserSerial and ClaimGlobalSerial are insert-if-absent primitives: they
// report whether the row was written and never overwrite an existing one.
type Store interface {
	HasPlateInRegion(ctx context.Context, r UserRegionRequest) (bool, error)
	HasUserSerial(ctx context.Context, r UserSerialRequest) (bool, error)
	HasGlobalSerial(ctx context.Context, serial string) (bool, error)

	InsertPlate(ctx context.Context, r InsertPlateRequest) (model.Plate, error)
	UpsertRegionRecord(ctx context.Context, r UserRegionRequest) error
	GetRarity(ctx context.Context, regionID string) (model.Rarity, error)
	InsertScoreEvent(ctx context.Context, r InsertScoreEventRequest) error
	InsertUserSerial(ctx context.Context, r InsertSerialRequest) (bool, error)
	ClaimGlobalSerial(ctx context.Context, r InsertSerialRequest) (bool, error)

	CountUserRegionPlates(ctx context.Context, r UserRegionRequest) (int, error)
	GetUserTotals(ctx context.Context, userID string) (model.Totals, error)
	CountOtherUsersRegionPlates(ctx context.Context, r UserRegionRequest) (int, error)

	GetRegionRecords(ctx context.Context, userID string) (model.RecordMap, error)
	UpdateRegionMemo(ctx context.Context, r UpdateMemoRequest) error
	ClearRegionRecords(ctx context.Context, userID string) (int64, error)

	GetPlates(ctx context.Context, r GetPlatesRequest) ([]model.Plate, error)
	GetPlate(ctx context.Context, id uuid.UUID) (model.Plate, error)
	AttachPhoto(ctx context.Context, r AttachPhotoRequest) error

	GetUserSerials(ctx context.Context, userID string) ([]model.SerialEntry, error)
	GetGlobalSerial(ctx context.Context, serial string) (model.SerialEntry, error)
	GetRanking(ctx context.Context, limit int) ([]model.RankEntry, error)

	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (model.Profile, error)
	SetProfile(ctx context.Context, r SetProfileRequest) (model.Profile, error)
	AddFriend(ctx context.Context, r FriendRequest) error
	GetFriends(ctx context.Context, userID string) ([]model.Profile, error)
	CheckAccess(ctx context.Context, r AccessRequest) error

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
