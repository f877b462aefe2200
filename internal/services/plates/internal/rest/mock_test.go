package rest

import (
	"context"
	"image"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/prefs"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
)

type mockPlatesService struct {
	SearchRegionsFunc   func(query string, mode region.MatchMode, limit int) []region.Region
	GetRegionFunc       func(ctx context.Context, userID, regionID string) (service.RegionDetail, error)
	ListPlatesFunc      func(ctx context.Context, userID, regionID string) ([]model.Plate, error)
	RegisterPlateFunc   func(ctx context.Context, r service.RegisterPlateRequest) (service.RegisterPlateResult, error)
	AttachPhotoFunc     func(ctx context.Context, r service.AttachPhotoRequest) (model.Plate, error)
	RenderPreviewFunc   func(r service.PreviewRequest) string
	ReadPlateFunc       func(ctx context.Context, img image.Image, aspect float64) (service.ReadPlateResult, error)
	MeFunc              func(ctx context.Context, userID string) (service.Me, error)
	UpdateProfileFunc   func(ctx context.Context, r service.UpdateProfileRequest) (model.Profile, error)
	GetProgressFunc     func(ctx context.Context, viewerID, ownerID string) (service.Progress, error)
	GetUserProgressFunc func(ctx context.Context, viewerID, username string) (service.Progress, error)
	UpdateMemoFunc      func(ctx context.Context, userID, regionID, memo string) error
	ClearRecordsFunc    func(ctx context.Context, userID string) (int64, error)
	GetCollectionFunc   func(ctx context.Context, userID string) ([]model.SerialEntry, error)
	GetGlobalSerialFunc func(ctx context.Context, serial string) (model.SerialEntry, error)
	RankingFunc         func(ctx context.Context, limit int) ([]model.RankEntry, error)
	AddFriendFunc       func(ctx context.Context, userID, username string) (model.Profile, error)
	ListFriendsFunc     func(ctx context.Context, userID string) ([]model.Profile, error)
}

func (m *mockPlatesService) SearchRegions(query string, mode region.MatchMode, limit int) []region.Region {
	return m.SearchRegionsFunc(query, mode, limit)
}

func (m *mockPlatesService) GetRegion(ctx context.Context, userID, regionID string) (service.RegionDetail, error) {
	return m.GetRegionFunc(ctx, userID, regionID)
}

func (m *mockPlatesService) ListPlates(ctx context.Context, userID, regionID string) ([]model.Plate, error) {
	return m.ListPlatesFunc(ctx, userID, regionID)
}

func (m *mockPlatesService) RegisterPlate(ctx context.Context, r service.RegisterPlateRequest) (service.RegisterPlateResult, error) {
	return m.RegisterPlateFunc(ctx, r)
}

func (m *mockPlatesService) AttachPhoto(ctx context.Context, r service.AttachPhotoRequest) (model.Plate, error) {
	return m.AttachPhotoFunc(ctx, r)
}

func (m *mockPlatesService) RenderPreview(r service.PreviewRequest) string {
	return m.RenderPreviewFunc(r)
}

func (m *mockPlatesService) ReadPlate(ctx context.Context, img image.Image, aspect float64) (service.ReadPlateResult, error) {
	return m.ReadPlateFunc(ctx, img, aspect)
}

func (m *mockPlatesService) Me(ctx context.Context, userID string) (service.Me, error) {
	return m.MeFunc(ctx, userID)
}

func (m *mockPlatesService) UpdateProfile(ctx context.Context, r service.UpdateProfileRequest) (model.Profile, error) {
	return m.UpdateProfileFunc(ctx, r)
}

func (m *mockPlatesService) GetProgress(ctx context.Context, viewerID, ownerID string) (service.Progress, error) {
	return m.GetProgressFunc(ctx, viewerID, ownerID)
}

func (m *mockPlatesService) GetUserProgress(ctx context.Context, viewerID, username string) (service.Progress, error) {
	return m.GetUserProgressFunc(ctx, viewerID, username)
}

func (m *mockPlatesService) UpdateMemo(ctx context.Context, userID, regionID, memo string) error {
	return m.UpdateMemoFunc(ctx, userID, regionID, memo)
}

func (m *mockPlatesService) ClearRecords(ctx context.Context, userID string) (int64, error) {
	return m.ClearRecordsFunc(ctx, userID)
}

func (m *mockPlatesService) GetCollection(ctx context.Context, userID string) ([]model.SerialEntry, error) {
	return m.GetCollectionFunc(ctx, userID)
}

func (m *mockPlatesService) GetGlobalSerial(ctx context.Context, serial string) (model.SerialEntry, error) {
	return m.GetGlobalSerialFunc(ctx, serial)
}

func (m *mockPlatesService) Ranking(ctx context.Context, limit int) ([]model.RankEntry, error) {
	return m.RankingFunc(ctx, limit)
}

func (m *mockPlatesService) AddFriend(ctx context.Context, userID, username string) (model.Profile, error) {
	return m.AddFriendFunc(ctx, userID, username)
}

func (m *mockPlatesService) ListFriends(ctx context.Context, userID string) ([]model.Profile, error) {
	return m.ListFriendsFunc(ctx, userID)
}

type mockThemes struct {
	themes map[string]prefs.Theme
}

func (m *mockThemes) Theme(_ context.Context, userID string) (prefs.Theme, error) {
	if t, ok := m.themes[userID]; ok {
		return t, nil
	}
	return prefs.ThemeAuto, nil
}

func (m *mockThemes) SetTheme(_ context.Context, userID string, t prefs.Theme) error {
	m.themes[userID] = t
	return nil
}
