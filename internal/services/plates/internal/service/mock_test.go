package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/events"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mockStore keeps everything in memory. A non-nil func field replaces the
// in-memory behaviour of that method.
type mockStore struct {
	mu sync.Mutex

	plates      []model.Plate
	records     map[string]model.RecordMap
	rarity      map[string]model.Rarity
	scores      map[uuid.UUID]store.InsertScoreEventRequest
	userSerials map[string]map[string]model.SerialEntry
	global      map[string]model.SerialEntry
	profiles    map[string]model.Profile
	friends     map[string]map[string]bool
	txCalls     int

	HasPlateInRegionFunc            func(ctx context.Context, r store.UserRegionRequest) (bool, error)
	InsertPlateFunc                 func(ctx context.Context, r store.InsertPlateRequest) (model.Plate, error)
	GetRarityFunc                   func(ctx context.Context, regionID string) (model.Rarity, error)
	InsertScoreEventFunc            func(ctx context.Context, r store.InsertScoreEventRequest) error
	InsertUserSerialFunc            func(ctx context.Context, r store.InsertSerialRequest) (bool, error)
	ClaimGlobalSerialFunc           func(ctx context.Context, r store.InsertSerialRequest) (bool, error)
	GetUserTotalsFunc               func(ctx context.Context, userID string) (model.Totals, error)
	CountOtherUsersRegionPlatesFunc func(ctx context.Context, r store.UserRegionRequest) (int, error)
	CheckAccessFunc                 func(ctx context.Context, r store.AccessRequest) error
}

func newMockStore() *mockStore {
	return &mockStore{
		records:     make(map[string]model.RecordMap),
		rarity:      make(map[string]model.Rarity),
		scores:      make(map[uuid.UUID]store.InsertScoreEventRequest),
		userSerials: make(map[string]map[string]model.SerialEntry),
		global:      make(map[string]model.SerialEntry),
		profiles:    make(map[string]model.Profile),
		friends:     make(map[string]map[string]bool),
	}
}

func (m *mockStore) HasPlateInRegion(ctx context.Context, r store.UserRegionRequest) (bool, error) {
	if m.HasPlateInRegionFunc != nil {
		return m.HasPlateInRegionFunc(ctx, r)
	}
	n, _ := m.CountUserRegionPlates(ctx, r)
	return n > 0, nil
}

func (m *mockStore) HasUserSerial(_ context.Context, r store.UserSerialRequest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.userSerials[r.UserID][r.Serial]
	return ok, nil
}

func (m *mockStore) HasGlobalSerial(_ context.Context, serial string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.global[serial]
	return ok, nil
}

func (m *mockStore) InsertPlate(ctx context.Context, r store.InsertPlateRequest) (model.Plate, error) {
	if m.InsertPlateFunc != nil {
		return m.InsertPlateFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plates {
		if p.ID == r.ID {
			return model.Plate{}, store.ErrExists
		}
	}
	p := model.Plate{
		ID: r.ID, UserID: r.UserID, RegionID: r.RegionID, ClassNumber: r.ClassNumber,
		Kana: r.Kana, Serial: r.Serial, Color: r.Color, SVG: r.SVG,
		CapturedAt: r.CapturedAt, CreatedAt: time.Now(),
	}
	m.plates = append(m.plates, p)
	return p, nil
}

func (m *mockStore) UpsertRegionRecord(_ context.Context, r store.UserRegionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[r.UserID] == nil {
		m.records[r.UserID] = make(model.RecordMap)
	}
	rec := m.records[r.UserID][r.RegionID]
	rec.UserID, rec.RegionID, rec.Completed = r.UserID, r.RegionID, true
	if rec.CompletedAt == nil {
		now := time.Now()
		rec.CompletedAt = &now
	}
	m.records[r.UserID][r.RegionID] = rec
	return nil
}

func (m *mockStore) GetRarity(ctx context.Context, regionID string) (model.Rarity, error) {
	if m.GetRarityFunc != nil {
		return m.GetRarityFunc(ctx, regionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rr, ok := m.rarity[regionID]
	if !ok {
		return model.Rarity{}, store.ErrNotFound
	}
	return rr, nil
}

func (m *mockStore) InsertScoreEvent(ctx context.Context, r store.InsertScoreEventRequest) error {
	if m.InsertScoreEventFunc != nil {
		return m.InsertScoreEventFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scores[r.PlateID]; ok {
		return store.ErrExists
	}
	m.scores[r.PlateID] = r
	return nil
}

func (m *mockStore) InsertUserSerial(ctx context.Context, r store.InsertSerialRequest) (bool, error) {
	if m.InsertUserSerialFunc != nil {
		return m.InsertUserSerialFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userSerials[r.UserID] == nil {
		m.userSerials[r.UserID] = make(map[string]model.SerialEntry)
	}
	if _, ok := m.userSerials[r.UserID][r.Serial]; ok {
		return false, nil
	}
	m.userSerials[r.UserID][r.Serial] = model.SerialEntry{Serial: r.Serial, UserID: r.UserID, PlateID: r.PlateID, SVG: r.SVG}
	return true, nil
}

func (m *mockStore) ClaimGlobalSerial(ctx context.Context, r store.InsertSerialRequest) (bool, error) {
	if m.ClaimGlobalSerialFunc != nil {
		return m.ClaimGlobalSerialFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.global[r.Serial]; ok {
		return false, nil
	}
	m.global[r.Serial] = model.SerialEntry{Serial: r.Serial, UserID: r.UserID, PlateID: r.PlateID, SVG: r.SVG}
	return true, nil
}

func (m *mockStore) CountUserRegionPlates(_ context.Context, r store.UserRegionRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.plates {
		if p.UserID == r.UserID && p.RegionID == r.RegionID {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) GetUserTotals(ctx context.Context, userID string) (model.Totals, error) {
	if m.GetUserTotalsFunc != nil {
		return m.GetUserTotalsFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var t model.Totals
	regions := map[string]bool{}
	for _, p := range m.plates {
		if p.UserID == userID {
			t.Plates++
			regions[p.RegionID] = true
		}
	}
	for _, e := range m.scores {
		if e.UserID == userID {
			t.Points += int64(e.Points)
		}
	}
	t.Regions = len(regions)
	return t, nil
}

func (m *mockStore) CountOtherUsersRegionPlates(ctx context.Context, r store.UserRegionRequest) (int, error) {
	if m.CountOtherUsersRegionPlatesFunc != nil {
		return m.CountOtherUsersRegionPlatesFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.plates {
		if p.UserID != r.UserID && p.RegionID == r.RegionID {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) GetRegionRecords(_ context.Context, userID string) (model.RecordMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(model.RecordMap)
	for k, v := range m.records[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) UpdateRegionMemo(_ context.Context, r store.UpdateMemoRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[r.UserID] == nil {
		m.records[r.UserID] = make(model.RecordMap)
	}
	rec := m.records[r.UserID][r.RegionID]
	rec.UserID, rec.RegionID, rec.Memo = r.UserID, r.RegionID, r.Memo
	m.records[r.UserID][r.RegionID] = rec
	return nil
}

func (m *mockStore) ClearRegionRecords(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.records[userID]))
	delete(m.records, userID)
	return n, nil
}

func (m *mockStore) GetPlates(_ context.Context, r store.GetPlatesRequest) ([]model.Plate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Plate{}
	for _, p := range m.plates {
		if p.UserID == r.UserID && (r.RegionID == "" || p.RegionID == r.RegionID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) GetPlate(_ context.Context, id uuid.UUID) (model.Plate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plates {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Plate{}, store.ErrNotFound
}

func (m *mockStore) AttachPhoto(_ context.Context, r store.AttachPhotoRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plates {
		if p.ID == r.PlateID && p.UserID == r.UserID {
			m.plates[i].PhotoURL = r.PhotoURL
			m.plates[i].CapturedAt = r.CapturedAt
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockStore) GetUserSerials(_ context.Context, userID string) ([]model.SerialEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.SerialEntry{}
	for _, e := range m.userSerials[userID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out, nil
}

func (m *mockStore) GetGlobalSerial(_ context.Context, serial string) (model.SerialEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.global[serial]
	if !ok {
		return e, store.ErrNotFound
	}
	return e, nil
}

func (m *mockStore) GetRanking(_ context.Context, limit int) ([]model.RankEntry, error) {
	return []model.RankEntry{}, nil
}

func (m *mockStore) GetProfile(_ context.Context, userID string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return p, store.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) GetProfileByUsername(_ context.Context, username string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Username != "" && p.Username == username {
			return p, nil
		}
	}
	return model.Profile{}, store.ErrNotFound
}

func (m *mockStore) SetProfile(_ context.Context, r store.SetProfileRequest) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[r.UserID]
	p.UserID = r.UserID
	if r.Username != nil {
		for uid, other := range m.profiles {
			if uid != r.UserID && other.Username == *r.Username {
				return model.Profile{}, store.ErrExists
			}
		}
		p.Username = *r.Username
	}
	if r.Public != nil {
		p.Public = *r.Public
	}
	m.profiles[r.UserID] = p
	return p, nil
}

func (m *mockStore) AddFriend(_ context.Context, r store.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.friends[r.UserID] == nil {
		m.friends[r.UserID] = make(map[string]bool)
	}
	m.friends[r.UserID][r.FriendID] = true
	return nil
}

func (m *mockStore) GetFriends(_ context.Context, userID string) ([]model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Profile{}
	for fid := range m.friends[userID] {
		out = append(out, m.profiles[fid])
	}
	return out, nil
}

func (m *mockStore) CheckAccess(ctx context.Context, r store.AccessRequest) error {
	if m.CheckAccessFunc != nil {
		return m.CheckAccessFunc(ctx, r)
	}
	if r.ViewerID == r.OwnerID {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[r.OwnerID]
	if !ok {
		return store.ErrNotFound
	}
	if p.Public || m.friends[r.OwnerID][r.ViewerID] {
		return nil
	}
	return store.ErrPermissionDenied
}

func (m *mockStore) WithinTx(_ context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()
	return fn(m)
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, e events.PlateRegistered) error
	published   []events.PlateRegistered
}

func (p *mockPublisher) PublishPlateRegistered(ctx context.Context, e events.PlateRegistered) error {
	p.published = append(p.published, e)
	if p.PublishFunc != nil {
		return p.PublishFunc(ctx, e)
	}
	return nil
}

func testCatalog(t *testing.T) *region.Catalog {
	t.Helper()

	c, err := region.Load(nil)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, st store.Store, opts ...PlatesOption) *Plates {
	t.Helper()

	base := []PlatesOption{
		WithStore(st),
		WithCatalog(testCatalog(t)),
		WithExcludedPrefectures("沖縄県"),
		WithRarity(RarityConfig{DefaultTier: 5, DefaultPoints: 50}),
	}
	s := NewPlates(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s
}
