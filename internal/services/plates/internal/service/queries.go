package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/progress"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
)

const (
	DefaultRankingLimit = 20
	MaxRankingLimit     = 100
)

// SearchRegions ranks regions for a free-text query. The limit is capped at the
// configured size, which a non-positive limit also selects.
func (s *Plates) SearchRegions(query string, mode region.MatchMode, limit int) []region.Region {
	if limit <= 0 || limit > s.searchMax {
		limit = s.searchMax
	}
	return s.index.Search(query, region.SearchOptions{Mode: mode, Limit: limit})
}

type RegionDetail struct {
	Region   region.Region
	Record   *model.RegionRecord
	Excluded bool
}

// GetRegion returns a catalog region together with the caller's record for it.
func (s *Plates) GetRegion(ctx context.Context, userID, regionID string) (RegionDetail, error) {
	reg, ok := s.catalog.Get(regionID)
	if !ok {
		return RegionDetail{}, regionNotFound(regionID)
	}

	records, err := s.store.GetRegionRecords(ctx, userID)
	if err != nil {
		return RegionDetail{}, fmt.Errorf("get region records: %w", err)
	}

	d := RegionDetail{Region: reg, Excluded: s.isExcluded(reg)}
	if rec, found := records[reg.ID]; found {
		d.Record = &rec
	}

	return d, nil
}

type Progress struct {
	UserID      string
	Username    string
	Prefectures []progress.Prefecture
	Summary     progress.Summary
	Records     model.RecordMap
	Totals      model.Totals
}

// GetProgress returns the completion map of owner as seen by viewer.
func (s *Plates) GetProgress(ctx context.Context, viewerID, ownerID string) (Progress, error) {
	if err := s.store.CheckAccess(ctx, store.AccessRequest{ViewerID: viewerID, OwnerID: ownerID}); err != nil {
		return Progress{}, accessError(err, viewerID, ownerID)
	}

	records, err := s.store.GetRegionRecords(ctx, ownerID)
	if err != nil {
		return Progress{}, fmt.Errorf("get region records: %w", err)
	}

	totals, err := s.store.GetUserTotals(ctx, ownerID)
	if err != nil {
		return Progress{}, fmt.Errorf("get totals: %w", err)
	}

	prefs := progress.Aggregate(s.catalog.All(), records)
	return Progress{
		UserID:      ownerID,
		Prefectures: prefs,
		Summary:     progress.Summarize(prefs),
		Records:     records,
		Totals:      totals,
	}, nil
}

// GetUserProgress resolves username and returns its progress if viewer may see it.
func (s *Plates) GetUserProgress(ctx context.Context, viewerID, username string) (Progress, error) {
	owner, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Progress{}, serr.NewServiceError(err, http.StatusNotFound, "user not found").
				WithCode(serr.CodeNotFound).
				With("username", username)
		}
		return Progress{}, fmt.Errorf("get profile: %w", err)
	}

	p, err := s.GetProgress(ctx, viewerID, owner.UserID)
	if err != nil {
		return Progress{}, err
	}

	p.Username = owner.Username
	return p, nil
}

// ListPlates returns the caller's plates, optionally narrowed to one region.
func (s *Plates) ListPlates(ctx context.Context, userID, regionID string) ([]model.Plate, error) {
	if regionID != "" {
		if _, ok := s.catalog.Get(regionID); !ok {
			return nil, regionNotFound(regionID)
		}
	}

	plates, err := s.store.GetPlates(ctx, store.GetPlatesRequest{UserID: userID, RegionID: regionID})
	if err != nil {
		return nil, fmt.Errorf("get plates: %w", err)
	}

	return plates, nil
}

// GetCollection returns the caller's serial collection ordered by serial.
func (s *Plates) GetCollection(ctx context.Context, userID string) ([]model.SerialEntry, error) {
	entries, err := s.store.GetUserSerials(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user serials: %w", err)
	}

	return entries, nil
}

// GetGlobalSerial returns the permanent holder of a serial.
func (s *Plates) GetGlobalSerial(ctx context.Context, serial string) (model.SerialEntry, error) {
	digits, err := NormalizeSerial(serial)
	if err != nil {
		return model.SerialEntry{}, validationError(err, err.Error(), "serial", serial)
	}

	e, err := s.store.GetGlobalSerial(ctx, digits)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return e, serr.NewServiceError(err, http.StatusNotFound, "serial has not been claimed").
				WithCode(serr.CodeNotFound).
				With("serial", digits)
		}
		return e, fmt.Errorf("get global serial: %w", err)
	}

	return e, nil
}

// Ranking returns the leaderboard. The limit is clamped to [1, MaxRankingLimit].
func (s *Plates) Ranking(ctx context.Context, limit int) ([]model.RankEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	limit = min(limit, MaxRankingLimit)

	ranking, err := s.store.GetRanking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}

	return ranking, nil
}
