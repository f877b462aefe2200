package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/events"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/render"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/google/uuid"
)

type RegisterPlateRequest struct {
	UserID string
	// PlateID is optional. A zero value makes the service generate one.
	PlateID     uuid.UUID
	RegionID    string
	ClassNumber string
	Kana        string
	Serial      string
	Color       model.PlateColor
	// Photos are attached afterwards through AttachPhoto.
	CapturedAt *time.Time
}

type RegisterPlateResult struct {
	PlateID                     uuid.UUID `json:"plate_id"`
	RegionID                    string    `json:"region_id"`
	SVG                         string    `json:"svg"`
	RegionAlreadyRegistered     bool      `json:"region_already_registered"`
	RegionPlateIndex            int       `json:"region_plate_index"`
	TotalPlates                 int       `json:"total_plates"`
	TotalRegions                int       `json:"total_regions"`
	TotalPoints                 int64     `json:"total_points"`
	PlatePoints                 int       `json:"plate_points"`
	RarityTier                  int       `json:"rarity_tier"`
	SerialAlreadyInMyCollection bool      `json:"serial_already_in_my_collection"`
	SerialAlreadyGlobal         bool      `json:"serial_already_global"`
	// SerialMyAddedNow, SerialGlobalAddedNow and RegionRegisteredByOthers
	// are nil when the step behind them failed.
	SerialMyAddedNow         *bool `json:"serial_my_added_now"`
	SerialGlobalAddedNow     *bool `json:"serial_global_added_now"`
	RegionRegisteredByOthers *bool `json:"region_registered_by_others"`
	AggregatesAvailable      bool  `json:"aggregates_available"`
}

type snapshot struct {
	regionRegistered bool
	serialMine       bool
	serialGlobal     bool
}

// RegisterPlate records a sighting and reports what it changed.
//
// The plate, its region record and its score event are written in one
// transaction. Serial collections, aggregates and the cross-user signal are
// best-effort: a failure there is logged and degrades the result instead of
// failing the call. Aggregates are re-read after the writes and are not
// isolated from concurrent registrations of the same user.
func (s *Plates) RegisterPlate(ctx context.Context, r RegisterPlateRequest) (RegisterPlateResult, error) {
	form, err := validatePlate(r)
	if err != nil {
		return RegisterPlateResult{}, err
	}

	reg, ok := s.catalog.Get(form.RegionID)
	if !ok {
		return RegisterPlateResult{}, serr.NewServiceError(store.ErrNotFound, http.StatusNotFound, "region not found").
			WithCode(serr.CodeNotFound).
			With("region_id", form.RegionID)
	}

	if s.isExcluded(reg) {
		return RegisterPlateResult{}, serr.NewServiceError(nil, http.StatusUnprocessableEntity, "plates from %s cannot be registered", reg.Prefecture).
			WithCode(serr.CodeRegionExcluded).
			With("region_id", reg.ID)
	}

	before, err := s.snapshot(ctx, r.UserID, reg.ID, form.Serial)
	if err != nil {
		return RegisterPlateResult{}, fmt.Errorf("read state before registration: %w", err)
	}

	svg := s.renderer.Plate(render.Fields{
		RegionName:  reg.Name,
		ClassNumber: form.ClassNumber,
		Kana:        form.Kana,
		Serial:      model.SerialDisplay(form.Serial),
		Color:       model.PlateColor(form.Color),
	})

	plateID := r.PlateID
	if plateID == uuid.Nil {
		plateID = s.newID()
	}

	var rarity model.Rarity
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.InsertPlate(ctx, store.InsertPlateRequest{
			ID:          plateID,
			UserID:      r.UserID,
			RegionID:    reg.ID,
			ClassNumber: form.ClassNumber,
			Kana:        form.Kana,
			Serial:      form.Serial,
			Color:       model.PlateColor(form.Color),
			SVG:         svg,
			CapturedAt:  r.CapturedAt,
		}); err != nil {
			if errors.Is(err, store.ErrExists) {
				return serr.NewServiceError(err, http.StatusConflict, "plate already exists").
					WithCode(serr.CodeConflict).
					With("plate_id", plateID.String())
			}

			return fmt.Errorf("insert plate: %w", err)
		}

		if err := tx.UpsertRegionRecord(ctx, store.UserRegionRequest{UserID: r.UserID, RegionID: reg.ID}); err != nil {
			return fmt.Errorf("mark region completed: %w", err)
		}

		rr, hit, err := s.rarity.get(ctx, tx, reg.ID)
		if err != nil {
			return err
		}
		s.metrics.RarityLookup(hit)
		rarity = rr

		if err := tx.InsertScoreEvent(ctx, store.InsertScoreEventRequest{
			UserID:   r.UserID,
			PlateID:  plateID,
			RegionID: reg.ID,
			Tier:     rarity.Tier,
			Points:   rarity.Points,
		}); err != nil {
			return fmt.Errorf("insert score event: %w", err)
		}

		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return RegisterPlateResult{}, se
		}
		return RegisterPlateResult{}, fmt.Errorf("register plate: %w", err)
	}

	res := RegisterPlateResult{
		PlateID:                     plateID,
		RegionID:                    reg.ID,
		SVG:                         svg,
		RegionAlreadyRegistered:     before.regionRegistered,
		PlatePoints:                 rarity.Points,
		RarityTier:                  rarity.Tier,
		SerialAlreadyInMyCollection: before.serialMine,
		SerialAlreadyGlobal:         before.serialGlobal,
	}

	log := slog.With("user_id", r.UserID, "plate_id", plateID, "region_id", reg.ID, "serial", form.Serial)
	serialReq := store.InsertSerialRequest{UserID: r.UserID, Serial: form.Serial, PlateID: plateID, SVG: svg}

	if before.serialMine {
		res.SerialMyAddedNow = new(bool)
	} else if added, err := s.store.InsertUserSerial(ctx, serialReq); err != nil {
		log.Warn("add serial to user collection", "error", err)
		s.metrics.StepFailed("user_serial")
	} else {
		res.SerialMyAddedNow = &added
		if !added {
			// another registration of the same user won the insert
			res.SerialAlreadyInMyCollection = true
		}
	}

	claimed, err := s.store.ClaimGlobalSerial(ctx, serialReq)
	if err != nil {
		log.Warn("claim global serial", "error", err)
		s.metrics.StepFailed("global_serial")
	} else {
		res.SerialGlobalAddedNow = &claimed
		res.SerialAlreadyGlobal = before.serialGlobal || !claimed
	}

	if err := s.aggregates(ctx, r.UserID, reg.ID, &res); err != nil {
		log.Warn("read aggregates after registration", "error", err)
		s.metrics.StepFailed("aggregates")
	} else {
		res.AggregatesAvailable = true
	}

	others, err := s.store.CountOtherUsersRegionPlates(ctx, store.UserRegionRequest{UserID: r.UserID, RegionID: reg.ID})
	if err != nil {
		log.Warn("count other users in region", "error", err)
		s.metrics.StepFailed("region_others")
	} else {
		byOthers := others > 0
		res.RegionRegisteredByOthers = &byOthers
	}

	s.metrics.PlateRegistered(rarity.Points)
	if err := s.events.PublishPlateRegistered(ctx, events.PlateRegistered{
		PlateID:      plateID,
		UserID:       r.UserID,
		RegionID:     reg.ID,
		Serial:       form.Serial,
		Points:       rarity.Points,
		GlobalClaim:  res.SerialGlobalAddedNow != nil && *res.SerialGlobalAddedNow,
		RegisteredAt: s.now().UTC(),
	}); err != nil {
		log.Warn("publish plate registered", "error", err)
		s.metrics.StepFailed("publish")
	}

	log.Info("plate registered", "points", rarity.Points, "region_index", res.RegionPlateIndex)
	return res, nil
}

func (s *Plates) snapshot(ctx context.Context, userID, regionID, serial string) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)

	snap.regionRegistered, err = s.store.HasPlateInRegion(ctx, store.UserRegionRequest{UserID: userID, RegionID: regionID})
	if err != nil {
		return snap, fmt.Errorf("has plate in region: %w", err)
	}

	snap.serialMine, err = s.store.HasUserSerial(ctx, store.UserSerialRequest{UserID: userID, Serial: serial})
	if err != nil {
		return snap, fmt.Errorf("has user serial: %w", err)
	}

	snap.serialGlobal, err = s.store.HasGlobalSerial(ctx, serial)
	if err != nil {
		return snap, fmt.Errorf("has global serial: %w", err)
	}

	return snap, nil
}

func (s *Plates) aggregates(ctx context.Context, userID, regionID string, res *RegisterPlateResult) error {
	idx, err := s.store.CountUserRegionPlates(ctx, store.UserRegionRequest{UserID: userID, RegionID: regionID})
	if err != nil {
		return fmt.Errorf("count region plates: %w", err)
	}

	totals, err := s.store.GetUserTotals(ctx, userID)
	if err != nil {
		return fmt.Errorf("get totals: %w", err)
	}

	res.RegionPlateIndex = idx
	res.TotalPlates = totals.Plates
	res.TotalRegions = totals.Regions
	res.TotalPoints = totals.Points
	return nil
}
