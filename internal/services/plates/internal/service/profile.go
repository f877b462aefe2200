package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/photo"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/google/uuid"
	"github.com/gookit/validate"
)

const MaxMemoLength = 500

type Me struct {
	Profile            model.Profile
	OnboardingRequired bool
	Totals             model.Totals
}

// Me returns the caller's profile. OnboardingRequired is set until a
// username has been chosen.
func (s *Plates) Me(ctx context.Context, userID string) (Me, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Me{}, fmt.Errorf("get profile: %w", err)
		}
		p = model.Profile{UserID: userID}
	}

	totals, err := s.store.GetUserTotals(ctx, userID)
	if err != nil {
		return Me{}, fmt.Errorf("get totals: %w", err)
	}

	return Me{
		Profile:            p,
		OnboardingRequired: p.Username == "",
		Totals:             totals,
	}, nil
}

type UpdateProfileRequest struct {
	UserID   string
	Username *string
	Public   *bool
}

type usernameForm struct {
	Username string `validate:"required|minLen:3|maxLen:20|regexp:^[a-z0-9_]+$"`
}

func (f *usernameForm) Messages() map[string]string {
	return validate.MS{
		"Username.required": "username is required",
		"Username.minLen":   "username must have at least 3 characters",
		"Username.maxLen":   "username must have at most 20 characters",
		"Username.regexp":   "username may contain lowercase letters, digits and underscores only",
	}
}

// UpdateProfile changes username and visibility. Fields left nil keep their
// value. A taken username is a 409.
func (s *Plates) UpdateProfile(ctx context.Context, r UpdateProfileRequest) (model.Profile, error) {
	req := store.SetProfileRequest{UserID: r.UserID, Public: r.Public}
	if r.Username != nil {
		f := usernameForm{Username: strings.ToLower(strings.TrimSpace(*r.Username))}
		v := validate.Struct(&f)
		if !v.Validate() {
			return model.Profile{}, validationError(v.Errors, v.Errors.One(), "username", *r.Username)
		}
		req.Username = &f.Username
	}

	p, err := s.store.SetProfile(ctx, req)
	if err != nil {
		if errors.Is(err, store.ErrExists) && req.Username != nil {
			return p, serr.NewServiceError(err, http.StatusConflict, "username is already taken").
				WithCode(serr.CodeConflict).
				With("username", *req.Username)
		}
		return p, fmt.Errorf("set profile: %w", err)
	}

	return p, nil
}

func (s *Plates) SetUsername(ctx context.Context, userID, username string) (model.Profile, error) {
	return s.UpdateProfile(ctx, UpdateProfileRequest{UserID: userID, Username: &username})
}

func (s *Plates) SetVisibility(ctx context.Context, userID string, public bool) (model.Profile, error) {
	return s.UpdateProfile(ctx, UpdateProfileRequest{UserID: userID, Public: &public})
}

// AddFriend lets the user named username see the caller's private data.
func (s *Plates) AddFriend(ctx context.Context, userID, username string) (model.Profile, error) {
	friend, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return friend, serr.NewServiceError(err, http.StatusNotFound, "user not found").
				WithCode(serr.CodeNotFound).
				With("username", username)
		}
		return friend, fmt.Errorf("get profile: %w", err)
	}

	if friend.UserID == userID {
		return friend, serr.NewServiceError(nil, http.StatusBadRequest, "cannot add yourself as a friend").
			WithCode(serr.CodeValidation)
	}

	if err := s.store.AddFriend(ctx, store.FriendRequest{UserID: userID, FriendID: friend.UserID}); err != nil {
		return friend, fmt.Errorf("add friend: %w", err)
	}

	return friend, nil
}

func (s *Plates) ListFriends(ctx context.Context, userID string) ([]model.Profile, error) {
	friends, err := s.store.GetFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get friends: %w", err)
	}

	return friends, nil
}

// UpdateMemo stores a free-text note on the caller's record for the region.
func (s *Plates) UpdateMemo(ctx context.Context, userID, regionID, memo string) error {
	if _, ok := s.catalog.Get(regionID); !ok {
		return regionNotFound(regionID)
	}

	memo = strings.TrimSpace(memo)
	if utf8.RuneCountInString(memo) > MaxMemoLength {
		return serr.NewServiceError(nil, http.StatusBadRequest, "memo must have at most %d characters", MaxMemoLength).
			WithCode(serr.CodeValidation)
	}

	if err := s.store.UpdateRegionMemo(ctx, store.UpdateMemoRequest{UserID: userID, RegionID: regionID, Memo: memo}); err != nil {
		return fmt.Errorf("update memo: %w", err)
	}

	return nil
}

// ClearRecords deletes every region record of the user and reports how many
// were removed. Plates, score events and serial collections stay, so totals
// keep counting them.
func (s *Plates) ClearRecords(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.ClearRegionRecords(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear region records: %w", err)
	}

	return n, nil
}

type AttachPhotoRequest struct {
	UserID     string
	PlateID    uuid.UUID
	Image      io.Reader
	CapturedAt *time.Time
}

// AttachPhoto uploads the photo and links it to one of the caller's plates.
// The SVG snapshot of the plate is not touched.
func (s *Plates) AttachPhoto(ctx context.Context, r AttachPhotoRequest) (model.Plate, error) {
	notFound := func(err error) error {
		return serr.NewServiceError(err, http.StatusNotFound, "plate not found").
			WithCode(serr.CodeNotFound).
			With("plate_id", r.PlateID.String())
	}

	p, err := s.store.GetPlate(ctx, r.PlateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return p, notFound(err)
		}
		return p, fmt.Errorf("get plate: %w", err)
	}
	if p.UserID != r.UserID {
		return model.Plate{}, notFound(store.ErrNotFound)
	}

	u, err := s.photos.SaveImage(ctx, r.Image)
	if err != nil {
		if errors.Is(err, photo.ErrDisabled) {
			return p, serr.NewServiceError(err, http.StatusServiceUnavailable, "photo uploads are not available").
				WithCode(serr.CodeUnavailable)
		}
		return p, fmt.Errorf("save photo: %w", err)
	}

	capturedAt := r.CapturedAt
	if capturedAt == nil {
		now := s.now().UTC()
		capturedAt = &now
	}

	err = s.store.AttachPhoto(ctx, store.AttachPhotoRequest{
		UserID:     r.UserID,
		PlateID:    r.PlateID,
		PhotoURL:   u.String(),
		CapturedAt: capturedAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return p, notFound(err)
		}
		return p, fmt.Errorf("attach photo: %w", err)
	}

	p.PhotoURL = u.String()
	p.CapturedAt = capturedAt
	return p, nil
}
