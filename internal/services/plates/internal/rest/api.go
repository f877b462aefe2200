package rest

import (
	"context"
	"image"
	"net/http"
	"strconv"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/middleware"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/prefs"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
)

type platesService interface {
	SearchRegions(query string, mode region.MatchMode, limit int) []region.Region
	GetRegion(ctx context.Context, userID, regionID string) (service.RegionDetail, error)
	ListPlates(ctx context.Context, userID, regionID string) ([]model.Plate, error)
	RegisterPlate(ctx context.Context, r service.RegisterPlateRequest) (service.RegisterPlateResult, error)
	AttachPhoto(ctx context.Context, r service.AttachPhotoRequest) (model.Plate, error)
	RenderPreview(r service.PreviewRequest) string
	ReadPlate(ctx context.Context, img image.Image, aspect float64) (service.ReadPlateResult, error)
	Me(ctx context.Context, userID string) (service.Me, error)
	UpdateProfile(ctx context.Context, r service.UpdateProfileRequest) (model.Profile, error)
	GetProgress(ctx context.Context, viewerID, ownerID string) (service.Progress, error)
	GetUserProgress(ctx context.Context, viewerID, username string) (service.Progress, error)
	UpdateMemo(ctx context.Context, userID, regionID, memo string) error
	ClearRecords(ctx context.Context, userID string) (int64, error)
	GetCollection(ctx context.Context, userID string) ([]model.SerialEntry, error)
	GetGlobalSerial(ctx context.Context, serial string) (model.SerialEntry, error)
	Ranking(ctx context.Context, limit int) ([]model.RankEntry, error)
	AddFriend(ctx context.Context, userID, username string) (model.Profile, error)
	ListFriends(ctx context.Context, userID string) ([]model.Profile, error)
}

type themeStore interface {
	Theme(ctx context.Context, userID string) (prefs.Theme, error)
	SetTheme(ctx context.Context, userID string, t prefs.Theme) error
}

type APIOption func(*API) *API

func WithPlatesService(srv platesService) APIOption {
	return func(api *API) *API {
		api.srv = srv
		return api
	}
}

func WithThemeStore(s themeStore) APIOption {
	return func(api *API) *API {
		api.themes = s
		return api
	}
}

// WithMaxUploadSize bounds photo and OCR uploads.
func WithMaxUploadSize(size int64) APIOption {
	return func(api *API) *API {
		api.maxUploadSize = size
		return api
	}
}

func WithClock(now func() time.Time) APIOption {
	return func(api *API) *API {
		api.now = now
		return api
	}
}

// WithThemeLocation sets the zone used to resolve the auto theme when the
// client does not send one.
func WithThemeLocation(loc *time.Location) APIOption {
	return func(api *API) *API {
		api.themeLoc = loc
		return api
	}
}

type API struct {
	srv           platesService
	themes        themeStore
	maxUploadSize int64
	now           func() time.Time
	themeLoc      *time.Location
	mux           *http.ServeMux
}

func NewAPI(opts ...APIOption) *API {
	api := &API{
		maxUploadSize: 8 << 20,
		now:           time.Now,
		themeLoc:      time.UTC,
		mux:           http.NewServeMux(),
	}

	for _, opt := range opts {
		api = opt(api)
	}

	if api.srv == nil {
		panic("plates service is required")
	}
	if api.themes == nil {
		panic("theme store is required")
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("GET /regions", api.handleSearchRegions)
	api.mux.HandleFunc("GET /regions/{region_id}", api.handleGetRegion)
	api.mux.HandleFunc("GET /regions/{region_id}/plates", api.handleListRegionPlates)

	api.mux.HandleFunc("POST /plates", api.handleRegisterPlate)
	api.mux.HandleFunc("POST /plates/preview", api.handlePreview)
	api.mux.HandleFunc("POST /plates/{plate_id}/photo", api.handleAttachPhoto)
	api.mux.HandleFunc("POST /ocr", api.handleReadPlate)

	api.mux.HandleFunc("GET /me", api.handleMe)
	api.mux.HandleFunc("PUT /me/profile", api.handleUpdateProfile)
	api.mux.HandleFunc("GET /me/progress", api.handleMyProgress)
	api.mux.HandleFunc("PUT /me/records/{region_id}/memo", api.handleUpdateMemo)
	api.mux.HandleFunc("DELETE /me/records", api.handleClearRecords)
	api.mux.HandleFunc("GET /me/theme", api.handleGetTheme)
	api.mux.HandleFunc("PUT /me/theme", api.handleSetTheme)

	api.mux.HandleFunc("GET /collection", api.handleCollection)
	api.mux.HandleFunc("GET /serials/{serial}", api.handleGlobalSerial)
	api.mux.HandleFunc("GET /users/{username}/progress", api.handleUserProgress)
	api.mux.HandleFunc("GET /ranking", api.handleRanking)
	api.mux.HandleFunc("GET /friends", api.handleListFriends)
	api.mux.HandleFunc("PUT /friends/{username}", api.handleAddFriend)
}

func userID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func badRequest(err error, msg string) *serr.ServiceError {
	return serr.NewServiceError(err, http.StatusBadRequest, "%s", msg).WithCode(serr.CodeValidation)
}

// intQuery returns 0 for a missing parameter.
func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest(err, "invalid "+key+" parameter")
	}

	return n, nil
}
