package rest

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/fn"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/ocr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
	"github.com/google/uuid"
)

func (api *API) handleSearchRegions(w http.ResponseWriter, r *http.Request) {
	var mode region.MatchMode
	switch m := r.URL.Query().Get("mode"); m {
	case "", "prefix":
		mode = region.MatchPrefix
	case "loose":
		mode = region.MatchLoose
	default:
		httpx.HandleErr(w, r, badRequest(nil, "mode must be prefix or loose"))
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	regions := api.srv.SearchRegions(r.URL.Query().Get("q"), mode, limit)
	if err := httpx.WriteJSON(w, http.StatusOK, regions); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type regionResponse struct {
	Region   region.Region   `json:"region"`
	Record   *recordResponse `json:"record"`
	Excluded bool            `json:"excluded"`
}

func (api *API) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	d, err := api.srv.GetRegion(r.Context(), userID(r), r.PathValue("region_id"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp := regionResponse{Region: d.Region, Excluded: d.Excluded}
	if d.Record != nil {
		rec := toRecord(*d.Record)
		resp.Record = &rec
	}

	if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleListRegionPlates(w http.ResponseWriter, r *http.Request) {
	plates, err := api.srv.ListPlates(r.Context(), userID(r), r.PathValue("region_id"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(plates, toPlate)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type registerPlateRequest struct {
	PlateID     uuid.UUID  `json:"plate_id"`
	RegionID    string     `json:"region_id"`
	ClassNumber string     `json:"class_number"`
	Kana        string     `json:"kana"`
	Serial      string     `json:"serial"`
	Color       string     `json:"color"`
	CapturedAt  *time.Time `json:"captured_at"`
}

func (api *API) handleRegisterPlate(w http.ResponseWriter, r *http.Request) {
	var req registerPlateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	res, err := api.srv.RegisterPlate(r.Context(), service.RegisterPlateRequest{
		UserID:      userID(r),
		PlateID:     req.PlateID,
		RegionID:    req.RegionID,
		ClassNumber: req.ClassNumber,
		Kana:        req.Kana,
		Serial:      req.Serial,
		Color:       model.PlateColor(req.Color),
		CapturedAt:  req.CapturedAt,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusCreated, res); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type previewRequest struct {
	RegionID    string `json:"region_id"`
	RegionName  string `json:"region_name"`
	ClassNumber string `json:"class_number"`
	Kana        string `json:"kana"`
	Serial      string `json:"serial"`
	Color       string `json:"color"`
}

func (api *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	svg := api.srv.RenderPreview(service.PreviewRequest{
		RegionID:    req.RegionID,
		RegionName:  req.RegionName,
		ClassNumber: req.ClassNumber,
		Kana:        req.Kana,
		Serial:      req.Serial,
		Color:       model.PlateColor(req.Color),
	})

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

func (api *API) handleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	plateID, err := uuid.Parse(r.PathValue("plate_id"))
	if err != nil {
		httpx.HandleErr(w, r, badRequest(err, "invalid plate_id parameter"))
		return
	}

	file, err := api.formImage(w, r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	defer file.Close()

	var capturedAt *time.Time
	if raw := r.FormValue("captured_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.HandleErr(w, r, badRequest(err, "captured_at must be an RFC 3339 timestamp"))
			return
		}
		capturedAt = &t
	}

	p, err := api.srv.AttachPhoto(r.Context(), service.AttachPhotoRequest{
		UserID:     userID(r),
		PlateID:    plateID,
		Image:      file,
		CapturedAt: capturedAt,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toPlate(p)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type readPlateResponse struct {
	Text       string          `json:"text"`
	Guess      ocr.Guess       `json:"guess"`
	Candidates []region.Region `json:"candidates"`
}

func (api *API) handleReadPlate(w http.ResponseWriter, r *http.Request) {
	file, err := api.formImage(w, r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	defer file.Close()

	aspect := 0.0
	if raw := r.FormValue("aspect"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			httpx.HandleErr(w, r, badRequest(err, "invalid aspect parameter"))
			return
		}
		aspect = v
	}

	img, _, err := image.Decode(file)
	if err != nil {
		httpx.HandleErr(w, r, badRequest(err, "unsupported image format"))
		return
	}

	res, err := api.srv.ReadPlate(r.Context(), img, aspect)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, readPlateResponse{
		Text:       res.Text,
		Guess:      res.Guess,
		Candidates: res.Candidates,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
	}
}

// formImage reads the multipart "image" field with the body capped at the
// upload limit.
func (api *API) formImage(w http.ResponseWriter, r *http.Request) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUploadSize)

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "image is too large").
				WithCode(serr.CodeTooLarge)
		}
		return nil, badRequest(err, "invalid image file")
	}

	return file, nil
}
