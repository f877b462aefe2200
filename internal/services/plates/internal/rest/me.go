package rest

import (
	"net/http"
	"time"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/prefs"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
)

type meResponse struct {
	UserID             string         `json:"user_id"`
	Username           string         `json:"username"`
	Public             bool           `json:"public"`
	OnboardingRequired bool           `json:"onboarding_required"`
	Totals             totalsResponse `json:"totals"`
}

func (api *API) handleMe(w http.ResponseWriter, r *http.Request) {
	me, err := api.srv.Me(r.Context(), userID(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, meResponse{
		UserID:             me.Profile.UserID,
		Username:           me.Profile.Username,
		Public:             me.Profile.Public,
		OnboardingRequired: me.OnboardingRequired,
		Totals:             toTotals(me.Totals),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Public   *bool   `json:"public"`
}

func (api *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	p, err := api.srv.UpdateProfile(r.Context(), service.UpdateProfileRequest{
		UserID:   userID(r),
		Username: req.Username,
		Public:   req.Public,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toProfile(p)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleMyProgress(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	p, err := api.srv.GetProgress(r.Context(), uid, uid)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toProgress(p)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type updateMemoRequest struct {
	Memo string `json:"memo"`
}

func (api *API) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	var req updateMemoRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := api.srv.UpdateMemo(r.Context(), userID(r), r.PathValue("region_id"), req.Memo); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type clearRecordsResponse struct {
	Cleared int64 `json:"cleared"`
}

func (api *API) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	n, err := api.srv.ClearRecords(r.Context(), userID(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, clearRecordsResponse{Cleared: n}); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type themeResponse struct {
	Theme     prefs.Theme `json:"theme"`
	Effective prefs.Theme `json:"effective"`
}

// localNow is the current time in the zone named by the tz query parameter,
// or in the configured zone when it is absent.
func (api *API) localNow(r *http.Request) (time.Time, error) {
	loc := api.themeLoc
	if name := r.URL.Query().Get("tz"); name != "" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return time.Time{}, badRequest(err, "invalid tz parameter")
		}
		loc = l
	}
	return api.now().In(loc), nil
}

func (api *API) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	now, err := api.localNow(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	t, err := api.themes.Theme(r.Context(), userID(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, themeResponse{
		Theme:     t,
		Effective: prefs.Effective(t, now),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
	}
}

type setThemeRequest struct {
	Theme string `json:"theme"`
}

func (api *API) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	now, err := api.localNow(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req setThemeRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	t := prefs.Theme(req.Theme)
	if !t.Valid() {
		httpx.HandleErr(w, r, badRequest(nil, "theme must be one of auto, morning, day, evening, night"))
		return
	}

	if err := api.themes.SetTheme(r.Context(), userID(r), t); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, themeResponse{
		Theme:     t,
		Effective: prefs.Effective(t, now),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
	}
}
