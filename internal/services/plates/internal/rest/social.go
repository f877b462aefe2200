package rest

import (
	"net/http"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/fn"
)

func (api *API) handleCollection(w http.ResponseWriter, r *http.Request) {
	entries, err := api.srv.GetCollection(r.Context(), userID(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(entries, toSerial)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleGlobalSerial(w http.ResponseWriter, r *http.Request) {
	e, err := api.srv.GetGlobalSerial(r.Context(), r.PathValue("serial"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toSerial(e)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	p, err := api.srv.GetUserProgress(r.Context(), userID(r), r.PathValue("username"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toProgress(p)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	ranking, err := api.srv.Ranking(r.Context(), limit)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(ranking, toRank)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := api.srv.ListFriends(r.Context(), userID(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toProfiles(friends)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	friend, err := api.srv.AddFriend(r.Context(), userID(r), r.PathValue("username"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toProfile(friend)); err != nil {
		httpx.HandleErr(w, r, err)
	}
}
