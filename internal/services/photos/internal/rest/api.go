package rest

import (
	"io"
	"net/http"
	"net/url"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/httpx"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
)

type photoStore interface {
	Save(img io.Reader) (*url.URL, error)
	Path(name string) (string, bool)
}

type APIOption func(*API) *API

func WithPhotoStore(s photoStore) APIOption {
	return func(api *API) *API {
		api.photos = s
		return api
	}
}

func WithMaxPhotoSize(size int64) APIOption {
	return func(api *API) *API {
		api.maxSize = size
		return api
	}
}

type API struct {
	photos  photoStore
	maxSize int64
	mux     *http.ServeMux
}

func NewAPI(opts ...APIOption) *API {
	api := &API{
		maxSize: 10 << 20,
		mux:     http.NewServeMux(),
	}

	for _, opt := range opts {
		api = opt(api)
	}

	if api.photos == nil {
		panic("photo store is required")
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("POST /upload", api.handleUpload)
	api.mux.HandleFunc("GET /image/{name}", api.handleGetImage)
}

type uploadResponse struct {
	ImageURL string `json:"image_url"`
}

func (api *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, _, err := r.FormFile("image")
	if err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid image").WithCode(serr.CodeValidation))
		return
	}
	defer f.Close()

	u, err := api.photos.Save(http.MaxBytesReader(w, f, api.maxSize))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusCreated, uploadResponse{ImageURL: u.String()}); err != nil {
		httpx.HandleErr(w, r, err)
	}
}

func (api *API) handleGetImage(w http.ResponseWriter, r *http.Request) {
	p, ok := api.photos.Path(r.PathValue("name"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "photo not found", serr.CodeNotFound)
		return
	}

	// Names are random and never reused.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, p)
}
