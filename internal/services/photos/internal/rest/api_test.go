package rest

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPhotoStore struct {
	SaveFunc func(img io.Reader) (*url.URL, error)
	root     string
}

func (m *mockPhotoStore) Save(img io.Reader) (*url.URL, error) {
	return m.SaveFunc(img)
}

func (m *mockPhotoStore) Path(name string) (string, bool) {
	if !strings.HasSuffix(name, ".jpg") {
		return "", false
	}
	return filepath.Join(m.root, name), true
}

func TestPOSTUpload(t *testing.T) {
	store := &mockPhotoStore{
		SaveFunc: func(img io.Reader) (*url.URL, error) {
			b, err := io.ReadAll(img)
			if err != nil {
				return nil, err
			}
			if string(b) != "plate photo" {
				return nil, errors.New("unexpected body")
			}
			return url.Parse("http://photos.example.com/image/a.jpg")
		},
	}
	api := NewAPI(WithPhotoStore(store), WithMaxPhotoSize(1<<20))

	rec := testutil.SendFile(t, api, "POST", "/upload", testutil.TestFile{
		Name:      "plate.jpg",
		FieldName: "image",
		Content:   strings.NewReader("plate photo"),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := testutil.ParseResponse[uploadResponse](t, rec)
	assert.Equal(t, "http://photos.example.com/image/a.jpg", resp.ImageURL)
}

func TestPOSTUpload_MissingField(t *testing.T) {
	api := NewAPI(WithPhotoStore(&mockPhotoStore{}))

	rec := testutil.SendFile(t, api, "POST", "/upload", testutil.TestFile{
		Name:      "plate.jpg",
		FieldName: "file",
		Content:   strings.NewReader("plate photo"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPOSTUpload_StoreError(t *testing.T) {
	api := NewAPI(WithPhotoStore(&mockPhotoStore{
		SaveFunc: func(img io.Reader) (*url.URL, error) {
			return nil, serr.NewServiceError(nil, http.StatusRequestEntityTooLarge, "photo dimensions exceeded").WithCode(serr.CodeTooLarge)
		},
	}))

	rec := testutil.SendFile(t, api, "POST", "/upload", testutil.TestFile{
		Name:      "plate.jpg",
		FieldName: "image",
		Content:   strings.NewReader("plate photo"),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGETImage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), []byte("plate photo"), 0o644))
	api := NewAPI(WithPhotoStore(&mockPhotoStore{root: root}))

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest("GET", "/image/a.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plate photo", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest("GET", "/image/b.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest("GET", "/image/secret.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
