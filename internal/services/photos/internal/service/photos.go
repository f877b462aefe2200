// Package service stores uploaded plate photos on local disk.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/google/uuid"
)

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
}

var photoName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(jpg|png)$`)

// ValidName reports whether name could have been produced by Save.
func ValidName(name string) bool {
	return photoName.MatchString(name)
}

type Config struct {
	ServeRoot *url.URL
	Root      string
	MaxWidth  int
	MaxHeight int
}

// Photos validates uploads and writes them under Root with a random name.
type Photos struct {
	serveRoot *url.URL
	root      string
	maxWidth  int
	maxHeight int
	newID     func() uuid.UUID
}

func NewPhotos(cfg Config) (*Photos, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create photo root: %w", err)
	}

	return &Photos{
		serveRoot: cfg.ServeRoot,
		root:      cfg.Root,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		newID:     uuid.New,
	}, nil
}

func tooLarge(err error, msg string) *serr.ServiceError {
	return serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "%s", msg).WithCode(serr.CodeTooLarge)
}

// Save checks the image header, then streams the whole body to disk. The
// file only appears under its final name once it has been written completely.
func (p *Photos) Save(img io.Reader) (*url.URL, error) {
	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(img, &head))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, tooLarge(err, "photo size exceeded")
		}
		return nil, serr.NewServiceError(err, http.StatusBadRequest, "unsupported image format").
			WithCode(serr.CodeValidation)
	}

	ext, ok := extensions[format]
	if !ok {
		return nil, serr.NewServiceError(nil, http.StatusBadRequest, "unsupported image format %q", format).
			WithCode(serr.CodeValidation)
	}
	if cfg.Width > p.maxWidth || cfg.Height > p.maxHeight {
		return nil, tooLarge(nil, "photo dimensions exceeded").
			With("width", fmt.Sprint(cfg.Width)).
			With("height", fmt.Sprint(cfg.Height))
	}

	tmp, err := os.CreateTemp(p.root, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, io.MultiReader(&head, img))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, tooLarge(err, "photo size exceeded")
		}
		return nil, fmt.Errorf("write photo: %w", err)
	}

	name := p.newID().String() + ext
	if err := os.Rename(tmp.Name(), filepath.Join(p.root, name)); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	return p.serveRoot.JoinPath(name), nil
}

// Path returns where a stored photo lives on disk.
func (p *Photos) Path(name string) (string, bool) {
	if !ValidName(name) {
		return "", false
	}
	return filepath.Join(p.root, name), true
}
