// Package photo uploads plate photos to the photos service.
package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
)

var ErrDisabled = errors.New("photo uploads are disabled")

// RemoteStore posts images as multipart forms and returns the URL the
// photos service assigned.
type RemoteStore struct {
	Url       string
	FieldName string
	FileName  string
	client    *http.Client
}

func NewRemoteStore(url, fieldName, fileName string, timeout time.Duration) *RemoteStore {
	return &RemoteStore{
		Url:       url,
		FieldName: fieldName,
		FileName:  fileName,
		client:    &http.Client{Timeout: timeout},
	}
}

type saveImageResponse struct {
	ImageURL string `json:"image_url"`
}

func (s *RemoteStore) SaveImage(ctx context.Context, img io.Reader) (*url.URL, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(s.FieldName, s.FileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}

	if _, err = io.Copy(part, img); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var saveResp saveImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&saveResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	imgURL, err := url.Parse(saveResp.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("parse image URL: %w", err)
	}

	return imgURL, nil
}

// NoStore is used when no photos service is configured.
type NoStore struct{}

func (NoStore) SaveImage(context.Context, io.Reader) (*url.URL, error) {
	return nil, ErrDisabled
}
