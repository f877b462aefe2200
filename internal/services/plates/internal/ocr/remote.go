package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// RemoteRecognizer sends one PNG per call to an OCR endpoint and expects {"text": "..."} back.
// There are no retries; the caller lets the user try again.
type RemoteRecognizer struct {
	Url    string
	client *http.Client
}

func NewRemoteRecognizer(url string, timeout time.Duration) *RemoteRecognizer {
	return &RemoteRecognizer{
		Url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type recognizeResponse struct {
	Text string `json:"text"`
}

func (r *RemoteRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rr recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return rr.Text, nil
}
