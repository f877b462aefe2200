package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/kana"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/ocr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/render"
)

var ErrOCRDisabled = errors.New("ocr is not configured")

const ocrCandidates = 3

type PreviewRequest struct {
	RegionID    string
	RegionName  string
	ClassNumber string
	Kana        string
	Serial      string
	Color       model.PlateColor
}

// RenderPreview draws the plate as typed so far. Unlike registration it
// accepts partial input and dot-masked serials.
func (s *Plates) RenderPreview(r PreviewRequest) string {
	name := strings.TrimSpace(r.RegionName)
	if reg, ok := s.catalog.Get(r.RegionID); ok {
		name = reg.Name
	}

	serial := strings.TrimSpace(r.Serial)
	if digits, err := NormalizeSerial(serial); err == nil && !strings.ContainsAny(serial, ".・･•·●") {
		serial = model.SerialDisplay(digits)
	}

	return s.renderer.Plate(render.Fields{
		RegionName:  name,
		ClassNumber: strings.TrimSpace(r.ClassNumber),
		Kana:        kana.ToHiragana(strings.TrimSpace(r.Kana)),
		Serial:      serial,
		Color:       r.Color,
	})
}

type ReadPlateResult struct {
	Text       string
	Guess      ocr.Guess
	Candidates []region.Region
}

// ReadPlate crops the frame, sends it to the recognizer once and extracts
// field guesses. Region candidates come from a loose search on the guessed name.
func (s *Plates) ReadPlate(ctx context.Context, img image.Image, aspect float64) (ReadPlateResult, error) {
	if s.ocr == nil {
		return ReadPlateResult{}, serr.NewServiceError(ErrOCRDisabled, http.StatusServiceUnavailable, "plate recognition is not available").
			WithCode(serr.CodeUnavailable)
	}

	text, err := s.ocr.Recognize(ctx, ocr.Crop(img, aspect))
	if err != nil {
		return ReadPlateResult{}, fmt.Errorf("recognize: %w", err)
	}

	g := ocr.Parse(text)
	res := ReadPlateResult{Text: text, Guess: g, Candidates: []region.Region{}}
	if g.RegionName != "" {
		res.Candidates = s.index.Search(g.RegionName, region.SearchOptions{Mode: region.MatchLoose, Limit: ocrCandidates})
	}

	return res, nil
}
