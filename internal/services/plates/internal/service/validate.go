package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/kana"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/gookit/validate"
	"golang.org/x/text/width"
)

var ErrInvalidSerial = errors.New("serial must contain exactly 4 digits")

// NormalizeSerial strips separators and returns the 4 digits of the serial.
// Full-width digits are accepted.
func NormalizeSerial(s string) (string, error) {
	var b strings.Builder
	for _, r := range width.Fold.String(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	if b.Len() != 4 {
		return "", ErrInvalidSerial
	}

	return b.String(), nil
}

type plateForm struct {
	RegionID    string `validate:"required"`
	ClassNumber string `validate:"required|regexp:^[0-9][0-9][0-9]?$"`
	Kana        string `validate:"required|singleHiragana"`
	Serial      string `validate:"required|regexp:^[0-9][0-9][0-9][0-9]$"`
	Color       string `validate:"required|in:white,yellow,green,black"`
}

func (f *plateForm) Messages() map[string]string {
	return validate.MS{
		"required":            "{field} is required",
		"ClassNumber.regexp":  "class number must have 2 or 3 digits",
		"Kana.singleHiragana": "kana must be a single hiragana character",
		"Serial.regexp":       "serial must contain exactly 4 digits",
		"Color.in":            "color must be one of white, yellow, green, black",
	}
}

// SingleHiragana backs the singleHiragana rule. Iteration marks are not plate kana.
func (f plateForm) SingleHiragana(val string) bool {
	r := []rune(val)
	return len(r) == 1 && kana.IsHiragana(r[0])
}

// validatePlate folds the raw input into canonical form and checks it. The
// returned error is a 400 ServiceError.
func validatePlate(r RegisterPlateRequest) (plateForm, error) {
	f := plateForm{
		RegionID:    strings.TrimSpace(r.RegionID),
		ClassNumber: strings.TrimSpace(width.Fold.String(r.ClassNumber)),
		Kana:        kana.ToHiragana(strings.TrimSpace(width.Widen.String(r.Kana))),
		Color:       strings.ToLower(strings.TrimSpace(string(r.Color))),
	}
	if f.Color == "" {
		f.Color = string(model.ColorWhite)
	}

	serial, err := NormalizeSerial(r.Serial)
	if err != nil {
		return f, validationError(err, err.Error(), "serial", r.Serial)
	}
	f.Serial = serial

	v := validate.Struct(&f)
	if !v.Validate() {
		msg := v.Errors.One()
		return f, validationError(v.Errors, msg, "fields", v.Errors.String())
	}

	return f, nil
}

func validationError(err error, msg, key, val string) *serr.ServiceError {
	return serr.NewServiceError(err, http.StatusBadRequest, "%s", msg).
		WithCode(serr.CodeValidation).
		With(key, val)
}
