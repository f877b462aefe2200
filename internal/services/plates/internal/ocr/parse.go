// Package ocr turns recogniser output into plate field guesses.
package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Guess holds best-effort field values. Fields that were not found are empty.
type Guess struct {
	RegionName  string `json:"region_name"`
	ClassNumber string `json:"class_number"`
	Kana        string `json:"kana"`
	Serial      string `json:"serial"`
}

var (
	dashes = strings.NewReplacer(
		"ー", "-", "ｰ", "-", "‐", "-", "‑", "-", "‒", "-", "–", "-",
		"—", "-", "―", "-", "−", "-", "〜", "-", "~", "-",
	)

	serialRe = regexp.MustCompile(`(\d{1,2})\s*-\s*(\d{1,2})`)
	classRe  = regexp.MustCompile(`(?:^|\D)(\d{3})(?:\D|$)`)
	kanaRe   = regexp.MustCompile(`\p{Hiragana}`)
	regionRe = regexp.MustCompile(`\p{Han}{2,4}`)
)

// Parse extracts the first match per field from raw recognised text. It never fails.
func Parse(text string) Guess {
	text = dashes.Replace(width.Fold.String(text))

	var g Guess
	if m := serialRe.FindStringSubmatch(text); m != nil {
		g.Serial = m[1] + "-" + m[2]
	}
	if m := classRe.FindStringSubmatch(text); m != nil {
		g.ClassNumber = m[1]
	}
	g.Kana = kanaRe.FindString(text)
	g.RegionName = regionRe.FindString(text)

	return g
}
