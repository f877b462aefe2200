// Package kana folds Japanese search text into a single comparable form.
package kana

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	katakanaFirst = 'ァ'
	katakanaLast  = 'ヶ'
	hiraganaShift = 'ァ' - 'ぁ'
)

// isLongVowel reports the prolonged sound mark and the dash lookalikes users type in its place.
func isLongVowel(r rune) bool {
	switch r {
	case 'ー', 'ｰ', '-', '‐', '‑', '‒', '–', '—', '―', '−', '〜', '～', '~':
		return true
	}
	return false
}

func toHiragana(r rune) rune {
	if r >= katakanaFirst && r <= katakanaLast {
		return r - hiraganaShift
	}
	return r
}

func IsHiragana(r rune) bool {
	return unicode.Is(unicode.Hiragana, r) && r != 'ゝ' && r != 'ゞ' && r != 'ゟ'
}

// ToHiragana folds width and maps katakana to hiragana without touching anything else.
func ToHiragana(s string) string {
	out, _, err := transform.String(transform.Chain(width.Fold, norm.NFC, runes.Map(toHiragana)), s)
	if err != nil {
		return s
	}
	return out
}

// Normalize produces the search key form of s. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := transform.Chain(
		width.Fold,
		norm.NFC,
		cases.Fold(),
		runes.Map(func(r rune) rune {
			if r == '　' {
				return ' '
			}
			return toHiragana(r)
		}),
		runes.Remove(runes.Predicate(isLongVowel)),
	)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return norm.NFC.String(strings.Join(strings.Fields(out), " "))
}
