// Package prefs stores per-user display preferences.
package prefs

import "time"

type Theme string

const (
	ThemeAuto    Theme = "auto"
	ThemeMorning Theme = "morning"
	ThemeDay     Theme = "day"
	ThemeEvening Theme = "evening"
	ThemeNight   Theme = "night"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeAuto, ThemeMorning, ThemeDay, ThemeEvening, ThemeNight:
		return true
	}
	return false
}

// ParseTheme reads a stored value. Anything unknown is auto.
func ParseTheme(s string) Theme {
	if t := Theme(s); t.Valid() {
		return t
	}
	return ThemeAuto
}

// Effective resolves auto by the hour of now in its own location.
func Effective(t Theme, now time.Time) Theme {
	if t != ThemeAuto {
		return t
	}

	switch h := now.Hour(); {
	case h >= 5 && h < 10:
		return ThemeMorning
	case h >= 10 && h < 17:
		return ThemeDay
	case h >= 17 && h < 19:
		return ThemeEvening
	default:
		return ThemeNight
	}
}
