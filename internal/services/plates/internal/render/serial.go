package render

import (
	"regexp"
	"unicode/utf8"
)

type SerialShape int

const (
	ShapeHyphen SerialShape = iota
	ShapeDot
	ShapeRaw
)

// Slot is one of the four serial positions. It holds a digit or a dot placeholder.
type Slot struct {
	Digit string
	Dot   bool
}

type SerialLayout struct {
	Shape SerialShape
	Slots [4]Slot
	Raw   string
}

var hyphenSerial = regexp.MustCompile(`^([0-9])([0-9])-([0-9])([0-9])$`)

func isDotGlyph(r rune) bool {
	switch r {
	case '.', '・', '･', '•', '·', '●':
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ParseSerial classifies s into exactly one of the hyphen, dot or raw layouts.
func ParseSerial(s string) SerialLayout {
	if m := hyphenSerial.FindStringSubmatch(s); m != nil {
		return SerialLayout{
			Shape: ShapeHyphen,
			Slots: [4]Slot{{Digit: m[1]}, {Digit: m[2]}, {Digit: m[3]}, {Digit: m[4]}},
		}
	}

	if utf8.RuneCountInString(s) == 4 {
		var (
			slots [4]Slot
			i     int
			ok    = true
		)
		for _, r := range s {
			switch {
			case isDigit(r):
				slots[i] = Slot{Digit: string(r)}
			case isDotGlyph(r) && i < 3:
				slots[i] = Slot{Dot: true}
			default:
				ok = false
			}
			i++
		}
		if ok {
			return SerialLayout{Shape: ShapeDot, Slots: slots}
		}
	}

	return SerialLayout{Shape: ShapeRaw, Raw: s}
}
