package render

import "github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"

type Colors struct {
	Background string
	Ink        string
}

var palette = map[model.PlateColor]Colors{
	model.ColorWhite:  {Background: "#FFFFFF", Ink: "#0B5A2A"},
	model.ColorYellow: {Background: "#F5C400", Ink: "#111111"},
	model.ColorGreen:  {Background: "#0B5A2A", Ink: "#FFFFFF"},
	model.ColorBlack:  {Background: "#111111", Ink: "#F5C400"},
}

// Palette returns the background and ink pair for c. Unknown colors get the white plate pair.
func Palette(c model.PlateColor) Colors {
	if p, ok := palette[c]; ok {
		return p
	}
	return palette[model.ColorWhite]
}
