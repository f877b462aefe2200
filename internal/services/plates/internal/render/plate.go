// Package render draws plate sightings as standalone SVG markup.
package render

import (
	"encoding/base64"
	"encoding/xml"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
)

const fontFamily = `'Noto Sans JP','Hiragino Sans','Yu Gothic','Meiryo',sans-serif`

// Placeholder is drawn when a plate has no text at all.
const Placeholder = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 330 165" width="330" height="165">` +
	`<rect x="4" y="4" width="322" height="157" rx="14" ry="14" fill="#F4F4F4" stroke="#BDBDBD" stroke-width="4" stroke-dasharray="10 8"/>` +
	`<text x="165" y="96" text-anchor="middle" font-family="` + fontFamily + `" font-size="22" fill="#9E9E9E">ナンバーを入力</text>` +
	`</svg>`

type Fields struct {
	RegionName  string
	ClassNumber string
	Kana        string
	Serial      string
	Color       model.PlateColor
}

func (f Fields) Empty() bool {
	return f.RegionName == "" && f.ClassNumber == "" && f.Kana == "" && f.Serial == ""
}

var slotX = [4]int{98, 150, 216, 268}

type slotView struct {
	X     int
	Digit string
	Dot   bool
}

type plateView struct {
	Colors
	Font        string
	Region      string
	RegionFit   bool
	ClassNumber string
	Kana        string
	Hyphen      bool
	Slots       []slotView
	Raw         string
}

var plateTmpl = template.Must(template.New("plate").Funcs(template.FuncMap{"x": escape}).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 330 165" width="330" height="165">` +
		`<rect x="3" y="3" width="324" height="159" rx="14" ry="14" fill="{{.Background}}" stroke="{{.Ink}}" stroke-width="4"/>` +
		`<circle cx="58" cy="22" r="5" fill="{{.Ink}}" fill-opacity="0.35"/>` +
		`<circle cx="272" cy="22" r="5" fill="{{.Ink}}" fill-opacity="0.35"/>` +
		`<g font-family="{{.Font}}" fill="{{.Ink}}" font-weight="700">` +
		`<text x="150" y="58" text-anchor="end" font-size="36"` +
		`{{if .RegionFit}} textLength="112" lengthAdjust="spacingAndGlyphs"{{end}}>{{x .Region}}</text>` +
		`<text x="166" y="58" text-anchor="start" font-size="36">{{x .ClassNumber}}</text>` +
		`<text x="42" y="136" text-anchor="middle" font-size="40">{{x .Kana}}</text>` +
		`{{if .Raw}}<text x="306" y="146" text-anchor="end" font-size="72">{{x .Raw}}</text>{{end}}` +
		`{{range .Slots}}{{if .Dot}}<circle cx="{{.X}}" cy="118" r="7"/>` +
		`{{else}}<text x="{{.X}}" y="146" text-anchor="middle" font-size="84">{{x .Digit}}</text>{{end}}{{end}}` +
		`{{if .Hyphen}}<rect x="172" y="108" width="30" height="8" rx="2"/>{{end}}` +
		`</g></svg>`))

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// Plate renders f. The output depends only on f.
func Plate(f Fields) string {
	if f.Empty() {
		return Placeholder
	}

	v := plateView{
		Colors:      Palette(f.Color),
		Font:        fontFamily,
		Region:      f.RegionName,
		RegionFit:   utf8.RuneCountInString(f.RegionName) > 3,
		ClassNumber: f.ClassNumber,
		Kana:        f.Kana,
	}

	layout := ParseSerial(f.Serial)
	switch layout.Shape {
	case ShapeHyphen, ShapeDot:
		v.Hyphen = layout.Shape == ShapeHyphen
		for i, s := range layout.Slots {
			v.Slots = append(v.Slots, slotView{X: slotX[i], Digit: s.Digit, Dot: s.Dot})
		}
	case ShapeRaw:
		v.Raw = layout.Raw
	}

	var sb strings.Builder
	if err := plateTmpl.Execute(&sb, v); err != nil {
		// plateView only carries strings and ints; Execute cannot fail on it.
		panic(err)
	}
	return sb.String()
}

// DataURL encodes markup for use as an <img> source.
func DataURL(svg string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
