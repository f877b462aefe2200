package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tbl := []struct {
		name string
		in   string
		out  Guess
	}{
		{"clean", "品川 300 さ 12-34", Guess{RegionName: "品川", ClassNumber: "300", Kana: "さ", Serial: "12-34"}},
		{"full width", "品川　３００\nさ　１２ー３４", Guess{RegionName: "品川", ClassNumber: "300", Kana: "さ", Serial: "12-34"}},
		{"spaced dash", "横浜 500 ね 1 − 2", Guess{RegionName: "横浜", ClassNumber: "500", Kana: "ね", Serial: "1-2"}},
		{"long region", "尾張小牧530あ・・12", Guess{RegionName: "尾張小牧", ClassNumber: "530", Kana: "あ"}},
		{"two digit class", "湘南 33 ら 45-67", Guess{RegionName: "湘南", Kana: "ら", Serial: "45-67"}},
		{"noise", "!!!", Guess{}},
		{"empty", "", Guess{}},
		{"single kanji", "堺 300 は 10-01", Guess{ClassNumber: "300", Kana: "は", Serial: "10-01"}},
	}

	for _, c := range tbl {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.out, Parse(c.in))
		})
	}
}

func TestParse_FirstMatchWins(t *testing.T) {
	g := Parse("品川 300 さ 12-34 練馬 500 ね 56-78")
	assert.Equal(t, Guess{RegionName: "品川", ClassNumber: "300", Kana: "さ", Serial: "12-34"}, g)
}
