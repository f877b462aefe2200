package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapReader map[string]string

func (m mapReader) Reading(text string) (string, bool) {
	r, ok := m[text]
	return r, ok
}

func TestLoad(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)

	prefs := c.Prefectures()
	require.Len(t, prefs, 47)
	assert.Equal(t, "北海道", prefs[0])
	assert.Equal(t, "東京都", prefs[12])
	assert.Equal(t, "沖縄県", prefs[46])

	r, ok := c.Get("東京都:品川")
	require.True(t, ok)
	assert.Equal(t, "品川", r.Name)
	assert.Equal(t, "しながわ", r.Reading)
	assert.Equal(t, 13, r.PrefectureOrder)
	assert.Equal(t, 1, r.Order)

	_, ok = c.Get("東京都:渋谷")
	assert.False(t, ok)

	for _, r := range c.All() {
		assert.NotEmpty(t, r.Reading, r.ID)
	}
}

func TestNewCatalog_Order(t *testing.T) {
	c, err := NewCatalog([]Region{
		{Name: "渋谷", Prefecture: "東京都", PrefectureOrder: 13, Order: 2},
		{Name: "札幌", Prefecture: "北海道", PrefectureOrder: 1, Order: 1},
		{Name: "品川", Prefecture: "東京都", PrefectureOrder: 13, Order: 1},
	}, nil)
	require.NoError(t, err)

	all := c.All()
	assert.Equal(t, []string{"北海道:札幌", "東京都:品川", "東京都:渋谷"},
		[]string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []string{"北海道", "東京都"}, c.Prefectures())
	assert.Len(t, c.InPrefecture("東京都"), 2)
}

func TestNewCatalog_FillsReadings(t *testing.T) {
	c, err := NewCatalog([]Region{
		{Name: "品川", Prefecture: "東京都", PrefectureOrder: 13, Order: 1},
		{Name: "多摩", Prefecture: "東京都", PrefectureOrder: 13, Order: 2, Reading: "たま"},
		{Name: "謎", Prefecture: "東京都", PrefectureOrder: 13, Order: 3},
	}, mapReader{"品川": "しながわ", "多摩": "ちがう"})
	require.NoError(t, err)

	r, _ := c.Get("東京都:品川")
	assert.Equal(t, "しながわ", r.Reading)

	r, _ = c.Get("東京都:多摩")
	assert.Equal(t, "たま", r.Reading)

	r, _ = c.Get("東京都:謎")
	assert.Empty(t, r.Reading)
}

func TestNewCatalog_Duplicate(t *testing.T) {
	_, err := NewCatalog([]Region{
		{Name: "品川", Prefecture: "東京都"},
		{Name: "品川", Prefecture: "東京都"},
	}, nil)
	assert.Error(t, err)
}

func TestCatalog_Immutable(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "changed"

	r, _ := c.Get(all[0].ID)
	assert.NotEqual(t, "changed", r.Name)
}

func TestKagomeReader(t *testing.T) {
	rd, err := NewKagomeReader()
	require.NoError(t, err)

	reading, ok := rd.Reading("東京")
	require.True(t, ok)
	assert.Equal(t, "とうきょう", reading)
}
