package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenFrom(start, step Liters) []Liters {
	row := make([]Liters, DigitsPerDecade)
	for i := range row {
		row[i] = start + Liters(i)*step
	}
	return row
}

func TestNewVolumetricTable(t *testing.T) {
	table, err := NewVolumetricTable(map[int][]Liters{
		0:   tenFrom(0, 5),
		10:  tenFrom(50, 5),
		260: {200},
	})
	require.NoError(t, err)

	row, ok := table.Row(10)
	require.True(t, ok)
	assert.Equal(t, Liters(65), row[3])

	_, ok = table.Row(20)
	assert.False(t, ok, "decade 20 is not tabled")

	_, ok = table.Row(15)
	assert.False(t, ok, "15 is not a decade key")

	assert.Equal(t, []int{0, 10, 260}, table.Decades())
	assert.False(t, table.IsZero())
}

func TestNewVolumetricTableRejectsBadRows(t *testing.T) {
	cases := map[string]map[int][]Liters{
		"empty":              {},
		"decade not aligned": {5: tenFrom(0, 1)},
		"decade over limit":  {270: tenFrom(0, 1)},
		"negative decade":    {-10: tenFrom(0, 1)},
		"too many entries":   {0: append(tenFrom(0, 1), 11)},
		"empty row":          {0: {}},
		"partial inner row":  {0: {1, 2, 3}, 10: tenFrom(10, 1)},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewVolumetricTable(rows)
			assert.Error(t, err)
		})
	}
}

func TestVolumetricTableRowsIsCopy(t *testing.T) {
	source := map[int][]Liters{0: tenFrom(0, 1)}
	table, err := NewVolumetricTable(source)
	require.NoError(t, err)

	source[0][0] = 99
	rows := table.Rows()
	rows[0][1] = 99

	row, _ := table.Row(0)
	assert.Equal(t, Liters(0), row[0])
	assert.Equal(t, Liters(1), row[1])
}

func TestNonMonotonic(t *testing.T) {
	table, err := NewVolumetricTable(map[int][]Liters{
		0:  tenFrom(0, 10),
		10: {85, 100, 110, 105, 120, 130, 140, 150, 160, 170},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 13}, table.NonMonotonic())
}

func TestRosterFind(t *testing.T) {
	roster := Roster{
		{Code: "T1GC20", Fuel: Gasoline},
		{Code: "T5DS1010", Fuel: Diesel},
	}
	tank, ok := roster.Find("t5ds1010")
	require.True(t, ok)
	assert.Equal(t, Diesel, tank.Fuel)

	_, ok = roster.Find("T9")
	assert.False(t, ok)
}

func TestFuelIDValid(t *testing.T) {
	assert.True(t, Diesel.Valid())
	assert.False(t, FuelID("QUEROSENE").Valid())
}
