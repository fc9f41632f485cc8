package entities

import "fmt"

// Height limits of a dipstick reading, in centimetres
const (
	MinHeight = 0
	MaxHeight = 260
)

// DigitsPerDecade is the number of entries in one calibration row
const DigitsPerDecade = 10

const decadeSlots = MaxHeight/DigitsPerDecade + 1

// Liters is a volume in liters
type Liters float64

// VolumetricTable maps a height in cm to a volume for one fuel.
// Rows are keyed by decade (height rounded down to a multiple of ten); entry d of
// a row is the volume at decade+d. A nil slot means the decade is not tabled.
type VolumetricTable struct {
	rows [decadeSlots][]Liters
}

// NewVolumetricTable builds a table from decade rows.
// Every row holds exactly ten entries except the highest decade, which may be
// shorter when the calibration stops before its last digit.
func NewVolumetricTable(rows map[int][]Liters) (VolumetricTable, error) {
	var t VolumetricTable
	if len(rows) == 0 {
		return t, fmt.Errorf("calibration table has no rows")
	}

	top := -1
	for decade := range rows {
		if decade > top {
			top = decade
		}
	}

	for decade, entries := range rows {
		if decade < MinHeight || decade > MaxHeight || decade%DigitsPerDecade != 0 {
			return VolumetricTable{}, fmt.Errorf("invalid decade key %d", decade)
		}
		switch {
		case len(entries) == 0 || len(entries) > DigitsPerDecade:
			return VolumetricTable{}, fmt.Errorf("decade %d has %d entries", decade, len(entries))
		case len(entries) < DigitsPerDecade && decade != top:
			return VolumetricTable{}, fmt.Errorf("decade %d has %d entries, only the last decade may be partial", decade, len(entries))
		}
		row := make([]Liters, len(entries))
		copy(row, entries)
		t.rows[decade/DigitsPerDecade] = row
	}
	return t, nil
}

// Row returns the entries tabled for decade
func (t VolumetricTable) Row(decade int) ([]Liters, bool) {
	if decade < MinHeight || decade > MaxHeight || decade%DigitsPerDecade != 0 {
		return nil, false
	}
	row := t.rows[decade/DigitsPerDecade]
	return row, row != nil
}

// Decades returns the tabled decade keys in ascending order
func (t VolumetricTable) Decades() []int {
	var decades []int
	for i, row := range t.rows {
		if row != nil {
			decades = append(decades, i*DigitsPerDecade)
		}
	}
	return decades
}

// Rows returns a copy of the table keyed by decade
func (t VolumetricTable) Rows() map[int][]Liters {
	rows := make(map[int][]Liters)
	for _, decade := range t.Decades() {
		row, _ := t.Row(decade)
		rows[decade] = append([]Liters(nil), row...)
	}
	return rows
}

// IsZero reports whether the table has no rows at all
func (t VolumetricTable) IsZero() bool {
	return len(t.Decades()) == 0
}

// NonMonotonic returns the heights at which the volume drops compared to the
// previous tabled height. Calibration data is expected to return none.
func (t VolumetricTable) NonMonotonic() []int {
	var (
		heights []int
		prev    Liters
		seen    bool
	)
	for _, decade := range t.Decades() {
		row, _ := t.Row(decade)
		for digit, v := range row {
			if seen && v < prev {
				heights = append(heights, decade+digit)
			}
			prev, seen = v, true
		}
	}
	return heights
}
