package repository

import (
	"path/filepath"
	"testing"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T, top []entities.Liters) entities.VolumetricTable {
	t.Helper()
	rows := map[int][]entities.Liters{}
	for decade := 0; decade < 30; decade += 10 {
		row := make([]entities.Liters, entities.DigitsPerDecade)
		for digit := range row {
			row[digit] = entities.Liters((decade + digit) * 10)
		}
		rows[decade] = row
	}
	if top != nil {
		rows[30] = top
	}
	table, err := entities.NewVolumetricTable(rows)
	require.NoError(t, err)
	return table
}

func openTestRepository(t *testing.T) *SQLiteTableRepository {
	t.Helper()
	repo, err := NewSQLiteTableRepository(filepath.Join(t.TempDir(), "test-calibration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndLoadTable(t *testing.T) {
	repo := openTestRepository(t)
	table := sampleTable(t, []entities.Liters{300, 310, 320})

	require.NoError(t, repo.SaveTable(entities.Diesel, table))

	loaded, err := repo.LoadTable(entities.Diesel)
	require.NoError(t, err)
	assert.Equal(t, table.Rows(), loaded.Rows())

	row, ok := loaded.Row(30)
	require.True(t, ok)
	assert.Len(t, row, 3, "partial top decade must survive the round trip")

	importedAt, err := repo.LastImportTime(entities.Diesel)
	require.NoError(t, err)
	assert.False(t, importedAt.IsZero())
}

func TestSaveTableReplacesPreviousImport(t *testing.T) {
	repo := openTestRepository(t)
	require.NoError(t, repo.SaveTable(entities.Gasoline, sampleTable(t, []entities.Liters{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})))
	require.NoError(t, repo.SaveTable(entities.Gasoline, sampleTable(t, nil)))

	loaded, err := repo.LoadTable(entities.Gasoline)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, loaded.Decades())
}

func TestLoadUnknownFuel(t *testing.T) {
	repo := openTestRepository(t)

	_, err := repo.LoadTable(entities.Ethanol)
	assert.True(t, merry.Is(err, ErrUnknownFuel))

	importedAt, err := repo.LastImportTime(entities.Ethanol)
	require.NoError(t, err)
	assert.True(t, importedAt.IsZero())
}

func TestLoadAll(t *testing.T) {
	repo := openTestRepository(t)
	require.NoError(t, repo.SaveTable(entities.Diesel, sampleTable(t, nil)))
	require.NoError(t, repo.SaveTable(entities.Ethanol, sampleTable(t, nil)))

	store, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []entities.FuelID{entities.Diesel, entities.Ethanol}, store.Fuels())

	_, err = store.Lookup(entities.Gasoline)
	assert.True(t, merry.Is(err, ErrUnknownFuel))
}

func TestBuildTableRejectsGaps(t *testing.T) {
	_, err := buildTable([]calibrationRow{
		{Fuel: "DIESEL", Height: 0, Liters: 0},
		{Fuel: "DIESEL", Height: 2, Liters: 20},
	})
	assert.Error(t, err)
}

func TestMemoryTableStoreMerge(t *testing.T) {
	base := NewMemoryTableStore(map[entities.FuelID]entities.VolumetricTable{
		entities.Diesel:   sampleTable(t, nil),
		entities.Gasoline: sampleTable(t, nil),
	})
	override := NewMemoryTableStore(map[entities.FuelID]entities.VolumetricTable{
		entities.Diesel: sampleTable(t, []entities.Liters{1}),
	})

	merged := base.Merge(override)
	table, err := merged.Lookup(entities.Diesel)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30}, table.Decades())

	table, err = base.Lookup(entities.Diesel)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, table.Decades(), "merge must not touch the receiver")
}
