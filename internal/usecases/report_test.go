package usecases

import (
	"testing"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoster = entities.Roster{
	{Code: "T1GC20", Fuel: entities.Gasoline, ShortName: "Gasolina Comum"},
	{Code: "T3EC30", Fuel: entities.Ethanol, ShortName: "Etanol Comum"},
	{Code: "T4EA15", Fuel: entities.EthanolAdditive, ShortName: "Etanol V-Power"},
	{Code: "T5DS1010", Fuel: entities.Diesel, ShortName: "Diesel S10"},
}

func TestGenerateReportAllBlank(t *testing.T) {
	aggregator := NewReportAggregator(NewVolumeResolver(testStore(t)))

	for _, heights := range []map[string]string{nil, {}, {"T1GC20": "  ", "T5DS1010": ""}} {
		report := aggregator.GenerateReport(testRoster, heights)
		require.Len(t, report.Entries, len(testRoster))
		for i, entry := range report.Entries {
			assert.Equal(t, testRoster[i].Code, entry.Tank.Code)
			assert.Equal(t, entities.Unmeasured, entry.Status)
			assert.NoError(t, entry.Err)
			assert.Zero(t, entry.Volume)
		}
	}
}

func TestGenerateReportRowPolicy(t *testing.T) {
	aggregator := NewReportAggregator(NewVolumeResolver(testStore(t)))
	now := time.Date(2024, 5, 3, 14, 30, 0, 0, time.UTC)
	aggregator.now = func() time.Time { return now }

	report := aggregator.GenerateReport(testRoster, map[string]string{
		"T1GC20":   "0",
		"T3EC30":   "10.5",
		"T4EA15":   "120", // no table for ETANOL_ADITIVADO in testStore
		"T5DS1010": " 133 ",
		"T9XX":     "50",
	})

	assert.Equal(t, now, report.GeneratedAt)
	require.Len(t, report.Entries, 4)

	zero := report.Entries[0]
	assert.Equal(t, entities.Measured, zero.Status, "0 cm is a measurement, not a blank")
	assert.Equal(t, entities.Liters(0), zero.Volume)

	assert.Equal(t, entities.Failed, report.Entries[1].Status)
	assert.ErrorIs(t, report.Entries[1].Err, ErrNonIntegerInput)

	assert.Equal(t, entities.Failed, report.Entries[2].Status)
	assert.ErrorIs(t, report.Entries[2].Err, ErrUnknownFuel)

	diesel := report.Entries[3]
	assert.Equal(t, entities.Measured, diesel.Status)
	assert.Equal(t, "133", diesel.RawHeight)
	assert.Equal(t, entities.Liters(1330), diesel.Volume)
}

func TestGenerateReportOutOfRangeAndBoundary(t *testing.T) {
	aggregator := NewReportAggregator(NewVolumeResolver(testStore(t)))

	report := aggregator.GenerateReport(testRoster, map[string]string{
		"T1GC20":   "260",
		"T3EC30":   "-3",
		"T5DS1010": "261",
	})

	assert.ErrorIs(t, report.Entries[0].Err, ErrDecadeNotFound)
	assert.ErrorIs(t, report.Entries[1].Err, ErrNegativeValue)
	assert.Equal(t, entities.Unmeasured, report.Entries[2].Status)
	assert.ErrorIs(t, report.Entries[3].Err, ErrOutOfRange)
}
