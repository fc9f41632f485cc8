package usecases

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterLiters(t *testing.T) {
	f := NewFormatter(nil)
	assert.Equal(t, "0", f.Liters(0))
	assert.Equal(t, "515", f.Liters(515))
	assert.Equal(t, "12.346", f.Liters(12345.6))
	assert.Equal(t, "-12.345", f.Liters(-12345))
}

func TestFormatReport(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	f := NewFormatter(loc)
	report := entities.Report{
		GeneratedAt: time.Date(2024, 5, 3, 17, 30, 0, 0, time.UTC),
		Entries: []entities.ReportEntry{
			{Tank: testRoster[0], RawHeight: "133", Status: entities.Measured, Volume: 13300},
			{Tank: testRoster[1], RawHeight: "", Status: entities.Unmeasured},
			{Tank: testRoster[2], RawHeight: "10.5", Status: entities.Failed, Err: ErrNonIntegerInput},
			{Tank: testRoster[3], RawHeight: "0", Status: entities.Measured, Volume: 0},
		},
	}

	want := "⛽ *CONFERÊNCIA REALIZADA ÀS 14:30 DO DIA 03/05/2024*\n" +
		"------------------------------\n" +
		"TANQUE   | RÉGUA | LITROS\n" +
		"T1GC20 | 133   | 13.300\n" +
		"T3EC30 |       | ---\n" +
		"T4EA15 | 10.5  | Erro\n" +
		"T5DS1010 | 0     | 0\n" +
		"------------------------------\n"
	assert.Equal(t, want, f.FormatReport(report))
}

func TestFormatReceipt(t *testing.T) {
	f := NewFormatter(time.UTC)
	receipt := f.FormatReceipt(entities.ReceptionResult{
		Tank:          entities.TankDefinition{Code: "T5DS1010", ShortName: "Diesel S10"},
		InitialHeight: 50,
		FinalHeight:   120,
		InitialVolume: 1500,
		FinalVolume:   6250.4,
		Received:      4750.4,
		CalculatedAt:  time.Date(2024, 1, 9, 8, 5, 0, 0, time.UTC),
	})

	lines := strings.Split(receipt, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "🚛 *RECEBIMENTO DE COMBUSTÍVEL*", lines[0])
	assert.Equal(t, "📅 09/01/2024 - 08:05", lines[1])
	assert.Equal(t, "Produto: Diesel S10 (T5DS1010)", lines[2])
	assert.Equal(t, "Régua Inicial: 50 cm (1.500 L)", lines[4])
	assert.Equal(t, "Régua Final:   120 cm (6.250 L)", lines[5])
	assert.Equal(t, "*ENTRADA: 4.750 LITROS*", lines[7])
}

func TestShareURL(t *testing.T) {
	text := "ENTRADA: 4.750 LITROS\n& mais"
	link := ShareURL(text)

	require.True(t, strings.HasPrefix(link, "https://wa.me/?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, text, parsed.Query().Get("text"))
}
