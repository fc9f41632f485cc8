package main

import (
	"bytes"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TANKBOT_CONFIG", "")
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestVolumeCommand(t *testing.T) {
	out, err := runCLI(t, "volume", "diesel", "120")
	require.NoError(t, err)
	assert.Equal(t, "⛽ Diesel Evolux\n📏 Régua: 120 cm\n💧 Volume: 4.511 L\n", out)

	out, err = runCLI(t, "volume", "Etanol", "Comum", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Volume: 0 L")

	_, err = runCLI(t, "volume", "GASOLINA", "260")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "260 cm")

	_, err = runCLI(t, "volume", "QUEROSENE", "10")
	assert.EqualError(t, err, `unknown fuel "QUEROSENE"`)
}

func TestReportCommand(t *testing.T) {
	out, err := runCLI(t, "report", "t5ds1010=120", "T1GC20=abc")
	require.NoError(t, err)
	assert.Contains(t, out, "T1GC20 | abc   | Erro\n")
	assert.Contains(t, out, "T2GA15 |       | ---\n")
	assert.Contains(t, out, "T5DS1010 | 120   | 4.511\n")

	_, err = runCLI(t, "report", "T9=10", "T8=1")
	assert.EqualError(t, err, "unknown tanks: T8, T9")

	_, err = runCLI(t, "report", "T1GC20")
	assert.True(t, merry.Is(err, errUsage))
}

func TestReceptionCommand(t *testing.T) {
	out, err := runCLI(t, "reception", "T5DS1010", "50", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Régua Inicial: 50 cm (1.346 L)\n")
	assert.Contains(t, out, "*ENTRADA: 3.165 LITROS*\n")

	_, err = runCLI(t, "reception", "T5DS1010", "50", "x")
	assert.EqualError(t, err, "Preencha as réguas inicial e final.")
}

func TestListCommands(t *testing.T) {
	out, err := runCLI(t, "fuels")
	require.NoError(t, err)
	assert.Contains(t, out, "ETANOL_ADITIVADO     Etanol V-Power\n")

	out, err = runCLI(t, "tanks")
	require.NoError(t, err)
	assert.Contains(t, out, "T5DS1010   DIESEL               Diesel S10\n")
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{nil, {"nope"}, {"-bogus"}, {"reception", "T1GC20"}} {
		_, err := runCLI(t, args...)
		assert.True(t, merry.Is(err, errUsage), "%v", args)
	}
}
