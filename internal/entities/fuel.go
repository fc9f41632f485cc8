// Package entities contains the core domain objects for the tank-bot application
package entities

import "strings"

// FuelID identifies a fuel/product variant stored in a tank
type FuelID string

// Known fuel identifiers
const (
	Gasoline         FuelID = "GASOLINA"
	GasolineAdditive FuelID = "GASOLINA_ADITIVADA"
	Diesel           FuelID = "DIESEL"
	Ethanol          FuelID = "ETANOL_COMUM"
	EthanolAdditive  FuelID = "ETANOL_ADITIVADO"
)

// KnownFuels lists every fuel identifier the system recognises
var KnownFuels = []FuelID{Gasoline, GasolineAdditive, Diesel, EthanolAdditive, Ethanol}

// Valid reports whether id is one of KnownFuels
func (id FuelID) Valid() bool {
	for _, known := range KnownFuels {
		if id == known {
			return true
		}
	}
	return false
}

// Fuel describes how a fuel is presented to operators
type Fuel struct {
	ID    FuelID
	Name  string // Display name, e.g. "Diesel Evolux"
	Color string // Display style hint
}

// TankDefinition associates a tank code with the fuel it stores
type TankDefinition struct {
	Code       string // Unique short code, e.g. "T5DS1010"
	Fuel       FuelID
	ShortName  string
	LabelColor string
}

// Roster is the ordered list of tanks; order is the display order of reports
type Roster []TankDefinition

// Find returns the tank with the given code
func (r Roster) Find(code string) (TankDefinition, bool) {
	for _, tank := range r {
		if strings.EqualFold(tank.Code, code) {
			return tank, true
		}
	}
	return TankDefinition{}, false
}
