package usecases

import (
	"errors"
	"strconv"
	"strings"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/repository"
	"github.com/ansel1/merry"
)

// VolumeResolver turns a dipstick height into a volume using the calibration
// table of the fuel. It holds no mutable state.
type VolumeResolver struct {
	store repository.TableStore
}

// NewVolumeResolver creates a resolver reading tables from store
func NewVolumeResolver(store repository.TableStore) *VolumeResolver {
	return &VolumeResolver{store: store}
}

// ParseHeight parses an operator-typed height. Only plain integers are
// accepted; range checks are left to ResolveVolume.
func ParseHeight(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, newLookupError(EmptyInput, "Por favor, digite a altura da régua.")
	}
	if strings.ContainsAny(s, ".,") {
		return 0, newLookupError(NonIntegerInput, "Digite apenas números inteiros (cm).")
	}
	height, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return 0, newLookupError(NegativeValue, "O valor não pode ser negativo.")
			}
			return 0, newLookupError(OutOfRange, "Altura excede o limite do tanque (%dcm).", entities.MaxHeight)
		}
		return 0, newLookupError(NonIntegerInput, "Digite apenas números inteiros (cm).")
	}
	return height, nil
}

// ResolveVolume returns the tabled volume of fuel at height centimetres
func (r *VolumeResolver) ResolveVolume(fuel entities.FuelID, height int) (entities.Liters, error) {
	if height < entities.MinHeight {
		return 0, newLookupError(NegativeValue, "O valor não pode ser negativo.")
	}
	if height > entities.MaxHeight {
		return 0, newLookupError(OutOfRange, "Altura excede o limite do tanque (%dcm).", entities.MaxHeight)
	}

	decade := height / entities.DigitsPerDecade * entities.DigitsPerDecade
	digit := height % entities.DigitsPerDecade

	if fuel == "" {
		return 0, newLookupError(UnknownFuel, "Selecione qual combustível medir.")
	}
	table, err := r.store.Lookup(fuel)
	if err != nil {
		le := newLookupError(UnknownFuel, "Combustível sem tabela volumétrica: %s.", fuel)
		if !merry.Is(err, repository.ErrUnknownFuel) {
			le.Err = err
		}
		return 0, le
	}

	row, ok := table.Row(decade)
	if !ok {
		return 0, newLookupError(DecadeNotFound, "Valor não encontrado na tabela: %d cm (faixa %d ausente).", height, decade)
	}
	if digit >= len(row) {
		return 0, newLookupError(DigitNotFound, "Valor não encontrado na tabela: %d cm.", height)
	}
	return row[digit], nil
}

// Resolve is ResolveVolume returning the reading alongside the volume
func (r *VolumeResolver) Resolve(fuel entities.FuelID, height int) (entities.ResolvedVolume, error) {
	volume, err := r.ResolveVolume(fuel, height)
	if err != nil {
		return entities.ResolvedVolume{}, err
	}
	return entities.ResolvedVolume{Fuel: fuel, Height: height, Volume: volume}, nil
}

// VolumeForInput parses raw and resolves it, in the order the calculator
// reports problems: input format, range, fuel, table coverage.
func (r *VolumeResolver) VolumeForInput(fuel entities.FuelID, raw string) (entities.ResolvedVolume, error) {
	height, err := ParseHeight(raw)
	if err != nil {
		return entities.ResolvedVolume{}, err
	}
	return r.Resolve(fuel, height)
}
