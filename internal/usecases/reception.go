package usecases

import (
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
)

// ReceptionCalculator computes the volume delivered into a tank from the
// readings taken before and after unloading
type ReceptionCalculator struct {
	resolver *VolumeResolver
	now      func() time.Time
}

// NewReceptionCalculator creates a calculator using resolver for both readings
func NewReceptionCalculator(resolver *VolumeResolver) *ReceptionCalculator {
	return &ReceptionCalculator{resolver: resolver, now: time.Now}
}

// ComputeReception validates both readings, resolves them against the tank's
// fuel and returns final minus initial volume. A negative delta (readings
// entered in the wrong order) is returned as is.
func (c *ReceptionCalculator) ComputeReception(tank entities.TankDefinition, initialRaw, finalRaw string) (entities.ReceptionResult, error) {
	initial, errInitial := strconv.Atoi(strings.TrimSpace(initialRaw))
	final, errFinal := strconv.Atoi(strings.TrimSpace(finalRaw))
	if errInitial != nil || errFinal != nil {
		return entities.ReceptionResult{}, newLookupError(MissingInput, "Preencha as réguas inicial e final.")
	}
	if initial < entities.MinHeight || final < entities.MinHeight {
		return entities.ReceptionResult{}, newLookupError(NegativeValue, "Valores não podem ser negativos.")
	}
	if initial > entities.MaxHeight || final > entities.MaxHeight {
		return entities.ReceptionResult{}, newLookupError(OutOfRange, "Régua excede limite (%dcm).", entities.MaxHeight)
	}

	initialVolume, err := c.resolver.ResolveVolume(tank.Fuel, initial)
	if err != nil {
		return entities.ReceptionResult{}, lookupFailed(err)
	}
	finalVolume, err := c.resolver.ResolveVolume(tank.Fuel, final)
	if err != nil {
		return entities.ReceptionResult{}, lookupFailed(err)
	}

	return entities.ReceptionResult{
		Tank:          tank,
		InitialHeight: initial,
		FinalHeight:   final,
		InitialVolume: initialVolume,
		FinalVolume:   finalVolume,
		Received:      finalVolume - initialVolume,
		CalculatedAt:  c.now(),
	}, nil
}

func lookupFailed(cause error) *LookupError {
	le := newLookupError(LookupFailed, "Erro ao calcular volume na tabela.")
	le.Err = cause
	return le
}
