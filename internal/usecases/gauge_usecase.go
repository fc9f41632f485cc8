// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/integration/openai"
	"github.com/abelzeko/tank-bot/internal/repository"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "usecases")

// GaugeUseCase ties the fuel catalogue and tank roster to the volume
// calculations offered to operators
type GaugeUseCase struct {
	fuels       []entities.Fuel
	roster      entities.Roster
	resolver    *VolumeResolver
	reports     *ReportAggregator
	receptions  *ReceptionCalculator
	formatter   *Formatter
	interpreter openai.ReadingInterpreter
}

// NewGaugeUseCase creates a new gauge use case. interpreter may be nil, in
// which case free-text messages are not understood.
func NewGaugeUseCase(fuels []entities.Fuel, roster entities.Roster, store repository.TableStore, loc *time.Location, interpreter openai.ReadingInterpreter) *GaugeUseCase {
	resolver := NewVolumeResolver(store)
	return &GaugeUseCase{
		fuels:       fuels,
		roster:      roster,
		resolver:    resolver,
		reports:     NewReportAggregator(resolver),
		receptions:  NewReceptionCalculator(resolver),
		formatter:   NewFormatter(loc),
		interpreter: interpreter,
	}
}

// Fuels returns the fuel catalogue
func (uc *GaugeUseCase) Fuels() []entities.Fuel {
	return uc.fuels
}

// Roster returns the tanks in display order
func (uc *GaugeUseCase) Roster() entities.Roster {
	return uc.roster
}

// Formatter returns the text formatter of the use case
func (uc *GaugeUseCase) Formatter() *Formatter {
	return uc.formatter
}

// FindFuel looks a fuel up by id or display name, ignoring case
func (uc *GaugeUseCase) FindFuel(name string) (entities.Fuel, bool) {
	name = strings.TrimSpace(name)
	for _, fuel := range uc.fuels {
		if strings.EqualFold(string(fuel.ID), name) || strings.EqualFold(fuel.Name, name) {
			return fuel, true
		}
	}
	return entities.Fuel{}, false
}

// fuelByID returns the catalogue entry of id, or a bare entry named after it
func (uc *GaugeUseCase) fuelByID(id entities.FuelID) entities.Fuel {
	for _, fuel := range uc.fuels {
		if fuel.ID == id {
			return fuel
		}
	}
	return entities.Fuel{ID: id, Name: string(id)}
}

// NewCalculator creates a calculator form bound to this use case's tables
func (uc *GaugeUseCase) NewCalculator() *Calculator {
	return NewCalculator(uc.resolver)
}

// Volume resolves a typed height for fuel
func (uc *GaugeUseCase) Volume(fuel entities.FuelID, raw string) (entities.ResolvedVolume, error) {
	return uc.resolver.VolumeForInput(fuel, raw)
}

// FormatVolume renders a calculator result
func (uc *GaugeUseCase) FormatVolume(resolved entities.ResolvedVolume) string {
	return uc.formatter.FormatVolume(uc.fuelByID(resolved.Fuel), resolved)
}

// ShiftReport resolves heights (keyed by tank code) over the whole roster and
// returns the report with its text
func (uc *GaugeUseCase) ShiftReport(heights map[string]string) (entities.Report, string) {
	report := uc.reports.GenerateReport(uc.roster, heights)

	measured, failed := 0, 0
	for _, entry := range report.Entries {
		switch entry.Status {
		case entities.Measured:
			measured++
		case entities.Failed:
			failed++
		}
	}
	log.Info("shift report generated", "tanks", len(report.Entries), "measured", measured, "failed", failed)

	return report, uc.formatter.FormatReport(report)
}

// Reception computes the delivery into the tank with the given code and
// returns the result with its receipt text
func (uc *GaugeUseCase) Reception(code, initialRaw, finalRaw string) (entities.ReceptionResult, string, error) {
	tank, ok := uc.roster.Find(strings.TrimSpace(code))
	if !ok {
		if strings.TrimSpace(code) == "" {
			return entities.ReceptionResult{}, "", newLookupError(UnknownTank, "Selecione um tanque.")
		}
		return entities.ReceptionResult{}, "", newLookupError(UnknownTank, "Tanque desconhecido: %s.", code)
	}

	result, err := uc.receptions.ComputeReception(tank, initialRaw, finalRaw)
	if err != nil {
		return entities.ReceptionResult{}, "", err
	}
	log.Info("reception calculated", "tank", tank.Code, "received", float64(result.Received))
	return result, uc.formatter.FormatReceipt(result), nil
}

// HandleNaturalLanguageQuery interprets a free-text message and answers it
func (uc *GaugeUseCase) HandleNaturalLanguageQuery(ctx context.Context, query string) (string, error) {
	if uc.interpreter == nil {
		return "Não entendi. Use /help para ver os comandos disponíveis.", nil
	}

	choices := make([]openai.FuelChoice, len(uc.fuels))
	for i, fuel := range uc.fuels {
		choices[i] = openai.FuelChoice{ID: string(fuel.ID), Name: fuel.Name}
	}

	agentResp, err := uc.interpreter.InterpretReading(ctx, query, choices)
	if err != nil {
		log.PrintErr("error interpreting user query", "err", err)
		return "Desculpe, não consegui entender agora. Tente novamente ou use /help.", nil
	}

	log.Info("agent response", "command", agentResp.CommandName, "fuel", agentResp.FuelID, "height", agentResp.Height)

	switch agentResp.CommandName {
	case openai.CommandResolveVolume:
		fuel, ok := uc.FindFuel(agentResp.FuelID)
		if !ok || agentResp.Height == "" {
			return agentResp.UserMessage, nil
		}
		msg := agentResp.UserMessage
		if msg != "" {
			msg += "\n\n"
		}
		resolved, err := uc.resolver.VolumeForInput(fuel.ID, agentResp.Height)
		if err != nil {
			return msg + "⚠️ " + err.Error(), nil
		}
		return msg + uc.FormatVolume(resolved), nil
	case openai.CommandGeneralQuery:
		return agentResp.UserMessage, nil
	default:
		log.Warn("agent returned unexpected command", "command", agentResp.CommandName)
		return "Não sei responder a isso. Use /help para ver os comandos.", nil
	}
}
