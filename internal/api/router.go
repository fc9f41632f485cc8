// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/usecases"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "api")

const helpText = "Comandos disponíveis:\n" +
	"/combustiveis - Lista os combustíveis\n" +
	"/tanques - Lista os tanques\n" +
	"/medir [combustível] - Seleciona o combustível; depois envie a altura em cm\n" +
	"/volume [combustível] [cm] - Calcula o volume de uma leitura\n" +
	"/relatorio [TANQUE=cm ...] - Gera a conferência de todos os tanques\n" +
	"/recebimento [tanque] [inicial] [final] - Calcula a entrada de combustível\n" +
	"/help - Mostra esta ajuda"

// Reply is the answer to one message. Pending replies carry a result that is
// shown only after the display delay; Pending returns false when the result
// was superseded in the meantime and must be dropped.
type Reply struct {
	Text    string
	Pending func() (string, bool)
}

// chatState holds the forms of one chat
type chatState struct {
	calc      *usecases.Calculator
	reception usecases.Session[entities.ReceptionResult]
}

// Router turns chat messages into replies. It knows nothing about Telegram.
type Router struct {
	useCase *usecases.GaugeUseCase

	mu    sync.Mutex
	chats map[int64]*chatState
}

// NewRouter creates a router serving useCase
func NewRouter(useCase *usecases.GaugeUseCase) *Router {
	return &Router{
		useCase: useCase,
		chats:   make(map[int64]*chatState),
	}
}

func (r *Router) chat(chatID int64) *chatState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.chats[chatID]
	if !ok {
		st = &chatState{calc: r.useCase.NewCalculator()}
		r.chats[chatID] = st
	}
	return st
}

// HandleCommand answers /command args
func (r *Router) HandleCommand(ctx context.Context, chatID int64, command, args string) Reply {
	args = strings.TrimSpace(args)
	switch command {
	case "start":
		return Reply{Text: "Bem-vindo ao Tanque Certo! Use /medir para calcular um volume ou /help para ver os comandos."}
	case "help":
		return Reply{Text: helpText}
	case "combustiveis":
		return Reply{Text: r.fuelList()}
	case "tanques":
		return Reply{Text: r.tankList()}
	case "medir":
		return r.handleSelectFuel(chatID, args)
	case "volume":
		return r.handleVolume(chatID, args)
	case "relatorio":
		return r.handleReport(args)
	case "recebimento":
		return r.handleReception(chatID, args)
	default:
		log.Info("unknown command", "command", command, "chat", chatID)
		return Reply{Text: "Comando desconhecido. Use /help para ver os comandos disponíveis."}
	}
}

// HandleText answers a message that is not a command. While a fuel is
// selected, height-like messages feed the calculator; anything else goes to
// the free-text interpreter.
func (r *Router) HandleText(ctx context.Context, chatID int64, text string) Reply {
	st := r.chat(chatID)
	if st.calc.Fuel() != "" && looksLikeHeight(text) {
		st.calc.SetHeight(text)
		return r.calculate(st)
	}

	answer, err := r.useCase.HandleNaturalLanguageQuery(ctx, text)
	if err != nil {
		log.PrintErr("natural language query failed", "err", err)
		return Reply{Text: "Não entendi. Use /help para ver os comandos disponíveis."}
	}
	return Reply{Text: answer}
}

// looksLikeHeight accepts anything the height parser should judge, including
// the decimals and signs it rejects with a helpful message
func looksLikeHeight(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, c := range text {
		if !strings.ContainsRune("0123456789.,+- ", c) {
			return false
		}
	}
	return true
}

func (r *Router) fuelList() string {
	var b strings.Builder
	b.WriteString("Combustíveis:\n\n")
	for _, fuel := range r.useCase.Fuels() {
		b.WriteString(fmt.Sprintf("• %s - %s\n", fuel.ID, fuel.Name))
	}
	return b.String()
}

func (r *Router) tankList() string {
	var b strings.Builder
	b.WriteString("Tanques:\n\n")
	for _, tank := range r.useCase.Roster() {
		b.WriteString(fmt.Sprintf("• %s - %s (%s)\n", tank.Code, tank.ShortName, tank.Fuel))
	}
	return b.String()
}

func (r *Router) handleSelectFuel(chatID int64, args string) Reply {
	fuel, ok := r.useCase.FindFuel(args)
	if !ok {
		return Reply{Text: "Selecione qual combustível medir. Exemplo: /medir DIESEL\n\n" + r.fuelList()}
	}
	r.chat(chatID).calc.SelectFuel(fuel.ID)
	return Reply{Text: fmt.Sprintf("Combustível selecionado: %s. Envie a altura da régua em cm.", fuel.Name)}
}

func (r *Router) handleVolume(chatID int64, args string) Reply {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return Reply{Text: "Informe o combustível e a altura. Exemplo: /volume DIESEL 120"}
	}
	name := strings.Join(fields[:len(fields)-1], " ")
	fuel, ok := r.useCase.FindFuel(name)
	if !ok {
		return Reply{Text: fmt.Sprintf("Combustível desconhecido: %s.\n\n%s", name, r.fuelList())}
	}

	st := r.chat(chatID)
	st.calc.SelectFuel(fuel.ID)
	st.calc.SetHeight(fields[len(fields)-1])
	return r.calculate(st)
}

// calculate runs the calculator and defers showing its outcome
func (r *Router) calculate(st *chatState) Reply {
	ticket, resolved, err := st.calc.Calculate()
	return Reply{
		Pending: func() (string, bool) {
			if !st.calc.Complete(ticket, resolved, err) {
				return "", false
			}
			if err != nil {
				return "⚠️ " + err.Error(), true
			}
			return r.useCase.FormatVolume(resolved), true
		},
	}
}

// parseReportArgs reads "T1GC20=120 T2GA15=80" or "T1GC20 120 T2GA15 80"
func (r *Router) parseReportArgs(args string) (map[string]string, []string) {
	heights := map[string]string{}
	var unknown []string

	set := func(code, height string) {
		tank, ok := r.useCase.Roster().Find(code)
		if !ok {
			unknown = append(unknown, code)
			return
		}
		heights[tank.Code] = height
	}

	fields := strings.Fields(args)
	for i := 0; i < len(fields); i++ {
		if code, height, found := strings.Cut(fields[i], "="); found {
			set(code, height)
			continue
		}
		if i+1 < len(fields) && !strings.Contains(fields[i+1], "=") {
			set(fields[i], fields[i+1])
			i++
			continue
		}
		unknown = append(unknown, fields[i])
	}
	sort.Strings(unknown)
	return heights, unknown
}

func (r *Router) handleReport(args string) Reply {
	heights, unknown := r.parseReportArgs(args)
	_, text := r.useCase.ShiftReport(heights)
	if len(unknown) > 0 {
		text += fmt.Sprintf("\n⚠️ Ignorados: %s", strings.Join(unknown, ", "))
	}
	text += "\n\n" + usecases.ShareURL(text)
	return Reply{Text: text}
}

func (r *Router) handleReception(chatID int64, args string) Reply {
	fields := strings.Fields(args)
	var code, initial, final string
	if len(fields) > 0 {
		code = fields[0]
	}
	if len(fields) > 1 {
		initial = fields[1]
	}
	if len(fields) > 2 {
		final = fields[2]
	}

	st := r.chat(chatID)
	ticket := st.reception.Begin()
	result, receipt, err := r.useCase.Reception(code, initial, final)
	return Reply{
		Pending: func() (string, bool) {
			if !st.reception.Complete(ticket, result, err) {
				return "", false
			}
			if err != nil {
				return "⚠️ " + err.Error(), true
			}
			return receipt + "\n\n" + usecases.ShareURL(receipt), true
		},
	}
}

// ReminderText is the prompt sent at shift changes
func (r *Router) ReminderText() string {
	codes := make([]string, 0, len(r.useCase.Roster()))
	for _, tank := range r.useCase.Roster() {
		codes = append(codes, tank.Code+"=")
	}
	return "⏰ Hora da conferência dos tanques!\nEnvie: /relatorio " + strings.Join(codes, " ")
}
