package usecases

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Markers used in report rows
const (
	UnmeasuredMarker = "---"
	ErrorMarker      = "Erro"
)

const separator = "------------------------------"

// Formatter renders reports and receipts as shareable text
type Formatter struct {
	loc     *time.Location
	printer *message.Printer
}

// NewFormatter creates a formatter printing times in loc (UTC if nil) and
// numbers with Brazilian grouping
func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		loc:     loc,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Liters formats a volume rounded to whole liters, e.g. "12.345"
func (f *Formatter) Liters(v entities.Liters) string {
	return f.printer.Sprintf("%d", int64(math.Round(float64(v))))
}

func (f *Formatter) dateTime(t time.Time) (date, clock string) {
	t = t.In(f.loc)
	return t.Format("02/01/2006"), t.Format("15:04")
}

// FormatVolume renders a single calculator result
func (f *Formatter) FormatVolume(fuel entities.Fuel, resolved entities.ResolvedVolume) string {
	return fmt.Sprintf("⛽ %s\n📏 Régua: %d cm\n💧 Volume: %s L", fuel.Name, resolved.Height, f.Liters(resolved.Volume))
}

// FormatReport renders a shift report. Rows keep roster order: tank code, the
// height as typed, then liters, UnmeasuredMarker or ErrorMarker.
func (f *Formatter) FormatReport(report entities.Report) string {
	date, clock := f.dateTime(report.GeneratedAt)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("⛽ *CONFERÊNCIA REALIZADA ÀS %s DO DIA %s*\n", clock, date))
	result.WriteString(separator + "\n")
	result.WriteString("TANQUE   | RÉGUA | LITROS\n")

	for _, entry := range report.Entries {
		result.WriteString(fmt.Sprintf("%s | %-5s | %s\n", entry.Tank.Code, entry.RawHeight, f.entryVolume(entry)))
	}

	result.WriteString(separator + "\n")
	return result.String()
}

func (f *Formatter) entryVolume(entry entities.ReportEntry) string {
	switch entry.Status {
	case entities.Measured:
		return f.Liters(entry.Volume)
	case entities.Failed:
		return ErrorMarker
	default:
		return UnmeasuredMarker
	}
}

// FormatReceipt renders the delivery receipt of a reception
func (f *Formatter) FormatReceipt(r entities.ReceptionResult) string {
	date, clock := f.dateTime(r.CalculatedAt)

	var result strings.Builder
	result.WriteString("🚛 *RECEBIMENTO DE COMBUSTÍVEL*\n")
	result.WriteString(fmt.Sprintf("📅 %s - %s\n", date, clock))
	result.WriteString(fmt.Sprintf("Produto: %s (%s)\n", r.Tank.ShortName, r.Tank.Code))
	result.WriteString(separator + "\n")
	result.WriteString(fmt.Sprintf("Régua Inicial: %d cm (%s L)\n", r.InitialHeight, f.Liters(r.InitialVolume)))
	result.WriteString(fmt.Sprintf("Régua Final:   %d cm (%s L)\n", r.FinalHeight, f.Liters(r.FinalVolume)))
	result.WriteString(separator + "\n")
	result.WriteString(fmt.Sprintf("*ENTRADA: %s LITROS*", f.Liters(r.Received)))
	return result.String()
}

// ShareURL returns a WhatsApp link that pre-fills text
func ShareURL(text string) string {
	return "https://wa.me/?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
