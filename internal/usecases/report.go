package usecases

import (
	"strings"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
)

// ReportAggregator resolves one reading per tank of a roster
type ReportAggregator struct {
	resolver *VolumeResolver
	now      func() time.Time
}

// NewReportAggregator creates an aggregator using resolver for every row
func NewReportAggregator(resolver *VolumeResolver) *ReportAggregator {
	return &ReportAggregator{resolver: resolver, now: time.Now}
}

// GenerateReport builds one entry per tank, in roster order. heights is keyed
// by tank code; a missing or blank height leaves the tank unmeasured instead
// of resolving it at 0 cm. No total is computed.
func (a *ReportAggregator) GenerateReport(roster entities.Roster, heights map[string]string) entities.Report {
	report := entities.Report{
		GeneratedAt: a.now(),
		Entries:     make([]entities.ReportEntry, 0, len(roster)),
	}

	for _, tank := range roster {
		raw := strings.TrimSpace(heights[tank.Code])
		entry := entities.ReportEntry{Tank: tank, RawHeight: raw}

		if raw == "" {
			entry.Status = entities.Unmeasured
			report.Entries = append(report.Entries, entry)
			continue
		}

		resolved, err := a.resolver.VolumeForInput(tank.Fuel, raw)
		if err != nil {
			entry.Status = entities.Failed
			entry.Err = err
		} else {
			entry.Status = entities.Measured
			entry.Volume = resolved.Volume
		}
		report.Entries = append(report.Entries, entry)
	}

	return report
}
