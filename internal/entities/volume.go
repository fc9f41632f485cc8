package entities

import "time"

// ResolvedVolume is a successful table lookup
type ResolvedVolume struct {
	Fuel   FuelID
	Height int
	Volume Liters
}

// EntryStatus tells how a report row was resolved
type EntryStatus int

const (
	// Unmeasured rows had no reading; they are not the same as a 0 cm reading
	Unmeasured EntryStatus = iota
	Measured
	Failed
)

func (s EntryStatus) String() string {
	switch s {
	case Unmeasured:
		return "unmeasured"
	case Measured:
		return "measured"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ReportEntry is one tank row of a shift report
type ReportEntry struct {
	Tank      TankDefinition
	RawHeight string // Exactly as the operator typed it
	Status    EntryStatus
	Volume    Liters // Set when Status is Measured
	Err       error  // Set when Status is Failed
}

// Report is a shift report over the whole roster
type Report struct {
	GeneratedAt time.Time
	Entries     []ReportEntry
}

// ReceptionResult is the volume delivered into one tank between two readings
type ReceptionResult struct {
	Tank          TankDefinition
	InitialHeight int
	FinalHeight   int
	InitialVolume Liters
	FinalVolume   Liters
	Received      Liters // FinalVolume - InitialVolume, may be negative
	CalculatedAt  time.Time
}
