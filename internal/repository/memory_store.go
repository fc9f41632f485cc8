// Package repository provides calibration table storage
package repository

import (
	"sort"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/ansel1/merry"
)

// ErrUnknownFuel is returned when a fuel has no registered calibration table
var ErrUnknownFuel = merry.New("no calibration table for fuel")

// TableStore gives read-only access to calibration tables
type TableStore interface {
	Lookup(fuel entities.FuelID) (entities.VolumetricTable, error)
}

// MemoryTableStore keeps calibration tables in memory. It is never mutated
// after construction, so it is safe for concurrent readers.
type MemoryTableStore struct {
	tables map[entities.FuelID]entities.VolumetricTable
}

// NewMemoryTableStore creates a store holding a copy of tables
func NewMemoryTableStore(tables map[entities.FuelID]entities.VolumetricTable) *MemoryTableStore {
	m := make(map[entities.FuelID]entities.VolumetricTable, len(tables))
	for fuel, table := range tables {
		m[fuel] = table
	}
	return &MemoryTableStore{tables: m}
}

// Lookup returns the table for fuel
func (s *MemoryTableStore) Lookup(fuel entities.FuelID) (entities.VolumetricTable, error) {
	table, ok := s.tables[fuel]
	if !ok || table.IsZero() {
		return entities.VolumetricTable{}, merry.Appendf(ErrUnknownFuel, "fuel %q", fuel)
	}
	return table, nil
}

// Fuels returns the fuels that have a table, sorted by id
func (s *MemoryTableStore) Fuels() []entities.FuelID {
	fuels := make([]entities.FuelID, 0, len(s.tables))
	for fuel := range s.tables {
		fuels = append(fuels, fuel)
	}
	sort.Slice(fuels, func(i, j int) bool { return fuels[i] < fuels[j] })
	return fuels
}

// Merge returns a new store with the tables of other replacing those of s
func (s *MemoryTableStore) Merge(other *MemoryTableStore) *MemoryTableStore {
	merged := NewMemoryTableStore(s.tables)
	for fuel, table := range other.tables {
		merged.tables[fuel] = table
	}
	return merged
}
