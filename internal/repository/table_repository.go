package repository

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "repository")

// calibrationRow is one tabled height as stored in SQLite
type calibrationRow struct {
	Fuel   string  `db:"fuel"`
	Height int     `db:"height"`
	Liters float64 `db:"liters"`
}

// SQLiteTableRepository stores calibration tables in SQLite
type SQLiteTableRepository struct {
	db     *sqlx.DB
	DBPath string
}

// NewSQLiteTableRepository opens (and if needed creates) the table database
func NewSQLiteTableRepository(dbPath string) (*SQLiteTableRepository, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, merry.Append(err, "failed to create database directory")
		}
		dbPath = filepath.Join(dbDir, "calibration.db")
	}

	log.Info("opening database", "path", dbPath)
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, merry.Append(err, "failed to open database")
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS calibration (
		fuel TEXT NOT NULL,
		height INTEGER NOT NULL CHECK (height >= 0 AND height <= 260),
		liters REAL NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (fuel, height)
	);
	CREATE INDEX IF NOT EXISTS idx_calibration_fuel ON calibration(fuel);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, merry.Append(err, "failed to create tables")
	}

	return &SQLiteTableRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteTableRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveTable replaces the stored table of fuel
func (r *SQLiteTableRepository) SaveTable(fuel entities.FuelID, table entities.VolumetricTable) error {
	if table.IsZero() {
		return merry.Errorf("refusing to save empty table for %s", fuel)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return merry.Append(err, "failed to begin transaction")
	}

	if _, err := tx.Exec(`DELETE FROM calibration WHERE fuel = ?`, string(fuel)); err != nil {
		tx.Rollback()
		return merry.Appendf(err, "failed to clear table of %s", fuel)
	}

	stmt, err := tx.Preparex(`INSERT INTO calibration(fuel, height, liters, imported_at) VALUES(?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return merry.Append(err, "failed to prepare statement")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, decade := range table.Decades() {
		row, _ := table.Row(decade)
		for digit, liters := range row {
			if _, err := stmt.Exec(string(fuel), decade+digit, float64(liters), now); err != nil {
				tx.Rollback()
				return merry.Appendf(err, "failed to insert %s at %d cm", fuel, decade+digit)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return merry.Append(err, "failed to commit transaction")
	}

	log.Info("saved calibration table", "fuel", fuel, "heights", count)
	return nil
}

// LoadTable reads the stored table of fuel
func (r *SQLiteTableRepository) LoadTable(fuel entities.FuelID) (entities.VolumetricTable, error) {
	var rows []calibrationRow
	err := r.db.Select(&rows, `SELECT fuel, height, liters FROM calibration WHERE fuel = ? ORDER BY height`, string(fuel))
	if err != nil {
		return entities.VolumetricTable{}, merry.Appendf(err, "failed to query table of %s", fuel)
	}
	if len(rows) == 0 {
		return entities.VolumetricTable{}, merry.Appendf(ErrUnknownFuel, "fuel %q", fuel)
	}
	return buildTable(rows)
}

// Fuels returns the fuels with a stored table
func (r *SQLiteTableRepository) Fuels() ([]entities.FuelID, error) {
	var names []string
	if err := r.db.Select(&names, `SELECT DISTINCT fuel FROM calibration ORDER BY fuel`); err != nil {
		return nil, merry.Append(err, "failed to query fuels")
	}
	fuels := make([]entities.FuelID, len(names))
	for i, name := range names {
		fuels[i] = entities.FuelID(name)
	}
	return fuels, nil
}

// LoadAll reads every stored table into a memory store
func (r *SQLiteTableRepository) LoadAll() (*MemoryTableStore, error) {
	fuels, err := r.Fuels()
	if err != nil {
		return nil, err
	}
	tables := make(map[entities.FuelID]entities.VolumetricTable, len(fuels))
	for _, fuel := range fuels {
		table, err := r.LoadTable(fuel)
		if err != nil {
			return nil, err
		}
		tables[fuel] = table
	}
	log.Info("loaded calibration tables", "count", len(tables), "path", r.DBPath)
	return NewMemoryTableStore(tables), nil
}

// LastImportTime returns when the table of fuel was last saved, or the zero
// time if it was never imported
func (r *SQLiteTableRepository) LastImportTime(fuel entities.FuelID) (time.Time, error) {
	var importedAt time.Time
	err := r.db.Get(&importedAt, `SELECT imported_at FROM calibration WHERE fuel = ? ORDER BY imported_at DESC LIMIT 1`, string(fuel))
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, merry.Append(err, "failed to get last import time")
	}
	return importedAt, nil
}

// buildTable groups height-ordered rows into decades. Heights inside a decade
// must be contiguous from digit 0.
func buildTable(rows []calibrationRow) (entities.VolumetricTable, error) {
	decades := make(map[int][]entities.Liters)
	for _, row := range rows {
		decade := row.Height / entities.DigitsPerDecade * entities.DigitsPerDecade
		digit := row.Height % entities.DigitsPerDecade
		if digit != len(decades[decade]) {
			return entities.VolumetricTable{}, merry.Errorf("table of %s has a gap before %d cm", row.Fuel, row.Height)
		}
		decades[decade] = append(decades[decade], entities.Liters(row.Liters))
	}
	table, err := entities.NewVolumetricTable(decades)
	if err != nil {
		return entities.VolumetricTable{}, merry.Wrap(err)
	}
	return table, nil
}
