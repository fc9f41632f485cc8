package config

import (
	"os"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/repository"
	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
	"github.com/powerman/structlog"
	"gopkg.in/yaml.v3"
)

var log = structlog.New(structlog.KeyUnit, "config")

// LoadTables reads the calibration tables from TablesFile, or the embedded
// tables when it is empty
func (c Config) LoadTables() (map[entities.FuelID]entities.VolumetricTable, error) {
	var (
		data []byte
		err  error
	)
	if c.TablesFile == "" {
		data, err = embedded.ReadFile("tables.yaml")
	} else {
		data, err = os.ReadFile(c.TablesFile)
	}
	if err != nil {
		return nil, merry.Append(err, "failed to read calibration tables")
	}
	return ParseTables(data)
}

// ParseTables decodes calibration tables from YAML
func ParseTables(data []byte) (map[entities.FuelID]entities.VolumetricTable, error) {
	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, merry.Append(err, "failed to parse calibration tables")
	}

	var result *multierror.Error
	tables := make(map[entities.FuelID]entities.VolumetricTable, len(file.Tables))
	for name, rows := range file.Tables {
		fuel := entities.FuelID(name)
		if !fuel.Valid() {
			result = multierror.Append(result, merry.Errorf("calibration table for unknown fuel %q", name))
			continue
		}
		decades := make(map[int][]entities.Liters, len(rows))
		for decade, values := range rows {
			row := make([]entities.Liters, len(values))
			for i, v := range values {
				row[i] = entities.Liters(v)
			}
			decades[decade] = row
		}
		table, err := entities.NewVolumetricTable(decades)
		if err != nil {
			result = multierror.Append(result, merry.Appendf(err, "calibration table %s", name))
			continue
		}
		if heights := table.NonMonotonic(); len(heights) > 0 {
			log.Warn("calibration table is not monotonic", "fuel", fuel, "heights", heights)
		}
		tables[fuel] = table
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return tables, nil
}

// OpenTableStore loads the YAML tables, replaces them with any table found in
// TablesDB, and checks that every tank's fuel has a table
func (c Config) OpenTableStore() (*repository.MemoryTableStore, error) {
	tables, err := c.LoadTables()
	if err != nil {
		return nil, err
	}
	store := repository.NewMemoryTableStore(tables)

	if c.TablesDB != "" {
		repo, err := repository.NewSQLiteTableRepository(c.TablesDB)
		if err != nil {
			return nil, err
		}
		defer log.ErrIfFail(repo.Close)

		imported, err := repo.LoadAll()
		if err != nil {
			return nil, err
		}
		store = store.Merge(imported)
	}

	var result *multierror.Error
	for _, tank := range c.Roster() {
		if _, err := store.Lookup(tank.Fuel); err != nil {
			result = multierror.Append(result, merry.Appendf(err, "tank %s", tank.Code))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	log.Info("calibration tables ready", "fuels", store.Fuels())
	return store, nil
}
