// Package config loads the tank roster, fuel catalogue and calibration tables
package config

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml tables.yaml
var embedded embed.FS

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "TANKBOT_CONFIG"

type Config struct {
	Location    string         `yaml:"location"`
	TablesDB    string         `yaml:"tables_db"`
	TablesFile  string         `yaml:"tables_file"`
	ResultDelay time.Duration  `yaml:"result_delay"`
	Fuels       []FuelConfig   `yaml:"fuels"`
	Tanks       []TankConfig   `yaml:"tanks"`
	Reminders   Reminders      `yaml:"reminders"`
	Import      []ImportSource `yaml:"import"`

	TelegramToken string `yaml:"-"`
	OpenAIKey     string `yaml:"-"`
}

type FuelConfig struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type TankConfig struct {
	Code       string `yaml:"code"`
	Fuel       string `yaml:"fuel"`
	ShortName  string `yaml:"short_name"`
	LabelColor string `yaml:"label_color"`
}

// Reminders schedules the shift report prompt sent to Telegram chats
type Reminders struct {
	Schedule string  `yaml:"schedule"`
	ChatIDs  []int64 `yaml:"chat_ids"`
}

// ImportSource is an HTML calibration table to import for a fuel.
// Source is an http(s) URL or a local file path.
type ImportSource struct {
	Fuel   string `yaml:"fuel"`
	Source string `yaml:"source"`
}

type tablesFile struct {
	Tables map[string]map[int][]float64 `yaml:"tables"`
}

// Load reads the config file at path, or the embedded default when path is
// empty, then applies defaults and the environment (.env included).
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, merry.Append(err, "failed to read .env")
	}

	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = embedded.ReadFile("default.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Config{}, merry.Append(err, "failed to read config")
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and the environment and
// validates the result
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, merry.Append(err, "failed to parse config")
	}
	c.setDefaults()
	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Location == "" {
		c.Location = "America/Sao_Paulo"
	}
	if c.ResultDelay < 0 {
		c.ResultDelay = 0
	}
	for i := range c.Fuels {
		c.Fuels[i].ID = strings.ToUpper(strings.TrimSpace(c.Fuels[i].ID))
	}
	for i := range c.Tanks {
		c.Tanks[i].Code = strings.TrimSpace(c.Tanks[i].Code)
		c.Tanks[i].Fuel = strings.ToUpper(strings.TrimSpace(c.Tanks[i].Fuel))
		if c.Tanks[i].ShortName == "" {
			c.Tanks[i].ShortName = c.Tanks[i].Code
		}
	}
	for i := range c.Import {
		c.Import[i].Fuel = strings.ToUpper(strings.TrimSpace(c.Import[i].Fuel))
	}
}

// Validate reports every problem of the config at once
func (c Config) Validate() error {
	var result *multierror.Error

	if _, err := time.LoadLocation(c.Location); err != nil {
		result = multierror.Append(result, merry.Appendf(err, "location %q", c.Location))
	}

	fuels := map[string]bool{}
	for _, f := range c.Fuels {
		switch {
		case !entities.FuelID(f.ID).Valid():
			result = multierror.Append(result, merry.Errorf("unknown fuel id %q", f.ID))
		case fuels[f.ID]:
			result = multierror.Append(result, merry.Errorf("duplicate fuel id %q", f.ID))
		}
		fuels[f.ID] = true
	}

	if len(c.Tanks) == 0 {
		result = multierror.Append(result, merry.New("no tanks configured"))
	}
	codes := map[string]bool{}
	for i, t := range c.Tanks {
		code := strings.ToUpper(t.Code)
		switch {
		case t.Code == "":
			result = multierror.Append(result, merry.Errorf("tank #%d has no code", i+1))
		case codes[code]:
			result = multierror.Append(result, merry.Errorf("duplicate tank code %q", t.Code))
		}
		codes[code] = true
		if !fuels[t.Fuel] {
			result = multierror.Append(result, merry.Errorf("tank %q uses fuel %q missing from fuels", t.Code, t.Fuel))
		}
	}

	if c.Reminders.Schedule != "" {
		if _, err := cron.ParseStandard(c.Reminders.Schedule); err != nil {
			result = multierror.Append(result, merry.Appendf(err, "reminder schedule %q", c.Reminders.Schedule))
		}
	}

	for _, src := range c.Import {
		if !entities.FuelID(src.Fuel).Valid() {
			result = multierror.Append(result, merry.Errorf("import of unknown fuel %q", src.Fuel))
		}
		if src.Source == "" {
			result = multierror.Append(result, merry.Errorf("import of %q has no source", src.Fuel))
		}
	}

	return result.ErrorOrNil()
}

// LoadLocation returns the configured time zone
func (c Config) LoadLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FuelCatalogue returns the configured fuels in config order
func (c Config) FuelCatalogue() []entities.Fuel {
	fuels := make([]entities.Fuel, len(c.Fuels))
	for i, f := range c.Fuels {
		fuels[i] = entities.Fuel{ID: entities.FuelID(f.ID), Name: f.Name, Color: f.Color}
	}
	return fuels
}

// Roster returns the configured tanks in config order
func (c Config) Roster() entities.Roster {
	roster := make(entities.Roster, len(c.Tanks))
	for i, t := range c.Tanks {
		roster[i] = entities.TankDefinition{
			Code:       t.Code,
			Fuel:       entities.FuelID(t.Fuel),
			ShortName:  t.ShortName,
			LabelColor: t.LabelColor,
		}
	}
	return roster
}
