package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/tank-bot/internal/config"
	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/integration"
	"github.com/abelzeko/tank-bot/internal/repository"
	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
	"github.com/powerman/structlog"
	"github.com/robfig/cron/v3"
)

var log = structlog.New(structlog.KeyUnit, "importer")

func main() {
	config.InitLog()

	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to the YAML configuration")
	schedule := flag.String("schedule", "", "cron schedule for repeated imports; import once when empty")
	flag.Parse()

	log.Info("starting calibration table importer")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	if len(cfg.Import) == 0 {
		log.Fatal("no import sources configured")
	}

	repo, err := repository.NewSQLiteTableRepository(cfg.TablesDB)
	if err != nil {
		log.Fatal("failed to initialize repository", "err", err)
	}
	defer log.ErrIfFail(repo.Close)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scraper := integration.NewTableScraper()

	// Run the import immediately on startup
	if err := importTables(ctx, scraper, repo, cfg.Import); err != nil {
		log.PrintErr("initial import failed", "err", err)
	}
	if *schedule == "" {
		return
	}

	c := cron.New(cron.WithLocation(cfg.LoadLocation()))
	_, err = c.AddFunc(*schedule, func() {
		if err := importTables(ctx, scraper, repo, cfg.Import); err != nil {
			log.PrintErr("scheduled import failed", "err", err)
		}
	})
	if err != nil {
		log.Fatal("failed to set up cron job", "err", err)
	}

	log.Info("importer scheduled", "schedule", *schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// importTables fetches every source and stores its table. A failing source
// does not stop the others; all failures are returned together.
func importTables(ctx context.Context, scraper *integration.TableScraper, repo *repository.SQLiteTableRepository, sources []config.ImportSource) error {
	var result error
	for _, src := range sources {
		fuel := entities.FuelID(src.Fuel)
		table, err := scraper.FetchTable(ctx, src.Source)
		if err != nil {
			result = multierror.Append(result, merry.Prependf(err, "import %s", fuel))
			continue
		}

		previous, err := repo.LastImportTime(fuel)
		if err != nil {
			log.PrintErr("failed to read last import time", "fuel", fuel, "err", err)
		}
		if err := repo.SaveTable(fuel, table); err != nil {
			result = multierror.Append(result, merry.Prependf(err, "save %s", fuel))
			continue
		}
		log.Info("table imported", "fuel", fuel, "decades", len(table.Decades()), "previous", previous)
	}
	return result
}
