package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/tank-bot/internal/api"
	"github.com/abelzeko/tank-bot/internal/config"
	"github.com/abelzeko/tank-bot/internal/integration/openai"
	"github.com/abelzeko/tank-bot/internal/usecases"
	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
	"github.com/robfig/cron/v3"
)

var log = structlog.New(structlog.KeyUnit, "main")

func main() {
	config.InitLog()

	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to the YAML configuration")
	flag.Parse()

	log.Info("starting Tank Bot")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	store, err := cfg.OpenTableStore()
	if err != nil {
		log.Fatal("failed to load calibration tables", "err", err)
	}

	var interpreter openai.ReadingInterpreter
	readingInterpreter, err := openai.NewReadingInterpreter()
	switch {
	case merry.Is(err, openai.ErrNoAPIKey):
		log.Warn("free-text readings disabled", "reason", err)
	case err != nil:
		log.Fatal("failed to initialize OpenAI service", "err", err)
	default:
		interpreter = readingInterpreter
	}

	loc := cfg.LoadLocation()
	useCase := usecases.NewGaugeUseCase(cfg.FuelCatalogue(), cfg.Roster(), store, loc, interpreter)
	router := api.NewRouter(useCase)

	telegramBot, err := api.NewTelegramBot(cfg.TelegramToken, router, cfg.ResultDelay)
	if err != nil {
		log.Fatal("failed to initialize Telegram bot", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Reminders.ChatIDs) > 0 {
		c := cron.New(cron.WithLocation(loc))
		_, err = c.AddFunc(cfg.Reminders.Schedule, func() {
			log.Info("sending shift reminder", "chats", len(cfg.Reminders.ChatIDs))
			telegramBot.Broadcast(cfg.Reminders.ChatIDs, router.ReminderText())
		})
		if err != nil {
			log.Fatal("failed to set up reminder job", "err", err)
		}
		c.Start()
		defer c.Stop()
		log.Info("shift reminders scheduled", "schedule", cfg.Reminders.Schedule)
	}

	telegramBot.Start(ctx)
	log.Info("bot stopped")
}
