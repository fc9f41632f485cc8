package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abelzeko/tank-bot/internal/config"
	"github.com/abelzeko/tank-bot/internal/usecases"
	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "main")

const usage = `Usage: tankgauge [-config path] <command> [args]

Commands:
  volume <fuel> <cm>                 volume of one reading
  report [TANK=cm ...]               shift report of every tank
  reception <tank> <initial> <final> fuel received between two readings
  fuels                              list the fuels
  tanks                              list the tanks
`

var errUsage = merry.New("invalid usage")

func main() {
	config.InitLog()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if merry.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tankgauge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv(config.EnvConfigPath), "path to the YAML configuration")
	if err := fs.Parse(args); err != nil {
		return merry.Prepend(errUsage, err.Error())
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, err := cfg.OpenTableStore()
	if err != nil {
		return err
	}
	useCase := usecases.NewGaugeUseCase(cfg.FuelCatalogue(), cfg.Roster(), store, cfg.LoadLocation(), nil)

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "volume":
		if len(rest) < 2 {
			return errUsage
		}
		name := strings.Join(rest[:len(rest)-1], " ")
		fuel, ok := useCase.FindFuel(name)
		if !ok {
			return merry.Errorf("unknown fuel %q", name)
		}
		resolved, err := useCase.Volume(fuel.ID, rest[len(rest)-1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, useCase.FormatVolume(resolved))
	case "report":
		heights, err := parseHeights(useCase, rest)
		if err != nil {
			return err
		}
		_, text := useCase.ShiftReport(heights)
		fmt.Fprint(out, text)
	case "reception":
		if len(rest) != 3 {
			return errUsage
		}
		_, receipt, err := useCase.Reception(rest[0], rest[1], rest[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, receipt)
	case "fuels":
		for _, fuel := range useCase.Fuels() {
			fmt.Fprintf(out, "%-20s %s\n", fuel.ID, fuel.Name)
		}
	case "tanks":
		for _, tank := range useCase.Roster() {
			fmt.Fprintf(out, "%-10s %-20s %s\n", tank.Code, tank.Fuel, tank.ShortName)
		}
	default:
		return merry.Prependf(errUsage, "unknown command %q", command)
	}
	return nil
}

// parseHeights reads TANK=cm arguments. Unknown tanks are an error.
func parseHeights(useCase *usecases.GaugeUseCase, args []string) (map[string]string, error) {
	heights := make(map[string]string, len(args))
	var unknown []string
	for _, arg := range args {
		code, height, found := strings.Cut(arg, "=")
		if !found {
			return nil, merry.Prependf(errUsage, "expected TANK=cm, got %q", arg)
		}
		tank, ok := useCase.Roster().Find(code)
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		heights[tank.Code] = height
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, merry.Errorf("unknown tanks: %s", strings.Join(unknown, ", "))
	}
	return heights, nil
}
