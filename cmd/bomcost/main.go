package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfgops/bomcost/pkg/infrastructure/config"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	"github.com/mfgops/bomcost/pkg/infrastructure/logging"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/mfgops/bomcost/pkg/interfaces/cli/commands"
	"github.com/rs/zerolog"
)

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-help" || args[0] == "--help" {
		usage(os.Stdout)
		return 0
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventStore, closeEvents := newEventStore(cfg.Kafka, logger)
	defer closeEvents()

	rt := commands.Runtime{Logger: logger, Events: eventStore}
	cmd, closeStore, err := build(args[0], args[1:], cfg, rt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer closeStore()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// build parses the subcommand's flags and wires its dependencies
func build(name string, args []string, cfg config.Config, rt commands.Runtime) (command, func(), error) {
	noop := func() {}
	fs := flag.NewFlagSet(name, flag.ExitOnError)

	switch name {
	case "plan":
		var c commands.PlanConfig
		fs.StringVar(&c.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&c.OrderRef, "order-ref", "", "Reference recorded on the plan")
		fs.StringVar(&c.OrderType, "type", "sale", "Order type: sale, invoice, manufacturing")
		fs.StringVar(&c.CostItems, "cost-items", "", "Comma separated cost item IDs")
		fs.StringVar(&c.OutputDir, "output", "", "Output directory for results (optional)")
		fs.StringVar(&c.Format, "format", "text", "Output format: text, json, csv")
		fs.BoolVar(&c.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&c.Help, "help", false, "Show help message")
		_ = fs.Parse(args)
		return commands.NewPlanCommand(c, rt), noop, nil

	case "produce":
		var c commands.ProduceConfig
		fs.StringVar(&c.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&c.OrderRef, "order-ref", "", "Reference of the order")
		fs.StringVar(&c.OrderType, "type", "sale", "Order type: sale, invoice, manufacturing")
		fs.StringVar(&c.CostItems, "cost-items", "", "Comma separated cost item IDs")
		fs.StringVar(&c.Format, "format", "text", "Output format: text, json")
		fs.BoolVar(&c.AllowShortages, "allow-shortages", false, "Place the order even when stock is short")
		fs.BoolVar(&c.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&c.Help, "help", false, "Show help message")
		_ = fs.Parse(args)
		if c.Help {
			return commands.NewProduceCommand(c, rt, nil), noop, nil
		}
		store, closeStore, err := openStore(cfg.Database, rt.Logger)
		if err != nil {
			return nil, noop, err
		}
		return commands.NewProduceCommand(c, rt, store), closeStore, nil

	case "advance":
		var c commands.AdvanceConfig
		fs.StringVar(&c.ProductionID, "id", "", "Production record ID")
		fs.StringVar(&c.To, "to", "", "Target stage")
		fs.StringVar(&c.CostItems, "cost-items", "", "Comma separated cost item IDs")
		fs.StringVar(&c.Format, "format", "text", "Output format: text, json, csv")
		fs.StringVar(&c.OutputDir, "output", "", "Output directory (required for csv)")
		fs.BoolVar(&c.Preview, "preview", false, "Preview the cost without storing anything")
		fs.BoolVar(&c.Help, "help", false, "Show help message")
		_ = fs.Parse(args)
		if c.Help {
			return commands.NewAdvanceCommand(c, rt, nil), noop, nil
		}
		store, closeStore, err := openStore(cfg.Database, rt.Logger)
		if err != nil {
			return nil, noop, err
		}
		return commands.NewAdvanceCommand(c, rt, store), closeStore, nil

	case "serve":
		var c commands.ServeConfig
		fs.StringVar(&c.Addr, "addr", cfg.Server.Addr, "Listen address")
		fs.StringVar(&c.ScenarioDir, "scenario", "", "Scenario directory to seed the catalog from (optional)")
		fs.BoolVar(&c.Help, "help", false, "Show help message")
		_ = fs.Parse(args)
		if c.Help {
			return commands.NewServeCommand(c, rt, nil), noop, nil
		}
		store, closeStore, err := openStore(cfg.Database, rt.Logger)
		if err != nil {
			return nil, noop, err
		}
		return commands.NewServeCommand(c, rt, store), closeStore, nil

	default:
		usage(os.Stderr)
		return nil, noop, fmt.Errorf("unknown command %q", name)
	}
}

func openStore(cfg config.DatabaseConfig, logger zerolog.Logger) (*gormstore.Store, func(), error) {
	store, err := gormstore.Open(cfg.URL, logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.AutoMigrate(); err != nil {
		_ = store.Close()
		return nil, func() {}, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}, nil
}

// newEventStore returns the process event store. Events are forwarded to
// Kafka when brokers are configured.
func newEventStore(cfg config.KafkaConfig, logger zerolog.Logger) (*events.InMemoryEventStore, func()) {
	store := events.NewInMemoryEventStore(logger)
	if !cfg.Enabled() {
		return store, store.Flush
	}

	publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Brokers, cfg.Topic), logger)
	if err := store.Subscribe(events.AllEventTypes, publisher); err != nil {
		logger.Warn().Err(err).Msg("failed to subscribe kafka publisher")
	}
	logger.Debug().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publishing events to kafka")

	return store, func() {
		store.Flush()
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close kafka writer")
		}
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `bomcost - BOM requirements aggregation and costing

USAGE:
    bomcost <command> [options]

COMMANDS:
    plan       Plan a CSV scenario's order and print the report
    produce    Submit a scenario's order and start its production record
    advance    List, show, preview or move production records
    serve      Serve the JSON API

Run "bomcost <command> -help" for the options of a command.

ENVIRONMENT (also read from .env):
    DATABASE_URL    gorm database (default file:bomcost.db?cache=shared)
    HTTP_ADDR       serve listen address (default :8080)
    LOG_LEVEL       debug, info, warn, error (default info)
    LOG_FORMAT      json, console (default json)
    KAFKA_BROKERS   comma separated brokers; empty disables publishing
    KAFKA_TOPIC     event topic (default production-events)
`)
}
