package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/application/services/orchestration"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/mfgops/bomcost/pkg/interfaces/cli/output"
)

// ProduceConfig holds configuration for the produce command
type ProduceConfig struct {
	ScenarioDir    string
	OrderRef       string
	OrderType      string
	CostItems      string
	Format         string
	AllowShortages bool
	Verbose        bool
	Help           bool
}

// ProduceCommand plans a scenario's order against the database, submits the
// order and starts its production record
type ProduceCommand struct {
	config ProduceConfig
	rt     Runtime
	store  *gormstore.Store
}

// NewProduceCommand creates a new produce command
func NewProduceCommand(config ProduceConfig, rt Runtime, store *gormstore.Store) *ProduceCommand {
	return &ProduceCommand{
		config: config,
		rt:     rt,
		store:  store,
	}
}

// Execute runs the produce command
func (c *ProduceCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	orderType, err := entities.ParseOrderType(c.config.OrderType)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	scenario, err := loadScenario(c.config.ScenarioDir)
	if err != nil {
		return err
	}
	if err := seedStore(ctx, c.store, scenario); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	svc := newStoreServices(c.store, c.rt)
	result, err := svc.orchestrator.PlaceOrder(ctx, dto.PlanRequest{
		OrderRef:          c.config.OrderRef,
		OrderType:         orderType,
		Lines:             scenario.Lines,
		SelectedCostItems: parseCostItems(c.config.CostItems),
	}, orchestration.PlaceOptions{AllowShortages: c.config.AllowShortages})
	if errors.Is(err, orchestration.ErrInsufficientStock) {
		if genErr := output.Generate(result.Plan, output.Config{Format: "text", Writer: c.rt.out()}); genErr != nil {
			return genErr
		}
		return fmt.Errorf("order not placed: %w (use -allow-shortages to override)", err)
	}
	if err != nil {
		return fmt.Errorf("error placing order: %w", err)
	}

	if c.config.Format == "text" || c.config.Format == "" {
		fmt.Fprintln(c.rt.out(), result.GetSummary())
		fmt.Fprintln(c.rt.out())
	}

	view, err := svc.production.Get(ctx, result.Production.ID)
	if err != nil {
		return err
	}
	return output.GenerateProduction(view, output.Config{
		Format:  c.config.Format,
		Verbose: c.config.Verbose,
		Writer:  c.rt.out(),
	})
}

// showHelp displays the help message
func (c *ProduceCommand) showHelp() {
	fmt.Fprint(c.rt.out(), `bomcost produce - submit a scenario's order and start production

USAGE:
    bomcost produce -scenario <directory> [options]

The scenario's products, materials, recipes and cost items are upserted into
DATABASE_URL before the order is planned against it.

OPTIONS:
    -scenario <dir>     Scenario directory containing CSV files
    -order-ref <ref>    Reference of the order (defaults to the stored order ID)
    -type <type>        Order type: sale, invoice, manufacturing (default: sale)
    -cost-items <ids>   Comma separated cost item IDs accrued at the first stage
    -allow-shortages    Place the order even when stock does not cover it
    -format <fmt>       Output format: text, json (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    bomcost produce -scenario scenarios/oxford -type manufacturing -cost-items LABOR
    bomcost produce -scenario scenarios/oxford -allow-shortages -format json
`)
}
