package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/application/services"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/interfaces/cli/output"
)

// PlanConfig holds configuration for the plan command
type PlanConfig struct {
	ScenarioDir string
	OrderRef    string
	OrderType   string
	CostItems   string
	OutputDir   string
	Format      string
	Verbose     bool
	Help        bool
}

// PlanCommand plans the order of a CSV scenario and prints the report
type PlanCommand struct {
	config PlanConfig
	rt     Runtime
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config PlanConfig, rt Runtime) *PlanCommand {
	return &PlanCommand{
		config: config,
		rt:     rt,
	}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
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

	if c.config.Verbose {
		w := c.rt.out()
		fmt.Fprintf(w, "Scenario: %s\n", c.config.ScenarioDir)
		fmt.Fprintf(w, "  Products: %d\n", len(scenario.Products))
		fmt.Fprintf(w, "  Materials: %d\n", len(scenario.Materials))
		fmt.Fprintf(w, "  Recipes: %d\n", len(scenario.Recipes))
		fmt.Fprintf(w, "  Cost Items: %d\n", len(scenario.CostItems))
		fmt.Fprintf(w, "  Order Lines: %d\n\n", len(scenario.Lines))
	}

	catalog, costItems := memoryCatalog(scenario)
	planning := services.NewPlanningService(services.PlanningDeps{
		Catalog:    catalog,
		CostItems:  costItems,
		Inventory:  catalog,
		EventStore: c.rt.Events,
		Logger:     c.rt.Logger,
	})

	startTime := time.Now()
	plan, err := planning.PlanOrder(ctx, dto.PlanRequest{
		OrderRef:          c.config.OrderRef,
		OrderType:         orderType,
		Lines:             scenario.Lines,
		SelectedCostItems: parseCostItems(c.config.CostItems),
	})
	if err != nil {
		return fmt.Errorf("error planning order: %w", err)
	}

	err = output.Generate(plan, output.Config{
		Format:       c.config.Format,
		OutputDir:    c.config.OutputDir,
		Verbose:      c.config.Verbose,
		PlanningTime: time.Since(startTime),
		Writer:       c.rt.out(),
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Fprint(c.rt.out(), `bomcost plan - material requirements and cost of one order

USAGE:
    bomcost plan -scenario <directory> [options]

OPTIONS:
    -scenario <dir>     Scenario directory containing CSV files
    -order-ref <ref>    Reference recorded on the plan
    -type <type>        Order type: sale, invoice, manufacturing (default: sale)
    -cost-items <ids>   Comma separated cost item IDs (manufacturing orders only)
    -output <dir>       Output directory for results (required for csv)
    -format <fmt>       Output format: text, json, csv (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── products.csv     # Products and selling prices
    ├── materials.csv    # Raw materials with unit cost and stock
    ├── recipes.csv      # Per-variant material recipes
    ├── cost_items.csv   # Manufacturing cost items (optional)
    └── order.csv        # Order lines

CSV FILE FORMATS:

products.csv:
    product_id,name,selling_price
    OXFORD,Oxford,59.90

materials.csv:
    raw_material_id,name,unit,unit_cost,available
    LEATHER,Leather,sqft,5,100

recipes.csv:
    product_id,size,color,raw_material_id,qty_per_unit,unit_cost
    OXFORD,42,black,LEATHER,2,5

cost_items.csv:
    cost_item_id,name,amount_per_unit
    LABOR,Labor,2

order.csv:
    product_id,size,color,quantity,unit_cost
    OXFORD,42,black,10,10

EXAMPLES:
    bomcost plan -scenario scenarios/oxford -verbose
    bomcost plan -scenario scenarios/oxford -type manufacturing -cost-items LABOR,PACK
    bomcost plan -scenario scenarios/oxford -format csv -output results/
`)
}
