package commands

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/mfgops/bomcost/pkg/interfaces/cli/output"
)

// AdvanceConfig holds configuration for the advance command
type AdvanceConfig struct {
	ProductionID string
	To           string
	CostItems    string
	Format       string
	OutputDir    string
	Preview      bool
	Help         bool
}

// AdvanceCommand moves a stored production record to a later stage, previews
// its cost, or shows it when no target stage is given
type AdvanceCommand struct {
	config AdvanceConfig
	rt     Runtime
	store  *gormstore.Store
}

// NewAdvanceCommand creates a new advance command
func NewAdvanceCommand(config AdvanceConfig, rt Runtime, store *gormstore.Store) *AdvanceCommand {
	return &AdvanceCommand{
		config: config,
		rt:     rt,
		store:  store,
	}
}

// Execute runs the advance command
func (c *AdvanceCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}
	if c.config.ProductionID == "" {
		return c.list(ctx)
	}

	svc := newStoreServices(c.store, c.rt)
	id := entities.ProductionID(c.config.ProductionID)
	selected := parseCostItems(c.config.CostItems)

	if c.config.Preview {
		preview, err := svc.production.PreviewCost(ctx, id, selected)
		if err != nil {
			return err
		}
		w := c.rt.out()
		fmt.Fprintf(w, "Preview for %s:\n", id)
		for _, line := range preview.Lines {
			fmt.Fprintf(w, "  %-30s = %12s\n", line.Item.String(), line.Contribution.StringFixed(2))
		}
		fmt.Fprintf(w, "Base Cost:  %s\n", preview.OrderTotal.StringFixed(2))
		fmt.Fprintf(w, "Final Cost: %s\n", preview.FinalCost.StringFixed(2))
		return nil
	}

	if c.config.To != "" {
		to, err := entities.ParseStage(c.config.To)
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		if _, err := svc.production.Advance(ctx, id, to, selected); err != nil {
			return err
		}
	}

	view, err := svc.production.Get(ctx, id)
	if err != nil {
		return err
	}
	return output.GenerateProduction(view, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Writer:    c.rt.out(),
	})
}

func (c *AdvanceCommand) list(ctx context.Context) error {
	records, err := newStoreServices(c.store, c.rt).production.List(ctx)
	if err != nil {
		return err
	}
	w := c.rt.out()
	if len(records) == 0 {
		fmt.Fprintln(w, "No production records")
		return nil
	}
	fmt.Fprintf(w, "%-36s %-12s %-18s %-12s %12s\n", "ID", "Order", "Pipeline", "Status", "Total Cost")
	for _, r := range records {
		fmt.Fprintf(w, "%-36s %-12s %-18s %-12s %12s\n",
			r.ID, r.OrderRef, r.Pipeline, r.Status, r.TotalCost.StringFixed(2))
	}
	return nil
}

// showHelp displays the help message
func (c *AdvanceCommand) showHelp() {
	fmt.Fprint(c.rt.out(), `bomcost advance - move a production record through its pipeline

USAGE:
    bomcost advance                                  # list production records
    bomcost advance -id <production id>              # show a record
    bomcost advance -id <id> -to <stage> [options]   # move a record

OPTIONS:
    -id <id>            Production record ID
    -to <stage>         Target stage, later in the record's pipeline
    -cost-items <ids>   Comma separated cost item IDs accrued with the move
    -preview            Print the cost the record would carry, store nothing
    -format <fmt>       Output format: text, json, csv (default: text)
    -output <dir>       Output directory (required for csv)
    -help               Show this help message

PIPELINES:
    manufacturing:     cutting -> sticking -> lasting -> finished
    production-order:  processing -> cutting -> sticking -> lasting -> finishing -> delivery -> done
`)
}
