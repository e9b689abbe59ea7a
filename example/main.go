package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/application/services"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Create repositories
	catalog := memory.NewCatalogRepository()
	costItems := memory.NewCostItemRepository()
	productions := memory.NewProductionRepository()
	eventStore := events.NewInMemoryEventStore(logger)

	// Set up a sneaker line
	setupSneakerCatalog(catalog, costItems)

	planning := services.NewPlanningService(services.PlanningDeps{
		Catalog:    catalog,
		CostItems:  costItems,
		Inventory:  catalog,
		EventStore: eventStore,
		Logger:     logger,
	})
	production := services.NewProductionService(services.ProductionDeps{
		Productions: productions,
		CostItems:   costItems,
		EventStore:  eventStore,
		Logger:      logger,
	})

	white43 := entities.Variant{Size: "43", Color: "white"}
	req := dto.PlanRequest{
		OrderRef:  "MO-2025-001",
		OrderType: entities.Manufacturing,
		Lines: []entities.OrderLine{
			{ProductID: "RUNNER", Variant: white43, Quantity: decimal.NewFromInt(24)},
		},
		SelectedCostItems: []entities.CostItemID{"STITCH"},
	}

	fmt.Println("Planning manufacturing order MO-2025-001...")
	plan, err := planning.PlanOrder(ctx, req)
	if err != nil {
		fmt.Printf("Planning failed: %v\n", err)
		return
	}

	fmt.Println("Material requirements:")
	for _, r := range plan.Requirements {
		fmt.Printf("  %-8s need %6s of %6s %s", r.Requirement.RawMaterialID,
			r.Requirement.QuantityNeeded, r.Requirement.QuantityAvailable, r.Requirement.Unit)
		if !r.IsSufficient() {
			fmt.Printf("  (short %s)", r.Shortfall)
		}
		fmt.Println()
	}
	fmt.Printf("Material value: %s\n", plan.Cost.OrderTotal.StringFixed(2))
	fmt.Printf("With overhead:  %s\n\n", plan.Overhead.FinalCost.StringFixed(2))

	// Commit to production and move through the pipeline
	record, err := production.Start(ctx, dto.StartRequestFromPlan(plan))
	if err != nil {
		fmt.Printf("Start failed: %v\n", err)
		return
	}
	fmt.Printf("Production %s started at %s\n", record.ID, record.Status)

	steps := []struct {
		to    entities.Stage
		items []entities.CostItemID
	}{
		{entities.StageSticking, nil},
		{entities.StageLasting, []entities.CostItemID{"GLUE"}},
		{entities.StageFinished, []entities.CostItemID{"BOX"}},
	}
	for _, step := range steps {
		record, err = production.Advance(ctx, record.ID, step.to, step.items)
		if err != nil {
			fmt.Printf("Advance failed: %v\n", err)
			return
		}
		fmt.Printf("  -> %-9s total %s\n", record.Status, record.TotalCost.StringFixed(2))
	}

	// Moving backwards is rejected
	if _, err := production.Advance(ctx, record.ID, entities.StageCutting, nil); err != nil {
		fmt.Printf("Rejected: %v\n", err)
	}

	eventStore.Flush()
	all, _ := eventStore.ReadAllEvents(0)
	fmt.Printf("\nEvents recorded: %d\n", len(all))
	for _, e := range all {
		fmt.Printf("  %-24s %s\n", e.Type(), e.StreamID())
	}
}

func setupSneakerCatalog(catalog *memory.CatalogRepository, costItems *memory.CostItemRepository) {
	d := decimal.RequireFromString

	catalog.AddProduct(entities.Product{ID: "RUNNER", Name: "Runner", SellingPrice: d("120")})

	catalog.AddMaterial(entities.RawMaterial{ID: "MESH", Name: "Knit mesh", Unit: "m2", UnitCost: d("8.40"), Available: d("20")})
	catalog.AddMaterial(entities.RawMaterial{ID: "FOAM", Name: "EVA foam", Unit: "pair", UnitCost: d("4.10"), Available: d("30")})
	catalog.AddMaterial(entities.RawMaterial{ID: "LACE", Name: "Laces", Unit: "pair", UnitCost: d("0.35"), Available: d("10")})

	catalog.SetRecipe(entities.Recipe{
		ProductID: "RUNNER",
		Variant:   entities.Variant{Size: "43", Color: "white"},
		Entries: []entities.RecipeEntry{
			{RawMaterialID: "MESH", QtyPerUnit: d("0.6"), UnitCost: d("8.40")},
			{RawMaterialID: "FOAM", QtyPerUnit: d("1"), UnitCost: d("4.10")},
			{RawMaterialID: "LACE", QtyPerUnit: d("1"), UnitCost: d("0.35")},
		},
	})

	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "STITCH", Name: "Stitching", AmountPerUnit: d("3")})
	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "GLUE", Name: "Glue and press", AmountPerUnit: d("0.80")})
	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "BOX", Name: "Box", AmountPerUnit: d("0.60")})
}
