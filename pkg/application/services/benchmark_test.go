package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/mfgops/bomcost/pkg/infrastructure/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newPlanningServiceForBenchmark(catalog *memory.CatalogRepository, costItems *memory.CostItemRepository) *PlanningService {
	return NewPlanningService(PlanningDeps{
		Catalog:   catalog,
		CostItems: costItems,
		Logger:    zerolog.Nop(),
	})
}

func BenchmarkPlanningService_ExampleOrder(b *testing.B) {
	ctx := context.Background()
	catalog, costItems := testhelpers.BuildShoeScenario()
	service := newPlanningServiceForBenchmark(catalog, costItems)

	req := dto.PlanRequest{
		OrderType:         entities.Manufacturing,
		Lines:             testhelpers.ExampleOrderLines(),
		SelectedCostItems: []entities.CostItemID{"LABOR", "PACK"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.PlanOrder(ctx, req); err != nil {
			b.Fatalf("PlanOrder failed: %v", err)
		}
	}
}

func BenchmarkPlanningService_WideRecipe(b *testing.B) {
	ctx := context.Background()
	catalog := setupWideRecipe(200) // 200 materials in one recipe
	service := newPlanningServiceForBenchmark(catalog, memory.NewCostItemRepository())

	req := dto.PlanRequest{
		OrderType: entities.Manufacturing,
		Lines: []entities.OrderLine{
			{ProductID: "WIDE", Variant: testhelpers.Black42, Quantity: decimal.NewFromInt(25)},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.PlanOrder(ctx, req); err != nil {
			b.Fatalf("PlanOrder failed: %v", err)
		}
	}
}

func BenchmarkPlanningService_ManyLines(b *testing.B) {
	ctx := context.Background()
	catalog, costItems := testhelpers.BuildShoeScenario()
	service := newPlanningServiceForBenchmark(catalog, costItems)

	// 500 lines over the same three recipes
	lines := make([]entities.OrderLine, 0, 500)
	for i := 0; i < 500; i++ {
		line := entities.OrderLine{ProductID: "OXFORD", Variant: testhelpers.Black42, Quantity: decimal.NewFromInt(int64(i%7 + 1)), UnitCost: decimal.NewFromInt(10)}
		switch i % 3 {
		case 1:
			line.Variant = testhelpers.Brown40
		case 2:
			line.ProductID = "BOOT"
		}
		lines = append(lines, line)
	}
	req := dto.PlanRequest{OrderType: entities.Sale, Lines: lines}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.PlanOrder(ctx, req); err != nil {
			b.Fatalf("PlanOrder failed: %v", err)
		}
	}
}

func setupWideRecipe(materialCount int) *memory.CatalogRepository {
	catalog := memory.NewCatalogRepository()
	catalog.AddProduct(entities.Product{ID: "WIDE", Name: "Wide product", SellingPrice: decimal.NewFromInt(500)})

	entries := make([]entities.RecipeEntry, 0, materialCount)
	for i := 0; i < materialCount; i++ {
		id := entities.RawMaterialID(fmt.Sprintf("MAT_%d", i))
		cost := decimal.New(int64(i%50+1), -1)
		catalog.AddMaterial(entities.RawMaterial{
			ID:        id,
			Name:      fmt.Sprintf("Material %d", i),
			Unit:      "ea",
			UnitCost:  cost,
			Available: decimal.NewFromInt(int64(i * 3)),
		})
		entries = append(entries, entities.RecipeEntry{RawMaterialID: id, QtyPerUnit: decimal.NewFromInt(int64(i%4 + 1)), UnitCost: cost})
	}
	catalog.SetRecipe(entities.Recipe{ProductID: "WIDE", Variant: testhelpers.Black42, Entries: entries})

	return catalog
}
