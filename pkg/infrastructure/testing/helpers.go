package testing

import (
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

// Variants used by the shoe scenario
var (
	Black42 = entities.Variant{Size: "42", Color: "black"}
	Brown40 = entities.Variant{Size: "40", Color: "brown"}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// BuildShoeScenario builds a small footwear catalog.
//
// OXFORD uses 2 sqft of leather per pair in both variants; 42/black also takes
// one rubber sole and 0.5 spools of thread. BOOT uses 3.5 sqft of leather and a
// sole. Leather stock is 100, soles 12, thread 3.
func BuildShoeScenario() (*memory.CatalogRepository, *memory.CostItemRepository) {
	catalog := memory.NewCatalogRepository()
	costItems := memory.NewCostItemRepository()

	catalog.AddProduct(entities.Product{ID: "OXFORD", Name: "Oxford", SellingPrice: d("59.90")})
	catalog.AddProduct(entities.Product{ID: "BOOT", Name: "Chelsea boot", SellingPrice: d("89.00")})

	catalog.AddMaterial(entities.RawMaterial{ID: "LEATHER", Name: "Leather", Unit: "sqft", UnitCost: d("5"), Available: d("100")})
	catalog.AddMaterial(entities.RawMaterial{ID: "SOLE", Name: "Rubber sole", Unit: "pair", UnitCost: d("3.25"), Available: d("12")})
	catalog.AddMaterial(entities.RawMaterial{ID: "THREAD", Name: "Waxed thread", Unit: "spool", UnitCost: d("1.10"), Available: d("3")})

	catalog.SetRecipe(entities.Recipe{ProductID: "OXFORD", Variant: Black42, Entries: []entities.RecipeEntry{
		{RawMaterialID: "LEATHER", QtyPerUnit: d("2"), UnitCost: d("5")},
		{RawMaterialID: "SOLE", QtyPerUnit: d("1"), UnitCost: d("3.25")},
		{RawMaterialID: "THREAD", QtyPerUnit: d("0.5"), UnitCost: d("1.10")},
	}})
	catalog.SetRecipe(entities.Recipe{ProductID: "OXFORD", Variant: Brown40, Entries: []entities.RecipeEntry{
		{RawMaterialID: "LEATHER", QtyPerUnit: d("2"), UnitCost: d("5")},
	}})
	catalog.SetRecipe(entities.Recipe{ProductID: "BOOT", Variant: Black42, Entries: []entities.RecipeEntry{
		{RawMaterialID: "LEATHER", QtyPerUnit: d("3.5"), UnitCost: d("5")},
		{RawMaterialID: "SOLE", QtyPerUnit: d("1"), UnitCost: d("3.25")},
	}})

	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: d("2")})
	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "PACK", Name: "Packaging", AmountPerUnit: d("0.5")})
	costItems.AddCostItem(entities.ManufacturingCostItem{ID: "QC", Name: "Quality check", AmountPerUnit: d("0")})

	return catalog, costItems
}

// ExampleOrderLines is 10 pairs of 42/black and 5 pairs of 40/brown Oxfords
// at a captured unit cost of 10.
func ExampleOrderLines() []entities.OrderLine {
	return []entities.OrderLine{
		{ProductID: "OXFORD", Variant: Black42, Quantity: d("10"), UnitCost: d("10")},
		{ProductID: "OXFORD", Variant: Brown40, Quantity: d("5"), UnitCost: d("10")},
	}
}
