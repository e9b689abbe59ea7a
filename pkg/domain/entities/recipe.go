package entities

import "github.com/shopspring/decimal"

// RecipeEntry is one raw material line of a product variant's bill of materials.
// UnitCost is captured when the recipe is saved; Available is the stock snapshot
// reported alongside the entry.
type RecipeEntry struct {
	RawMaterialID   RawMaterialID   `json:"raw_material_id"`
	RawMaterialName string          `json:"raw_material_name"`
	Unit            string          `json:"unit"`
	QtyPerUnit      decimal.Decimal `json:"qty_per_unit"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Available       decimal.Decimal `json:"available"`
}

// NewRecipeEntry creates a validated RecipeEntry
func NewRecipeEntry(materialID RawMaterialID, name string, qtyPerUnit, unitCost, available decimal.Decimal) (*RecipeEntry, error) {
	if string(materialID) == "" {
		return nil, NewValidationError("raw material id", "cannot be empty")
	}
	if qtyPerUnit.IsNegative() {
		return nil, NewValidationError("quantity per unit", "cannot be negative, got %s", qtyPerUnit)
	}
	if unitCost.IsNegative() {
		return nil, NewValidationError("unit cost", "cannot be negative, got %s", unitCost)
	}

	return &RecipeEntry{
		RawMaterialID:   materialID,
		RawMaterialName: name,
		QtyPerUnit:      qtyPerUnit,
		UnitCost:        unitCost,
		Available:       available,
	}, nil
}

// Cost returns the material cost of this entry for one unit of product
func (e RecipeEntry) Cost() decimal.Decimal {
	return e.QtyPerUnit.Mul(e.UnitCost)
}

// Recipe is the bill of materials of one product variant
type Recipe struct {
	ProductID ProductID     `json:"product_id"`
	Variant   Variant       `json:"variant"`
	Entries   []RecipeEntry `json:"entries"`
}

// RecipeKey indexes recipes by product and variant
type RecipeKey struct {
	ProductID ProductID
	Variant   Variant
}

// Key returns the lookup key of the recipe
func (r Recipe) Key() RecipeKey {
	return RecipeKey{ProductID: r.ProductID, Variant: r.Variant}
}

// MaterialCostPerUnit sums qtyPerUnit x unitCost over the recipe entries
func MaterialCostPerUnit(entries []RecipeEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Cost())
	}
	return total
}
