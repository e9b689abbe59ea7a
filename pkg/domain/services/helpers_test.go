package services

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// stubCatalog is a map-backed CatalogRepository for service tests
type stubCatalog struct {
	recipes  map[entities.RecipeKey][]entities.RecipeEntry
	products map[entities.ProductID]*entities.Product
	err      error
	calls    int
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		recipes:  make(map[entities.RecipeKey][]entities.RecipeEntry),
		products: make(map[entities.ProductID]*entities.Product),
	}
}

func (c *stubCatalog) addRecipe(product entities.ProductID, variant entities.Variant, entries ...entities.RecipeEntry) {
	c.recipes[entities.RecipeKey{ProductID: product, Variant: variant}] = entries
}

func (c *stubCatalog) GetRecipe(_ context.Context, productID entities.ProductID, variant entities.Variant) ([]entities.RecipeEntry, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	entries, ok := c.recipes[entities.RecipeKey{ProductID: productID, Variant: variant}]
	if !ok {
		return nil, entities.NewNotFoundError("recipe", string(productID)+" "+variant.String())
	}
	return append([]entities.RecipeEntry(nil), entries...), nil
}

func (c *stubCatalog) GetProduct(_ context.Context, productID entities.ProductID) (*entities.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	product, ok := c.products[productID]
	if !ok {
		return nil, entities.NewNotFoundError("product", string(productID))
	}
	return product, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(id entities.RawMaterialID, qtyPerUnit, unitCost, available string) entities.RecipeEntry {
	return entities.RecipeEntry{
		RawMaterialID:   id,
		RawMaterialName: string(id),
		QtyPerUnit:      dec(qtyPerUnit),
		UnitCost:        dec(unitCost),
		Available:       dec(available),
	}
}

func line(product entities.ProductID, variant entities.Variant, qty, unitCost string) entities.OrderLine {
	return entities.OrderLine{
		ProductID: product,
		Variant:   variant,
		Quantity:  dec(qty),
		UnitCost:  dec(unitCost),
	}
}

var (
	variantX = entities.Variant{Size: "42", Color: "black"}
	variantY = entities.Variant{Size: "40", Color: "brown"}
)
