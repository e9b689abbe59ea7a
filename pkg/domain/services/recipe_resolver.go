package services

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// RecipeResolver looks up the recipe of a product variant. It holds no cache:
// every call reads the currently persisted recipe.
type RecipeResolver struct {
	catalog repositories.CatalogRepository
}

// NewRecipeResolver creates a resolver backed by the catalog
func NewRecipeResolver(catalog repositories.CatalogRepository) *RecipeResolver {
	return &RecipeResolver{catalog: catalog}
}

// Resolve returns the recipe entries for a product variant in catalog order.
// A missing recipe is an ErrNotFound error; an empty recipe is an empty slice.
func (r *RecipeResolver) Resolve(ctx context.Context, productID entities.ProductID, variant entities.Variant) ([]entities.RecipeEntry, error) {
	entries, err := r.catalog.GetRecipe(ctx, productID, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe for %s %s: %w", productID, variant, err)
	}
	if entries == nil {
		return []entities.RecipeEntry{}, nil
	}
	return entries, nil
}

// UnitMaterialCost resolves the recipe and sums its per-unit material cost
func (r *RecipeResolver) UnitMaterialCost(ctx context.Context, productID entities.ProductID, variant entities.Variant) (decimal.Decimal, error) {
	entries, err := r.Resolve(ctx, productID, variant)
	if err != nil {
		return decimal.Zero, err
	}
	return entities.MaterialCostPerUnit(entries), nil
}
