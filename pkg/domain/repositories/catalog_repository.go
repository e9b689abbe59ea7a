package repositories

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// CatalogRepository provides access to products and their variant recipes
type CatalogRepository interface {
	// GetRecipe returns the recipe entries of a product variant, with each entry
	// carrying the current stock snapshot of its material. Returns an error
	// matching entities.ErrNotFound when the combination has no recipe; an
	// existing but empty recipe returns an empty slice.
	GetRecipe(ctx context.Context, productID entities.ProductID, variant entities.Variant) ([]entities.RecipeEntry, error)
	GetProduct(ctx context.Context, productID entities.ProductID) (*entities.Product, error)
}
