package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// CatalogRepository provides in-memory products, raw materials and recipes.
// It also serves as the inventory: a material's Available field is its stock.
type CatalogRepository struct {
	mu        sync.RWMutex
	products  map[entities.ProductID]entities.Product
	materials map[entities.RawMaterialID]entities.RawMaterial
	recipes   map[entities.RecipeKey][]entities.RecipeEntry
}

// NewCatalogRepository creates an empty in-memory catalog
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products:  make(map[entities.ProductID]entities.Product),
		materials: make(map[entities.RawMaterialID]entities.RawMaterial),
		recipes:   make(map[entities.RecipeKey][]entities.RecipeEntry),
	}
}

// Verify interface compliance
var (
	_ repositories.CatalogRepository   = (*CatalogRepository)(nil)
	_ repositories.InventoryRepository = (*CatalogRepository)(nil)
)

// LoadProducts loads products into the repository
func (r *CatalogRepository) LoadProducts(products []*entities.Product) {
	for _, p := range products {
		r.AddProduct(*p)
	}
}

// LoadMaterials loads raw materials into the repository
func (r *CatalogRepository) LoadMaterials(materials []*entities.RawMaterial) {
	for _, m := range materials {
		r.AddMaterial(*m)
	}
}

// LoadRecipes loads recipes into the repository, replacing existing ones
func (r *CatalogRepository) LoadRecipes(recipes []*entities.Recipe) {
	for _, recipe := range recipes {
		r.SetRecipe(*recipe)
	}
}

// AddProduct adds or replaces a product
func (r *CatalogRepository) AddProduct(product entities.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

// AddMaterial adds or replaces a raw material
func (r *CatalogRepository) AddMaterial(material entities.RawMaterial) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials[material.ID] = material
}

// SetRecipe stores the recipe of one product variant
func (r *CatalogRepository) SetRecipe(recipe entities.Recipe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[recipe.Key()] = append([]entities.RecipeEntry{}, recipe.Entries...)
}

// SetAvailable updates the stock of a raw material
func (r *CatalogRepository) SetAvailable(id entities.RawMaterialID, qty decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	material, ok := r.materials[id]
	if !ok {
		return entities.NewNotFoundError("raw material", string(id))
	}
	material.Available = qty
	r.materials[id] = material
	return nil
}

// GetRecipe returns the recipe entries of a product variant with the current
// stock of each material filled in as the Available snapshot. Entries naming
// an unknown material fail with NotFound.
func (r *CatalogRepository) GetRecipe(_ context.Context, productID entities.ProductID, variant entities.Variant) ([]entities.RecipeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.recipes[entities.RecipeKey{ProductID: productID, Variant: variant}]
	if !ok {
		return nil, entities.NewNotFoundError("recipe", string(productID)+" "+variant.String())
	}

	entries := make([]entities.RecipeEntry, len(stored))
	for i, e := range stored {
		material, ok := r.materials[e.RawMaterialID]
		if !ok {
			return nil, entities.NewNotFoundError("raw material", string(e.RawMaterialID))
		}
		e.Available = material.Available
		if e.RawMaterialName == "" {
			e.RawMaterialName = material.Name
		}
		if e.Unit == "" {
			e.Unit = material.Unit
		}
		entries[i] = e
	}
	return entries, nil
}

// GetProduct returns a product by id
func (r *CatalogRepository) GetProduct(_ context.Context, productID entities.ProductID) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[productID]
	if !ok {
		return nil, entities.NewNotFoundError("product", string(productID))
	}
	return &product, nil
}

// GetAvailableQuantity returns the current stock of a raw material
func (r *CatalogRepository) GetAvailableQuantity(_ context.Context, materialID entities.RawMaterialID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	material, ok := r.materials[materialID]
	if !ok {
		return decimal.Zero, entities.NewNotFoundError("raw material", string(materialID))
	}
	return material.Available, nil
}

// ListProducts returns all products ordered by id
func (r *CatalogRepository) ListProducts() []entities.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListMaterials returns all raw materials ordered by id
func (r *CatalogRepository) ListMaterials() []entities.RawMaterial {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.RawMaterial, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListRecipes returns all recipes ordered by product then variant
func (r *CatalogRepository) ListRecipes() []entities.Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Recipe, 0, len(r.recipes))
	for key, entries := range r.recipes {
		out = append(out, entities.Recipe{
			ProductID: key.ProductID,
			Variant:   key.Variant,
			Entries:   append([]entities.RecipeEntry(nil), entries...),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Variant.String() < out[j].Variant.String()
	})
	return out
}
