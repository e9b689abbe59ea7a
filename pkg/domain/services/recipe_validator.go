package services

import (
	"fmt"
	"sort"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// RecipeValidator checks loaded recipe data for integrity problems
type RecipeValidator struct{}

// NewRecipeValidator creates a new recipe validator
func NewRecipeValidator() *RecipeValidator {
	return &RecipeValidator{}
}

// ValidationResult contains the results of recipe validation
type ValidationResult struct {
	DuplicateEntries []DuplicateEntry
	UnknownMaterials []entities.RawMaterialID
	UnknownProducts  []entities.ProductID
	Errors           []string
}

// DuplicateEntry is a material listed more than once in one variant's recipe
type DuplicateEntry struct {
	Key        entities.RecipeKey
	MaterialID entities.RawMaterialID
}

// IsValid reports whether no errors were found
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateRecipes cross-checks recipes against the material and product masters
func (v *RecipeValidator) ValidateRecipes(
	recipes []entities.Recipe,
	materials []entities.RawMaterial,
	products []entities.Product,
) *ValidationResult {
	result := &ValidationResult{
		DuplicateEntries: make([]DuplicateEntry, 0),
		UnknownMaterials: make([]entities.RawMaterialID, 0),
		UnknownProducts:  make([]entities.ProductID, 0),
		Errors:           make([]string, 0),
	}

	knownMaterials := make(map[entities.RawMaterialID]bool, len(materials))
	for _, m := range materials {
		knownMaterials[m.ID] = true
	}
	knownProducts := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		knownProducts[p.ID] = true
	}

	missingMaterials := make(map[entities.RawMaterialID]bool)
	missingProducts := make(map[entities.ProductID]bool)

	for _, recipe := range recipes {
		if !knownProducts[recipe.ProductID] {
			missingProducts[recipe.ProductID] = true
		}

		seen := make(map[entities.RawMaterialID]bool, len(recipe.Entries))
		for _, entry := range recipe.Entries {
			if seen[entry.RawMaterialID] {
				result.DuplicateEntries = append(result.DuplicateEntries, DuplicateEntry{Key: recipe.Key(), MaterialID: entry.RawMaterialID})
			}
			seen[entry.RawMaterialID] = true

			if !knownMaterials[entry.RawMaterialID] {
				missingMaterials[entry.RawMaterialID] = true
			}
			if entry.QtyPerUnit.IsNegative() {
				result.Errors = append(result.Errors, fmt.Sprintf("recipe %s %s: negative quantity for %s", recipe.ProductID, recipe.Variant, entry.RawMaterialID))
			}
		}
	}

	for id := range missingMaterials {
		result.UnknownMaterials = append(result.UnknownMaterials, id)
	}
	sort.Slice(result.UnknownMaterials, func(i, j int) bool { return result.UnknownMaterials[i] < result.UnknownMaterials[j] })
	for id := range missingProducts {
		result.UnknownProducts = append(result.UnknownProducts, id)
	}
	sort.Slice(result.UnknownProducts, func(i, j int) bool { return result.UnknownProducts[i] < result.UnknownProducts[j] })

	if len(result.DuplicateEntries) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate recipe entries", len(result.DuplicateEntries)))
	}
	if len(result.UnknownMaterials) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("recipes reference unknown materials: %v", result.UnknownMaterials))
	}
	if len(result.UnknownProducts) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("recipes reference unknown products: %v", result.UnknownProducts))
	}

	return result
}
