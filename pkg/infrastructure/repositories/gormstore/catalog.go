package gormstore

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveProduct inserts or updates a product
func (s *Store) SaveProduct(ctx context.Context, p entities.Product) error {
	model := ProductModel{ID: string(p.ID), Name: p.Name, SellingPrice: p.SellingPrice}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
	return translate(err, "product", string(p.ID))
}

// SaveMaterial inserts or updates a raw material and its stock
func (s *Store) SaveMaterial(ctx context.Context, m entities.RawMaterial) error {
	model := MaterialModel{
		ID:        string(m.ID),
		Name:      m.Name,
		Unit:      m.Unit,
		UnitCost:  m.UnitCost,
		Available: m.Available,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
	return translate(err, "raw material", string(m.ID))
}

// SetAvailable updates the stock of a raw material
func (s *Store) SetAvailable(ctx context.Context, id entities.RawMaterialID, qty decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&MaterialModel{}).Where("id = ?", string(id)).Update("available", qty)
	if res.Error != nil {
		return translate(res.Error, "raw material", string(id))
	}
	if res.RowsAffected == 0 {
		return entities.NewNotFoundError("raw material", string(id))
	}
	return nil
}

// SaveRecipe replaces the recipe of one product variant
func (s *Store) SaveRecipe(ctx context.Context, recipe entities.Recipe) error {
	key := recipeKey(recipe.ProductID, recipe.Variant)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := RecipeModel{ProductID: string(recipe.ProductID), Size: recipe.Variant.Size, Color: recipe.Variant.Color}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&header).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ? AND size = ? AND color = ?", header.ProductID, header.Size, header.Color).
			Delete(&RecipeEntryModel{}).Error; err != nil {
			return err
		}
		if len(recipe.Entries) == 0 {
			return nil
		}
		rows := make([]RecipeEntryModel, len(recipe.Entries))
		for i, e := range recipe.Entries {
			rows[i] = RecipeEntryModel{
				ProductID:     header.ProductID,
				Size:          header.Size,
				Color:         header.Color,
				RawMaterialID: string(e.RawMaterialID),
				Position:      i,
				QtyPerUnit:    e.QtyPerUnit,
				UnitCost:      e.UnitCost,
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", key, translate(err, "recipe", key))
	}
	return nil
}

// GetRecipe reads the recipe of a product variant fresh from the database,
// filling each entry's Available from the material's current stock. An entry
// whose material is missing is a NotFound error.
func (s *Store) GetRecipe(ctx context.Context, productID entities.ProductID, variant entities.Variant) ([]entities.RecipeEntry, error) {
	key := recipeKey(productID, variant)
	db := s.db.WithContext(ctx)

	var header RecipeModel
	err := db.Where("product_id = ? AND size = ? AND color = ?", string(productID), variant.Size, variant.Color).
		Take(&header).Error
	if err != nil {
		return nil, translate(err, "recipe", key)
	}

	var rows []RecipeEntryModel
	if err := db.Where("product_id = ? AND size = ? AND color = ?", header.ProductID, header.Size, header.Color).
		Order("position").Find(&rows).Error; err != nil {
		return nil, translate(err, "recipe", key)
	}
	if len(rows) == 0 {
		return []entities.RecipeEntry{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RawMaterialID
	}
	var materials []MaterialModel
	if err := db.Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, translate(err, "raw material", key)
	}
	byID := make(map[string]MaterialModel, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	entries := make([]entities.RecipeEntry, len(rows))
	for i, row := range rows {
		material, ok := byID[row.RawMaterialID]
		if !ok {
			return nil, entities.NewNotFoundError("raw material", row.RawMaterialID)
		}
		entries[i] = entities.RecipeEntry{
			RawMaterialID:   entities.RawMaterialID(row.RawMaterialID),
			RawMaterialName: material.Name,
			Unit:            material.Unit,
			QtyPerUnit:      row.QtyPerUnit,
			UnitCost:        row.UnitCost,
			Available:       material.Available,
		}
	}
	return entries, nil
}

// GetProduct returns a product by id
func (s *Store) GetProduct(ctx context.Context, productID entities.ProductID) (*entities.Product, error) {
	var model ProductModel
	if err := s.db.WithContext(ctx).Take(&model, "id = ?", string(productID)).Error; err != nil {
		return nil, translate(err, "product", string(productID))
	}
	return &entities.Product{ID: entities.ProductID(model.ID), Name: model.Name, SellingPrice: model.SellingPrice}, nil
}

// GetAvailableQuantity returns the current stock of a raw material
func (s *Store) GetAvailableQuantity(ctx context.Context, materialID entities.RawMaterialID) (decimal.Decimal, error) {
	var model MaterialModel
	if err := s.db.WithContext(ctx).Take(&model, "id = ?", string(materialID)).Error; err != nil {
		return decimal.Zero, translate(err, "raw material", string(materialID))
	}
	return model.Available, nil
}

// SaveCostItem inserts or updates a manufacturing cost item
func (s *Store) SaveCostItem(ctx context.Context, item entities.ManufacturingCostItem) error {
	model := CostItemModel{ID: string(item.ID), Name: item.Name, AmountPerUnit: item.AmountPerUnit}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "amount_per_unit"}),
		}).
		Create(&model).Error
	return translate(err, "cost item", string(item.ID))
}

// ListCostItems returns every cost item in creation order
func (s *Store) ListCostItems(ctx context.Context) ([]entities.ManufacturingCostItem, error) {
	var models []CostItemModel
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, translate(err, "cost item", "")
	}
	items := make([]entities.ManufacturingCostItem, len(models))
	for i, m := range models {
		items[i] = entities.ManufacturingCostItem{ID: entities.CostItemID(m.ID), Name: m.Name, AmountPerUnit: m.AmountPerUnit}
	}
	return items, nil
}

func recipeKey(productID entities.ProductID, variant entities.Variant) string {
	return string(productID) + " " + variant.String()
}
