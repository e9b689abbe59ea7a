package gormstore

import (
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

type ProductModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	SellingPrice decimal.Decimal
	UpdatedAt    time.Time
}

func (ProductModel) TableName() string { return "products" }

type MaterialModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Unit      string
	UnitCost  decimal.Decimal
	Available decimal.Decimal
	UpdatedAt time.Time
}

func (MaterialModel) TableName() string { return "raw_materials" }

// RecipeModel marks that a product variant has a recipe, possibly with no entries
type RecipeModel struct {
	ProductID string `gorm:"primaryKey"`
	Size      string `gorm:"primaryKey"`
	Color     string `gorm:"primaryKey"`
	UpdatedAt time.Time
}

func (RecipeModel) TableName() string { return "recipes" }

type RecipeEntryModel struct {
	ID            uint   `gorm:"primaryKey"`
	ProductID     string `gorm:"not null;uniqueIndex:idx_recipe_entry"`
	Size          string `gorm:"not null;uniqueIndex:idx_recipe_entry"`
	Color         string `gorm:"not null;uniqueIndex:idx_recipe_entry"`
	RawMaterialID string `gorm:"not null;uniqueIndex:idx_recipe_entry"`
	Position      int    `gorm:"not null"`
	QtyPerUnit    decimal.Decimal
	UnitCost      decimal.Decimal
}

func (RecipeEntryModel) TableName() string { return "recipe_entries" }

type CostItemModel struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	AmountPerUnit decimal.Decimal
	CreatedAt     time.Time
}

func (CostItemModel) TableName() string { return "manufacturing_cost_items" }

type ProductionModel struct {
	ID               string `gorm:"primaryKey"`
	OrderRef         string `gorm:"index"`
	Date             time.Time
	Pipeline         string `gorm:"not null"`
	Status           string `gorm:"not null"`
	BaseCost         decimal.Decimal
	TotalUnits       decimal.Decimal
	TotalCost        decimal.Decimal
	AccruedCostItems []entities.ManufacturingCostItem `gorm:"serializer:json"`
	History          []entities.StageTransition       `gorm:"serializer:json"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ProductionModel) TableName() string { return "production_records" }

type OrderModel struct {
	ID         string               `gorm:"primaryKey"`
	OrderRef   string               `gorm:"index"`
	OrderType  string               `gorm:"not null"`
	Lines      []entities.OrderLine `gorm:"serializer:json"`
	OrderTotal decimal.Decimal
	FinalCost  decimal.Decimal
	Status     string `gorm:"not null"`
	CreatedAt  time.Time
}

func (OrderModel) TableName() string { return "orders" }

func productionToModel(r *entities.ProductionRecord) ProductionModel {
	return ProductionModel{
		ID:               string(r.ID),
		OrderRef:         r.OrderRef,
		Date:             r.Date,
		Pipeline:         r.Pipeline.String(),
		Status:           r.Status.String(),
		BaseCost:         r.BaseCost,
		TotalUnits:       r.TotalUnits,
		TotalCost:        r.TotalCost,
		AccruedCostItems: r.AccruedCostItems,
		History:          r.History,
	}
}

func (m ProductionModel) toEntity() (*entities.ProductionRecord, error) {
	pipeline, err := entities.ParsePipeline(m.Pipeline)
	if err != nil {
		return nil, err
	}
	status, err := entities.ParseStage(m.Status)
	if err != nil {
		return nil, err
	}
	return &entities.ProductionRecord{
		ID:               entities.ProductionID(m.ID),
		OrderRef:         m.OrderRef,
		Date:             m.Date,
		Pipeline:         pipeline,
		Status:           status,
		BaseCost:         m.BaseCost,
		TotalUnits:       m.TotalUnits,
		AccruedCostItems: m.AccruedCostItems,
		TotalCost:        m.TotalCost,
		History:          m.History,
	}, nil
}
