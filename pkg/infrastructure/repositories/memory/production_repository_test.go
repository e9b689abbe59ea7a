package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func TestProductionRepository_SaveAndGet(t *testing.T) {
	repo := NewProductionRepository()
	ctx := context.Background()

	record, err := entities.NewProductionRecord("P-1", "SO-1", time.Now(), entities.PipelineManufacturing, decimal.NewFromInt(150), decimal.NewFromInt(15))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	if err := repo.SaveProduction(ctx, record); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	record.Status = entities.StageFinished

	stored, err := repo.GetProduction(ctx, "P-1")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if stored.Status != entities.StageCutting {
		t.Errorf("Expected stored status cutting, got %s", stored.Status)
	}

	if _, err := repo.GetProduction(ctx, "P-404"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := repo.SaveProduction(ctx, nil); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for nil record, got %v", err)
	}
}

func TestProductionRepository_ListOrdersByDate(t *testing.T) {
	repo := NewProductionRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []entities.ProductionID{"P-C", "P-A", "P-B"} {
		record, _ := entities.NewProductionRecord(id, "", base.Add(time.Duration(2-i)*time.Hour), entities.PipelineManufacturing, decimal.Zero, decimal.Zero)
		if err := repo.SaveProduction(ctx, record); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	list, err := repo.ListProductions(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	expected := []entities.ProductionID{"P-B", "P-A", "P-C"}
	for i, id := range expected {
		if list[i].ID != id {
			t.Errorf("Expected %s at %d, got %s", id, i, list[i].ID)
		}
	}
}

func TestCostItemRepository(t *testing.T) {
	repo := NewCostItemRepository()
	repo.AddCostItem(entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: decimal.NewFromInt(2)})
	repo.AddCostItem(entities.ManufacturingCostItem{ID: "PACK", Name: "Packaging", AmountPerUnit: decimal.RequireFromString("0.5")})
	repo.AddCostItem(entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: decimal.NewFromInt(3)})

	items, err := repo.ListCostItems(context.Background())
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID != "LABOR" || !items[0].AmountPerUnit.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected LABOR replaced in place at 3, got %v", items[0])
	}
}
