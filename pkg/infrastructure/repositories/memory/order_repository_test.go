package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func TestOrderRepository_SaveAndGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	payload := &entities.OrderPayload{
		OrderRef:   "SO-1",
		OrderType:  entities.Sale,
		Lines:      []entities.OrderLine{{ProductID: "OXFORD", Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(10)}},
		OrderTotal: decimal.NewFromInt(20),
		FinalCost:  decimal.NewFromInt(20),
		Status:     entities.StageProcessing,
	}

	first, err := repo.SaveOrder(ctx, payload)
	if err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}
	second, _ := repo.SaveOrder(ctx, payload)
	if first == second {
		t.Errorf("Expected distinct order IDs, got %s twice", first)
	}
	if repo.Count() != 2 {
		t.Errorf("Expected 2 orders, got %d", repo.Count())
	}

	payload.Lines[0].Quantity = decimal.NewFromInt(99)
	got, err := repo.GetOrder(ctx, first)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !got.Lines[0].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected stored quantity 2, got %s", got.Lines[0].Quantity)
	}
	if got.Status != entities.StageProcessing {
		t.Errorf("Expected status processing, got %s", got.Status)
	}

	if _, err := repo.GetOrder(ctx, "ORD-404"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := repo.SaveOrder(ctx, nil); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for nil payload, got %v", err)
	}
}
