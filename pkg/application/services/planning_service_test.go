package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	testhelpers "github.com/mfgops/bomcost/pkg/infrastructure/testing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPlanningService(eventStore events.EventStore) *PlanningService {
	catalog, costItems := testhelpers.BuildShoeScenario()
	return NewPlanningService(PlanningDeps{
		Catalog:    catalog,
		CostItems:  costItems,
		Inventory:  catalog,
		EventStore: eventStore,
		Logger:     zerolog.Nop(),
	})
}

func findResult(t *testing.T, results []entities.SufficiencyResult, id entities.RawMaterialID) entities.SufficiencyResult {
	t.Helper()
	for _, r := range results {
		if r.Requirement.RawMaterialID == id {
			return r
		}
	}
	t.Fatalf("Expected a requirement for %s", id)
	return entities.SufficiencyResult{}
}

func TestPlanningService_SaleOrder(t *testing.T) {
	service := newPlanningService(nil)

	plan, err := service.PlanOrder(context.Background(), dto.PlanRequest{
		OrderRef:  "SO-1",
		OrderType: entities.Sale,
		Lines:     testhelpers.ExampleOrderLines(),
	})
	if err != nil {
		t.Fatalf("PlanOrder failed: %v", err)
	}

	leather := findResult(t, plan.Requirements, "LEATHER")
	if !leather.Requirement.QuantityNeeded.Equal(dec("30")) || !leather.Surplus.Equal(dec("70")) {
		t.Errorf("Expected leather needed 30 with surplus 70, got %s / %s", leather.Requirement.QuantityNeeded, leather.Surplus)
	}

	thread := findResult(t, plan.Requirements, "THREAD")
	if thread.IsSufficient() || !thread.Shortfall.Equal(dec("2")) {
		t.Errorf("Expected thread short by 2, got %s short by %s", thread.Status, thread.Shortfall)
	}

	if len(plan.Shortages) != 1 || plan.IsFullyCovered() {
		t.Errorf("Expected exactly one shortage, got %d", len(plan.Shortages))
	}
	if !plan.Cost.OrderTotal.Equal(dec("150")) || !plan.Cost.PerProduct["OXFORD"].Equal(dec("150")) {
		t.Errorf("Expected order total 150, got %s", plan.Cost.OrderTotal)
	}
	if !plan.Overhead.FinalCost.Equal(dec("150")) {
		t.Errorf("Expected final cost 150 without overhead, got %s", plan.Overhead.FinalCost)
	}
	if !plan.OnHand["THREAD"].Equal(dec("3")) {
		t.Errorf("Expected on-hand thread 3, got %s", plan.OnHand["THREAD"])
	}

	payload := service.BuildOrderPayload(plan)
	if payload.Status != entities.StageProcessing {
		t.Errorf("Expected sale payload at processing, got %s", payload.Status)
	}
	if !payload.OrderTotal.Equal(dec("150")) || len(payload.Lines) != 2 {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestPlanningService_PricingByOrderType(t *testing.T) {
	tests := []struct {
		orderType  entities.OrderType
		selected   []entities.CostItemID
		orderTotal string
		finalCost  string
		status     entities.Stage
	}{
		{entities.Sale, nil, "150", "150", entities.StageProcessing},
		{entities.Invoice, nil, "898.5", "898.5", entities.StageProcessing},
		// 10 x 13.80 + 5 x 10 material value, plus 2/unit labor over 15 units
		{entities.Manufacturing, []entities.CostItemID{"LABOR"}, "188", "218", entities.StageCutting},
		{entities.Manufacturing, []entities.CostItemID{"LABOR", "QC"}, "188", "218", entities.StageCutting},
		{entities.Manufacturing, nil, "188", "188", entities.StageCutting},
	}

	for _, tt := range tests {
		t.Run(tt.orderType.String(), func(t *testing.T) {
			service := newPlanningService(nil)
			plan, err := service.PlanOrder(context.Background(), dto.PlanRequest{
				OrderType:         tt.orderType,
				Lines:             testhelpers.ExampleOrderLines(),
				SelectedCostItems: tt.selected,
			})
			if err != nil {
				t.Fatalf("PlanOrder failed: %v", err)
			}
			if !plan.Cost.OrderTotal.Equal(dec(tt.orderTotal)) {
				t.Errorf("Expected order total %s, got %s", tt.orderTotal, plan.Cost.OrderTotal)
			}
			if !plan.Overhead.FinalCost.Equal(dec(tt.finalCost)) {
				t.Errorf("Expected final cost %s, got %s", tt.finalCost, plan.Overhead.FinalCost)
			}
			if len(plan.Overhead.Lines) != len(tt.selected) {
				t.Errorf("Expected %d overhead lines, got %d", len(tt.selected), len(plan.Overhead.Lines))
			}
			if status := service.BuildOrderPayload(plan).Status; status != tt.status {
				t.Errorf("Expected payload status %s, got %s", tt.status, status)
			}
		})
	}
}

func TestPlanningService_Errors(t *testing.T) {
	service := newPlanningService(nil)
	ctx := context.Background()

	_, err := service.PlanOrder(ctx, dto.PlanRequest{
		OrderType:         entities.Sale,
		Lines:             testhelpers.ExampleOrderLines(),
		SelectedCostItems: []entities.CostItemID{"LABOR"},
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for overhead on a sale, got %v", err)
	}

	_, err = service.PlanOrder(ctx, dto.PlanRequest{
		OrderType:         entities.Manufacturing,
		Lines:             testhelpers.ExampleOrderLines(),
		SelectedCostItems: []entities.CostItemID{"GILDING"},
	})
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found for unknown cost item, got %v", err)
	}

	_, err = service.PlanOrder(ctx, dto.PlanRequest{
		OrderType: entities.Sale,
		Lines:     []entities.OrderLine{{ProductID: "BOOT", Variant: testhelpers.Brown40, Quantity: dec("1")}},
	})
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found for missing recipe, got %v", err)
	}

	_, err = service.PlanOrder(ctx, dto.PlanRequest{
		OrderType: entities.Sale,
		Lines:     []entities.OrderLine{{ProductID: "BOOT", Variant: testhelpers.Black42, Quantity: dec("-2")}},
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for negative quantity, got %v", err)
	}
}

func TestPlanningService_EmptyOrder(t *testing.T) {
	plan, err := newPlanningService(nil).PlanOrder(context.Background(), dto.PlanRequest{OrderType: entities.Sale})
	if err != nil {
		t.Fatalf("Expected empty order to plan: %v", err)
	}
	if len(plan.Requirements) != 0 || !plan.Cost.OrderTotal.IsZero() {
		t.Errorf("Expected empty plan, got %d requirements and total %s", len(plan.Requirements), plan.Cost.OrderTotal)
	}
}

func TestPlanningService_EmitsEvents(t *testing.T) {
	store := events.NewInMemoryEventStore(zerolog.Nop())
	service := newPlanningService(store)

	if _, err := service.PlanOrder(context.Background(), dto.PlanRequest{
		OrderRef:  "SO-2",
		OrderType: entities.Sale,
		Lines:     testhelpers.ExampleOrderLines(),
	}); err != nil {
		t.Fatalf("PlanOrder failed: %v", err)
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(all))
	}
	if all[0].Type() != events.ShortageIdentifiedEvent || all[0].StreamID() != "THREAD" {
		t.Errorf("Expected thread shortage first, got %s on %s", all[0].Type(), all[0].StreamID())
	}
	planned, ok := all[1].Data().(events.OrderPlanned)
	if !ok || all[1].StreamID() != "SO-2" || planned.Shortages != 1 {
		t.Errorf("Expected order.planned for SO-2 with 1 shortage, got %+v", all[1])
	}
}
