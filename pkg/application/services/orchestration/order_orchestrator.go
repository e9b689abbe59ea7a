package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/application/services"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
)

// ErrInsufficientStock is returned when an order is placed against stock
// that does not cover it and shortages are not allowed.
var ErrInsufficientStock = errors.New("insufficient stock")

// OrderOrchestrator coordinates planning, order submission and production start
type OrderOrchestrator struct {
	planning   *services.PlanningService
	production *services.ProductionService
	orders     repositories.OrderRepository
}

// NewOrderOrchestrator creates a new order orchestrator
func NewOrderOrchestrator(
	planning *services.PlanningService,
	production *services.ProductionService,
	orders repositories.OrderRepository,
) *OrderOrchestrator {
	return &OrderOrchestrator{
		planning:   planning,
		production: production,
		orders:     orders,
	}
}

// PlaceOptions tune PlaceOrder
type PlaceOptions struct {
	// AllowShortages commits the order even when stock does not cover it
	AllowShortages bool
}

// OrderResult contains the plan, the submitted payload and the started production
type OrderResult struct {
	Plan       *dto.OrderPlan             `json:"plan"`
	Payload    *entities.OrderPayload     `json:"payload"`
	OrderID    string                     `json:"order_id"`
	Production *entities.ProductionRecord `json:"production"`
}

// PlaceOrder plans the order, submits its payload and starts production.
// When stock is short and shortages are not allowed the plan is returned
// together with ErrInsufficientStock and nothing is stored.
func (o *OrderOrchestrator) PlaceOrder(ctx context.Context, req dto.PlanRequest, opts PlaceOptions) (*OrderResult, error) {
	// Step 1: plan
	plan, err := o.planning.PlanOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	result := &OrderResult{Plan: plan}

	if !plan.IsFullyCovered() && !opts.AllowShortages {
		ids := make([]string, 0, len(plan.Shortages))
		for _, s := range plan.Shortages {
			ids = append(ids, string(s.Requirement.RawMaterialID))
		}
		return result, fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(ids, ", "))
	}

	// Step 2: submit the payload to the order store
	result.Payload = o.planning.BuildOrderPayload(plan)
	result.OrderID, err = o.orders.SaveOrder(ctx, result.Payload)
	if err != nil {
		return result, fmt.Errorf("failed to save order %s: %w", req.OrderRef, err)
	}

	// Step 3: start production from the priced plan
	start := dto.StartRequestFromPlan(plan)
	if start.OrderRef == "" {
		start.OrderRef = result.OrderID
	}
	result.Production, err = o.production.Start(ctx, start)
	if err != nil {
		return result, fmt.Errorf("failed to start production for order %s: %w", result.OrderID, err)
	}

	return result, nil
}

// GetSummary returns a formatted summary of the placed order
func (result *OrderResult) GetSummary() string {
	summary := fmt.Sprintf("Order %s (%s):\n", result.OrderID, result.Plan.OrderType)
	summary += fmt.Sprintf("  Plan: %d materials, %d shortages\n",
		len(result.Plan.Requirements),
		len(result.Plan.Shortages))
	summary += fmt.Sprintf("  Cost: order total %s, final %s\n",
		result.Plan.Cost.OrderTotal.StringFixed(2),
		result.Plan.Overhead.FinalCost.StringFixed(2))
	if result.Production != nil {
		summary += fmt.Sprintf("  Production: %s at %s", result.Production.ID, result.Production.Status)
	}
	return summary
}
