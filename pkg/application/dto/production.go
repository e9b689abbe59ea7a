package dto

import (
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// StartRequest commits an order to production
type StartRequest struct {
	OrderRef  string               `json:"order_ref"`
	OrderType entities.OrderType   `json:"order_type"`
	Lines     []entities.OrderLine `json:"lines"`
	// Date defaults to now
	Date              time.Time             `json:"date,omitempty"`
	SelectedCostItems []entities.CostItemID `json:"selected_cost_items,omitempty"`
}

// StartRequestFromPlan builds a StartRequest carrying the plan's priced lines and overhead
func StartRequestFromPlan(plan *OrderPlan) StartRequest {
	req := StartRequest{
		OrderRef:  plan.OrderRef,
		OrderType: plan.OrderType,
		Lines:     append([]entities.OrderLine(nil), plan.Lines...),
	}
	for _, item := range plan.SelectedCostItems() {
		req.SelectedCostItems = append(req.SelectedCostItems, item.ID)
	}
	return req
}

// AdvanceRequest moves a production record to a later stage
type AdvanceRequest struct {
	To                entities.Stage        `json:"to"`
	SelectedCostItems []entities.CostItemID `json:"selected_cost_items,omitempty"`
}

// ProductionView is a production record with the stages it may still move to
type ProductionView struct {
	Record     *entities.ProductionRecord `json:"record"`
	NextStages []entities.Stage           `json:"next_stages"`
	Terminal   bool                       `json:"terminal"`
}
