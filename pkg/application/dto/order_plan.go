package dto

import (
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// PlanRequest asks for the material and cost plan of one order
type PlanRequest struct {
	OrderRef          string                `json:"order_ref"`
	OrderType         entities.OrderType    `json:"order_type"`
	Lines             []entities.OrderLine  `json:"lines"`
	SelectedCostItems []entities.CostItemID `json:"selected_cost_items,omitempty"`
}

// OrderPlan is the complete output of planning one order
type OrderPlan struct {
	OrderRef  string             `json:"order_ref,omitempty"`
	OrderType entities.OrderType `json:"order_type"`
	PlannedAt time.Time          `json:"planned_at"`

	// Lines carry the unit cost the order type prices them at
	Lines        []entities.OrderLine         `json:"lines"`
	Requirements []entities.SufficiencyResult `json:"requirements"`
	Shortages    []entities.SufficiencyResult `json:"shortages"`

	// OnHand is the live inventory reading per material, when an inventory is configured
	OnHand map[entities.RawMaterialID]decimal.Decimal `json:"on_hand,omitempty"`

	Cost     entities.CostSummary    `json:"cost"`
	Overhead entities.OverheadResult `json:"overhead"`
}

// IsFullyCovered reports whether stock covers every material
func (p *OrderPlan) IsFullyCovered() bool {
	return len(p.Shortages) == 0
}

// SelectedCostItems returns the cost items applied as overhead
func (p *OrderPlan) SelectedCostItems() []entities.ManufacturingCostItem {
	items := make([]entities.ManufacturingCostItem, 0, len(p.Overhead.Lines))
	for _, line := range p.Overhead.Lines {
		items = append(items, line.Item)
	}
	return items
}
