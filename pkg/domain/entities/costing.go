package entities

import "github.com/shopspring/decimal"

// LineCost is the rolled-up cost of one order line
type LineCost struct {
	ProductID ProductID       `json:"product_id"`
	Variant   Variant         `json:"variant"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Total     decimal.Decimal `json:"total"`
}

// CostSummary holds the three consistent views of an order's cost
type CostSummary struct {
	PerLine    []LineCost                    `json:"per_line"`
	PerProduct map[ProductID]decimal.Decimal `json:"per_product"`
	OrderTotal decimal.Decimal               `json:"order_total"`
	TotalUnits decimal.Decimal               `json:"total_units"`
}

// OverheadLine is the contribution of one selected manufacturing cost item
type OverheadLine struct {
	Item         ManufacturingCostItem `json:"item"`
	TotalUnits   decimal.Decimal       `json:"total_units"`
	Contribution decimal.Decimal       `json:"contribution"`
}

// OverheadResult is the final production cost after selected overhead
type OverheadResult struct {
	OrderTotal    decimal.Decimal `json:"order_total"`
	Lines         []OverheadLine  `json:"lines"`
	OverheadTotal decimal.Decimal `json:"overhead_total"`
	FinalCost     decimal.Decimal `json:"final_cost"`
}
