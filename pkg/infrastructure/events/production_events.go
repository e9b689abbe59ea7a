package events

import (
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

const (
	OrderPlannedEvent       = "order.planned"
	ShortageIdentifiedEvent = "shortage.identified"
	ProductionStartedEvent  = "production.started"
	ProductionAdvancedEvent = "production.advanced"
	ProductionCostAccrued   = "production.cost_accrued"
)

// AllEventTypes lists every event type this package emits
var AllEventTypes = []string{
	OrderPlannedEvent,
	ShortageIdentifiedEvent,
	ProductionStartedEvent,
	ProductionAdvancedEvent,
	ProductionCostAccrued,
}

type OrderPlanned struct {
	OrderRef   string             `json:"order_ref"`
	OrderType  entities.OrderType `json:"order_type"`
	OrderTotal decimal.Decimal    `json:"order_total"`
	FinalCost  decimal.Decimal    `json:"final_cost"`
	Shortages  int                `json:"shortages"`
}

type ShortageIdentified struct {
	OrderRef string                     `json:"order_ref"`
	Result   entities.SufficiencyResult `json:"result"`
}

type ProductionStarted struct {
	Record entities.ProductionRecord `json:"record"`
}

type ProductionAdvanced struct {
	ProductionID entities.ProductionID    `json:"production_id"`
	Transition   entities.StageTransition `json:"transition"`
}

type CostAccrued struct {
	ProductionID entities.ProductionID            `json:"production_id"`
	Items        []entities.ManufacturingCostItem `json:"items"`
	TotalCost    decimal.Decimal                  `json:"total_cost"`
}

func (OrderPlanned) EventType() string         { return OrderPlannedEvent }
func (p OrderPlanned) StreamKey() string       { return p.OrderRef }
func (ShortageIdentified) EventType() string   { return ShortageIdentifiedEvent }
func (p ShortageIdentified) StreamKey() string { return string(p.Result.Requirement.RawMaterialID) }
func (ProductionStarted) EventType() string    { return ProductionStartedEvent }
func (p ProductionStarted) StreamKey() string  { return string(p.Record.ID) }
func (ProductionAdvanced) EventType() string   { return ProductionAdvancedEvent }
func (p ProductionAdvanced) StreamKey() string { return string(p.ProductionID) }
func (CostAccrued) EventType() string          { return ProductionCostAccrued }
func (p CostAccrued) StreamKey() string        { return string(p.ProductionID) }

func NewOrderPlannedEvent(data OrderPlanned) Event {
	return NewEvent(data)
}

func NewShortageIdentifiedEvent(orderRef string, result entities.SufficiencyResult) Event {
	return NewEvent(ShortageIdentified{OrderRef: orderRef, Result: result})
}

func NewProductionStartedEvent(record *entities.ProductionRecord) Event {
	return NewEvent(ProductionStarted{Record: *record.Clone()})
}

func NewProductionAdvancedEvent(id entities.ProductionID, transition entities.StageTransition) Event {
	return NewEvent(ProductionAdvanced{ProductionID: id, Transition: transition})
}

func NewCostAccruedEvent(record *entities.ProductionRecord, items []entities.ManufacturingCostItem) Event {
	return NewEvent(CostAccrued{
		ProductionID: record.ID,
		Items:        append([]entities.ManufacturingCostItem(nil), items...),
		TotalCost:    record.TotalCost,
	})
}
