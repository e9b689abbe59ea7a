package services

import (
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// StatusMachine advances production records along their pipeline
type StatusMachine struct {
	rollup *CostRollup
	now    func() time.Time
}

// NewStatusMachine creates a status machine that stamps transitions with time.Now
func NewStatusMachine(rollup *CostRollup) *StatusMachine {
	return NewStatusMachineWithClock(rollup, time.Now)
}

// NewStatusMachineWithClock creates a status machine with a custom clock
func NewStatusMachineWithClock(rollup *CostRollup, now func() time.Time) *StatusMachine {
	return &StatusMachine{rollup: rollup, now: now}
}

// CanTransition returns nil when a record of pipeline may move from one stage to another.
// The target must belong to the pipeline and come strictly after the current stage.
func (m *StatusMachine) CanTransition(pipeline entities.Pipeline, from, to entities.Stage) error {
	reject := func(reason string) error {
		return &entities.TransitionError{Pipeline: pipeline, From: from, To: to, Reason: reason}
	}

	switch {
	case !pipeline.Contains(from):
		return reject("current stage is not part of the pipeline")
	case !pipeline.Contains(to):
		return reject("target stage is not part of the pipeline")
	case to == from:
		return reject("already at this stage")
	case to < from:
		return reject("stages cannot move backwards")
	}
	return nil
}

// NextStages lists the stages the record may still move to, in order
func (m *StatusMachine) NextStages(record *entities.ProductionRecord) []entities.Stage {
	var next []entities.Stage
	for _, stage := range record.Pipeline.Stages() {
		if stage > record.Status {
			next = append(next, stage)
		}
	}
	return next
}

// Advance moves record to the target stage and accrues the selected cost items.
// Accrued items are permanent; items already accrued are not added again.
// On error the record is left unchanged.
func (m *StatusMachine) Advance(record *entities.ProductionRecord, to entities.Stage, selected []entities.ManufacturingCostItem) error {
	if err := m.CanTransition(record.Pipeline, record.Status, to); err != nil {
		return err
	}
	if err := m.CheckOverhead(record, selected); err != nil {
		return err
	}

	accrued := newlyAccrued(record, selected)
	allItems := append(append([]entities.ManufacturingCostItem(nil), record.AccruedCostItems...), accrued...)
	total := m.TotalCost(record.BaseCost, allItems, record.TotalUnits)

	record.History = append(record.History, entities.StageTransition{
		From:       record.Status,
		To:         to,
		At:         m.now(),
		Accrued:    accrued,
		TotalAfter: total,
	})
	record.Status = to
	record.AccruedCostItems = allItems
	record.TotalCost = total
	return nil
}

// AccrueInitial accrues cost items selected when the record is created.
// It is only valid before the first transition.
func (m *StatusMachine) AccrueInitial(record *entities.ProductionRecord, selected []entities.ManufacturingCostItem) ([]entities.ManufacturingCostItem, error) {
	if len(record.History) > 0 {
		return nil, entities.NewValidationError("cost items", "record %s has already left its initial stage", record.ID)
	}
	if err := m.CheckOverhead(record, selected); err != nil {
		return nil, err
	}
	accrued := newlyAccrued(record, selected)
	record.AccruedCostItems = append(record.AccruedCostItems, accrued...)
	record.TotalCost = m.TotalCost(record.BaseCost, record.AccruedCostItems, record.TotalUnits)
	return accrued, nil
}

// CheckOverhead rejects cost items selected on a record whose pipeline does not carry overhead
func (m *StatusMachine) CheckOverhead(record *entities.ProductionRecord, selected []entities.ManufacturingCostItem) error {
	if len(selected) == 0 || record.Pipeline.CarriesOverhead() {
		return nil
	}
	return entities.NewValidationError("cost items", "only manufacturing orders carry overhead, got %s record %s", record.Pipeline, record.ID)
}

// Preview returns the cost the record would carry if selected were accrued now
func (m *StatusMachine) Preview(record *entities.ProductionRecord, selected []entities.ManufacturingCostItem) entities.OverheadResult {
	items := append([]entities.ManufacturingCostItem(nil), record.AccruedCostItems...)
	items = append(items, selected...)
	return m.rollup.RollupWithOverhead(record.BaseCost, items, record.TotalUnits)
}

// TotalCost is the base cost plus every accrued item scaled by total units
func (m *StatusMachine) TotalCost(base decimal.Decimal, accrued []entities.ManufacturingCostItem, totalUnits decimal.Decimal) decimal.Decimal {
	return m.rollup.RollupWithOverhead(base, accrued, totalUnits).FinalCost
}

// newlyAccrued drops items already on the record and repeats within selected
func newlyAccrued(record *entities.ProductionRecord, selected []entities.ManufacturingCostItem) []entities.ManufacturingCostItem {
	var accrued []entities.ManufacturingCostItem
	pending := make(map[entities.CostItemID]bool, len(selected))
	for _, item := range selected {
		if record.HasAccrued(item.ID) || pending[item.ID] {
			continue
		}
		pending[item.ID] = true
		accrued = append(accrued, item)
	}
	return accrued
}
