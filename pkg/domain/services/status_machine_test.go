package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestMachine() *StatusMachine {
	return NewStatusMachineWithClock(NewCostRollup(), func() time.Time { return fixedNow })
}

func newTestRecord(t *testing.T, pipeline entities.Pipeline) *entities.ProductionRecord {
	t.Helper()
	record, err := entities.NewProductionRecord("P-1", "SO-7", fixedNow, pipeline, dec("150"), dec("15"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	return record
}

func TestStatusMachine_CanTransition(t *testing.T) {
	machine := newTestMachine()

	tests := []struct {
		name     string
		pipeline entities.Pipeline
		from     entities.Stage
		to       entities.Stage
		valid    bool
	}{
		{"cutting to cutting", entities.PipelineManufacturing, entities.StageCutting, entities.StageCutting, false},
		{"cutting to sticking", entities.PipelineManufacturing, entities.StageCutting, entities.StageSticking, true},
		{"cutting to lasting", entities.PipelineManufacturing, entities.StageCutting, entities.StageLasting, true},
		{"cutting to finished", entities.PipelineManufacturing, entities.StageCutting, entities.StageFinished, true},
		{"lasting back to sticking", entities.PipelineManufacturing, entities.StageLasting, entities.StageSticking, false},
		{"finishing not in manufacturing", entities.PipelineManufacturing, entities.StageLasting, entities.StageFinishing, false},
		{"processing not in manufacturing", entities.PipelineManufacturing, entities.StageProcessing, entities.StageCutting, false},
		{"processing to cutting", entities.PipelineProductionOrder, entities.StageProcessing, entities.StageCutting, true},
		{"finishing to delivery", entities.PipelineProductionOrder, entities.StageFinishing, entities.StageDelivery, true},
		{"finished not in production order", entities.PipelineProductionOrder, entities.StageFinishing, entities.StageFinished, false},
		{"done to delivery", entities.PipelineProductionOrder, entities.StageDone, entities.StageDelivery, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := machine.CanTransition(tt.pipeline, tt.from, tt.to)
			if tt.valid && err != nil {
				t.Errorf("Expected transition to be valid, got %v", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("Expected transition to be rejected")
				}
				if !errors.Is(err, entities.ErrInvalidTransition) {
					t.Errorf("Expected ErrInvalidTransition, got %v", err)
				}
			}
		})
	}
}

func TestStatusMachine_RejectedAdvanceLeavesRecordUnchanged(t *testing.T) {
	machine := newTestMachine()
	record := newTestRecord(t, entities.PipelineManufacturing)
	labor := entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: dec("2")}

	if err := machine.Advance(record, entities.StageLasting, []entities.ManufacturingCostItem{labor}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	before := record.Clone()

	for _, to := range []entities.Stage{entities.StageCutting, entities.StageSticking, entities.StageLasting, entities.StageDelivery} {
		glue := entities.ManufacturingCostItem{ID: "GLUE", Name: "Glue", AmountPerUnit: dec("1")}
		err := machine.Advance(record, to, []entities.ManufacturingCostItem{glue})
		if !errors.Is(err, entities.ErrInvalidTransition) {
			t.Errorf("Expected %s to be rejected, got %v", to, err)
		}
		if !reflect.DeepEqual(before, record) {
			t.Fatalf("Expected record unchanged after rejected move to %s", to)
		}
	}
}

func TestStatusMachine_AdvanceAccruesPermanently(t *testing.T) {
	machine := newTestMachine()
	record := newTestRecord(t, entities.PipelineManufacturing)
	labor := entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: dec("2")}
	packaging := entities.ManufacturingCostItem{ID: "PACK", Name: "Packaging", AmountPerUnit: dec("0.5")}

	if record.Status != entities.StageCutting {
		t.Fatalf("Expected new record at cutting, got %s", record.Status)
	}
	if !record.TotalCost.Equal(dec("150")) {
		t.Fatalf("Expected starting cost 150, got %s", record.TotalCost)
	}

	if err := machine.Advance(record, entities.StageSticking, []entities.ManufacturingCostItem{labor, labor}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !record.TotalCost.Equal(dec("180")) {
		t.Errorf("Expected 180 after labor, got %s", record.TotalCost)
	}
	if len(record.AccruedCostItems) != 1 {
		t.Errorf("Expected labor accrued once, got %d items", len(record.AccruedCostItems))
	}

	// nothing selected this time; labor stays on the bill
	if err := machine.Advance(record, entities.StageLasting, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !record.TotalCost.Equal(dec("180")) {
		t.Errorf("Expected accrued labor to persist at 180, got %s", record.TotalCost)
	}

	if err := machine.Advance(record, entities.StageFinished, []entities.ManufacturingCostItem{labor, packaging}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !record.TotalCost.Equal(dec("187.5")) {
		t.Errorf("Expected 187.5 after packaging, got %s", record.TotalCost)
	}
	if len(record.AccruedCostItems) != 2 {
		t.Errorf("Expected 2 accrued items, got %d", len(record.AccruedCostItems))
	}

	if len(record.History) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(record.History))
	}
	last := record.History[2]
	if last.From != entities.StageLasting || last.To != entities.StageFinished {
		t.Errorf("Expected lasting -> finished, got %s -> %s", last.From, last.To)
	}
	if len(last.Accrued) != 1 || last.Accrued[0].ID != "PACK" {
		t.Errorf("Expected only packaging accrued on last step, got %v", last.Accrued)
	}
	if !last.At.Equal(fixedNow) || !last.TotalAfter.Equal(dec("187.5")) {
		t.Errorf("Expected stamped history entry, got %+v", last)
	}

	if !record.Pipeline.IsTerminal(record.Status) {
		t.Error("Expected finished to be terminal")
	}
	if next := machine.NextStages(record); len(next) != 0 {
		t.Errorf("Expected no next stages from terminal, got %v", next)
	}
	if err := machine.Advance(record, entities.StageFinished, nil); err == nil {
		t.Error("Expected advancing past terminal to fail")
	}
}

func TestStatusMachine_NextStages(t *testing.T) {
	machine := newTestMachine()

	record := newTestRecord(t, entities.PipelineProductionOrder)
	next := machine.NextStages(record)
	expected := []entities.Stage{
		entities.StageCutting, entities.StageSticking, entities.StageLasting,
		entities.StageFinishing, entities.StageDelivery, entities.StageDone,
	}
	if !reflect.DeepEqual(next, expected) {
		t.Errorf("Expected %v, got %v", expected, next)
	}

	if err := machine.Advance(record, entities.StageDelivery, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	next = machine.NextStages(record)
	if len(next) != 1 || next[0] != entities.StageDone {
		t.Errorf("Expected only done after delivery, got %v", next)
	}
}

func TestStatusMachine_Preview(t *testing.T) {
	machine := newTestMachine()
	record := newTestRecord(t, entities.PipelineManufacturing)
	labor := entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: dec("2")}

	if err := machine.Advance(record, entities.StageSticking, []entities.ManufacturingCostItem{labor}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	before := record.Clone()

	preview := machine.Preview(record, []entities.ManufacturingCostItem{
		labor,
		{ID: "GLUE", Name: "Glue", AmountPerUnit: dec("1")},
	})
	if !preview.FinalCost.Equal(dec("195")) {
		t.Errorf("Expected preview 195, got %s", preview.FinalCost)
	}
	if !reflect.DeepEqual(before, record) {
		t.Error("Expected preview to leave record unchanged")
	}
}

func TestStatusMachine_AccrueInitial(t *testing.T) {
	machine := newTestMachine()
	record := newTestRecord(t, entities.PipelineManufacturing)
	labor := entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: dec("2")}

	accrued, err := machine.AccrueInitial(record, []entities.ManufacturingCostItem{labor, labor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(accrued) != 1 || !record.TotalCost.Equal(dec("180")) {
		t.Errorf("Expected labor accrued once for 180, got %d items and %s", len(accrued), record.TotalCost)
	}

	if err := machine.Advance(record, entities.StageSticking, []entities.ManufacturingCostItem{labor}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(record.History[0].Accrued) != 0 {
		t.Errorf("Expected labor not accrued again on transition, got %v", record.History[0].Accrued)
	}

	if _, err := machine.AccrueInitial(record, nil); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error after first transition, got %v", err)
	}
}

func TestStatusMachine_OverheadOnlyOnManufacturingPipeline(t *testing.T) {
	machine := newTestMachine()
	labor := entities.ManufacturingCostItem{ID: "LABOR", Name: "Labor", AmountPerUnit: dec("2")}

	record := newTestRecord(t, entities.PipelineProductionOrder)
	before := record.Clone()

	if _, err := machine.AccrueInitial(record, []entities.ManufacturingCostItem{labor}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error on initial accrual, got %v", err)
	}
	if err := machine.Advance(record, entities.StageCutting, []entities.ManufacturingCostItem{labor}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error on advance, got %v", err)
	}
	if !reflect.DeepEqual(before, record) {
		t.Errorf("Expected record unchanged, got %+v", record)
	}

	if err := machine.CheckOverhead(record, nil); err != nil {
		t.Errorf("Expected no error without cost items, got %v", err)
	}
	if err := machine.CheckOverhead(newTestRecord(t, entities.PipelineManufacturing), []entities.ManufacturingCostItem{labor}); err != nil {
		t.Errorf("Expected manufacturing record to accept overhead, got %v", err)
	}
}
