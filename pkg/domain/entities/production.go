package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stage is a manufacturing stage. The numeric order of the constants is the
// production order shared by every pipeline.
type Stage int

const (
	StageProcessing Stage = iota
	StageCutting
	StageSticking
	StageLasting
	StageFinishing
	StageFinished
	StageDelivery
	StageDone
)

var stageNames = map[Stage]string{
	StageProcessing: "processing",
	StageCutting:    "cutting",
	StageSticking:   "sticking",
	StageLasting:    "lasting",
	StageFinishing:  "finishing",
	StageFinished:   "finished",
	StageDelivery:   "delivery",
	StageDone:       "done",
}

// String method for Stage enum
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStage parses the String form of a Stage
func ParseStage(s string) (Stage, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for stage, name := range stageNames {
		if name == needle {
			return stage, nil
		}
	}
	return 0, NewValidationError("stage", "unknown value %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Pipeline names one ordered subsequence of stages
type Pipeline int

const (
	// PipelineManufacturing is the in-house manufacturing workflow
	PipelineManufacturing Pipeline = iota
	// PipelineProductionOrder is the production-order workflow ending in delivery
	PipelineProductionOrder
)

var pipelineStages = map[Pipeline][]Stage{
	PipelineManufacturing:   {StageCutting, StageSticking, StageLasting, StageFinished},
	PipelineProductionOrder: {StageProcessing, StageCutting, StageSticking, StageLasting, StageFinishing, StageDelivery, StageDone},
}

// String method for Pipeline enum
func (p Pipeline) String() string {
	switch p {
	case PipelineManufacturing:
		return "manufacturing"
	case PipelineProductionOrder:
		return "production-order"
	default:
		return "unknown"
	}
}

// ParsePipeline parses the String form of a Pipeline
func ParsePipeline(s string) (Pipeline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manufacturing":
		return PipelineManufacturing, nil
	case "production-order", "production_order", "production":
		return PipelineProductionOrder, nil
	default:
		return 0, NewValidationError("pipeline", "unknown value %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Pipeline) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Pipeline) UnmarshalText(text []byte) error {
	parsed, err := ParsePipeline(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// CarriesOverhead reports whether records of the pipeline may accrue
// manufacturing cost items. Only manufacturing orders are costed with overhead.
func (p Pipeline) CarriesOverhead() bool {
	return p == PipelineManufacturing
}

// Stages returns a copy of the pipeline's stages in order
func (p Pipeline) Stages() []Stage {
	stages := pipelineStages[p]
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Initial returns the first stage of the pipeline
func (p Pipeline) Initial() Stage {
	return pipelineStages[p][0]
}

// Contains reports whether stage belongs to the pipeline
func (p Pipeline) Contains(stage Stage) bool {
	for _, s := range pipelineStages[p] {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether stage is the last stage of the pipeline
func (p Pipeline) IsTerminal(stage Stage) bool {
	stages := pipelineStages[p]
	return len(stages) > 0 && stages[len(stages)-1] == stage
}

// StageTransition records one committed stage change
type StageTransition struct {
	From       Stage                   `json:"from"`
	To         Stage                   `json:"to"`
	At         time.Time               `json:"at"`
	Accrued    []ManufacturingCostItem `json:"accrued,omitempty"`
	TotalAfter decimal.Decimal         `json:"total_after"`
}

// ProductionRecord tracks an order committed to production
type ProductionRecord struct {
	ID               ProductionID            `json:"id"`
	OrderRef         string                  `json:"order_ref"`
	Date             time.Time               `json:"date"`
	Pipeline         Pipeline                `json:"pipeline"`
	Status           Stage                   `json:"status"`
	BaseCost         decimal.Decimal         `json:"base_cost"`
	TotalUnits       decimal.Decimal         `json:"total_units"`
	AccruedCostItems []ManufacturingCostItem `json:"accrued_cost_items"`
	TotalCost        decimal.Decimal         `json:"total_cost"`
	History          []StageTransition       `json:"history"`
}

// NewProductionRecord creates a record at the first stage of pipeline
func NewProductionRecord(id ProductionID, orderRef string, date time.Time, pipeline Pipeline, baseCost, totalUnits decimal.Decimal) (*ProductionRecord, error) {
	if string(id) == "" {
		return nil, NewValidationError("production id", "cannot be empty")
	}
	if _, ok := pipelineStages[pipeline]; !ok {
		return nil, NewValidationError("pipeline", "unknown pipeline %d", pipeline)
	}
	if baseCost.IsNegative() {
		return nil, NewValidationError("base cost", "cannot be negative, got %s", baseCost)
	}
	if totalUnits.IsNegative() {
		return nil, NewValidationError("total units", "cannot be negative, got %s", totalUnits)
	}

	return &ProductionRecord{
		ID:         id,
		OrderRef:   orderRef,
		Date:       date,
		Pipeline:   pipeline,
		Status:     pipeline.Initial(),
		BaseCost:   baseCost,
		TotalUnits: totalUnits,
		TotalCost:  baseCost,
	}, nil
}

// HasAccrued reports whether the cost item is already part of the record's cost
func (r *ProductionRecord) HasAccrued(id CostItemID) bool {
	for _, item := range r.AccruedCostItems {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record
func (r *ProductionRecord) Clone() *ProductionRecord {
	out := *r
	out.AccruedCostItems = append([]ManufacturingCostItem(nil), r.AccruedCostItems...)
	if r.History != nil {
		out.History = make([]StageTransition, len(r.History))
		for i, t := range r.History {
			t.Accrued = append([]ManufacturingCostItem(nil), t.Accrued...)
			out.History[i] = t
		}
	}
	return &out
}
