package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AggregatedRequirement is the consolidated need for one raw material across an order
type AggregatedRequirement struct {
	RawMaterialID     RawMaterialID   `json:"raw_material_id"`
	RawMaterialName   string          `json:"raw_material_name"`
	Unit              string          `json:"unit"`
	QuantityNeeded    decimal.Decimal `json:"quantity_needed"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
}

// Requirements maps a raw material to its aggregated requirement.
// The zero value is not usable; create with NewRequirements.
type Requirements map[RawMaterialID]AggregatedRequirement

// NewRequirements creates an empty requirement accumulator
func NewRequirements() Requirements {
	return make(Requirements)
}

// Add folds one recipe entry scaled by lineQty into the accumulator
func (r Requirements) Add(entry RecipeEntry, lineQty decimal.Decimal) {
	r.merge(AggregatedRequirement{
		RawMaterialID:     entry.RawMaterialID,
		RawMaterialName:   entry.RawMaterialName,
		Unit:              entry.Unit,
		QuantityNeeded:    entry.QtyPerUnit.Mul(lineQty),
		QuantityAvailable: entry.Available,
	})
}

// Merge folds every requirement of other into r. Merge is commutative and
// associative: needed quantities add, available quantities take the minimum.
func (r Requirements) Merge(other Requirements) {
	for _, req := range other {
		r.merge(req)
	}
}

func (r Requirements) merge(req AggregatedRequirement) {
	existing, ok := r[req.RawMaterialID]
	if !ok {
		r[req.RawMaterialID] = req
		return
	}

	existing.QuantityNeeded = existing.QuantityNeeded.Add(req.QuantityNeeded)
	existing.QuantityAvailable = decimal.Min(existing.QuantityAvailable, req.QuantityAvailable)
	existing.RawMaterialName = pickLabel(existing.RawMaterialName, req.RawMaterialName)
	existing.Unit = pickLabel(existing.Unit, req.Unit)
	r[req.RawMaterialID] = existing
}

// pickLabel keeps the smallest non-empty label so the merged record does not
// depend on line order
func pickLabel(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "" || a < b:
		return a
	default:
		return b
	}
}

// Sorted returns the requirements ordered by raw material id
func (r Requirements) Sorted() []AggregatedRequirement {
	out := make([]AggregatedRequirement, 0, len(r))
	for _, req := range r {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RawMaterialID < out[j].RawMaterialID
	})
	return out
}

// Sufficiency classifies an aggregated requirement against available stock
type Sufficiency int

const (
	Sufficient Sufficiency = iota
	Insufficient
)

// String method for Sufficiency enum
func (s Sufficiency) String() string {
	switch s {
	case Sufficient:
		return "Sufficient"
	case Insufficient:
		return "Insufficient"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Sufficiency) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SufficiencyResult is the advisory stock judgment for one requirement.
// Exactly one of Shortfall and Surplus is meaningful, selected by Status.
type SufficiencyResult struct {
	Requirement AggregatedRequirement `json:"requirement"`
	Status      Sufficiency           `json:"status"`
	Shortfall   decimal.Decimal       `json:"shortfall"`
	Surplus     decimal.Decimal       `json:"surplus"`
}

// IsSufficient reports whether stock covers the requirement
func (s SufficiencyResult) IsSufficient() bool {
	return s.Status == Sufficient
}
