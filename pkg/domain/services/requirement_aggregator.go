package services

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// ResolvedLine pairs an order line with its resolved recipe
type ResolvedLine struct {
	Line    entities.OrderLine
	Entries []entities.RecipeEntry
}

// RequirementAggregator consolidates order lines into one requirement per raw material
type RequirementAggregator struct {
	resolver *RecipeResolver
}

// NewRequirementAggregator creates an aggregator using resolver for recipe lookups
func NewRequirementAggregator(resolver *RecipeResolver) *RequirementAggregator {
	return &RequirementAggregator{resolver: resolver}
}

// Aggregate resolves every line's recipe and folds the entries into requirements.
// The result does not depend on the order of lines.
func (a *RequirementAggregator) Aggregate(ctx context.Context, lines []entities.OrderLine) (entities.Requirements, error) {
	resolved, err := a.Resolve(ctx, lines)
	if err != nil {
		return nil, err
	}
	return AggregateResolved(resolved), nil
}

// Resolve validates the lines and looks up each line's recipe
func (a *RequirementAggregator) Resolve(ctx context.Context, lines []entities.OrderLine) ([]ResolvedLine, error) {
	resolved := make([]ResolvedLine, 0, len(lines))
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("order line %d: %w", i+1, err)
		}
		entries, err := a.resolver.Resolve(ctx, line.ProductID, line.Variant)
		if err != nil {
			return nil, fmt.Errorf("order line %d: %w", i+1, err)
		}
		resolved = append(resolved, ResolvedLine{Line: line, Entries: entries})
	}
	return resolved, nil
}

// AggregateResolved folds already-resolved lines. Each line is folded into its
// own accumulator first and then merged, so every step is an explicit seed or merge.
func AggregateResolved(lines []ResolvedLine) entities.Requirements {
	total := entities.NewRequirements()
	for _, resolved := range lines {
		total.Merge(lineRequirements(resolved))
	}
	return total
}

func lineRequirements(resolved ResolvedLine) entities.Requirements {
	reqs := entities.NewRequirements()
	for _, entry := range resolved.Entries {
		reqs.Add(entry, resolved.Line.Quantity)
	}
	return reqs
}
