package services

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
)

// resolveCostItems looks up the selected cost items in request order.
// Unknown ids fail with a NotFoundError.
func resolveCostItems(ctx context.Context, repo repositories.CostItemRepository, ids []entities.CostItemID) ([]entities.ManufacturingCostItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	all, err := repo.ListCostItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost items: %w", err)
	}
	byID := make(map[entities.CostItemID]entities.ManufacturingCostItem, len(all))
	for _, item := range all {
		byID[item.ID] = item
	}

	selected := make([]entities.ManufacturingCostItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, entities.NewNotFoundError("cost item", string(id))
		}
		selected = append(selected, item)
	}
	return selected, nil
}
