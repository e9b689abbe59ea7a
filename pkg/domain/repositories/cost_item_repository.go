package repositories

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// CostItemRepository provides the manufacturing cost catalog
type CostItemRepository interface {
	ListCostItems(ctx context.Context) ([]entities.ManufacturingCostItem, error)
}
