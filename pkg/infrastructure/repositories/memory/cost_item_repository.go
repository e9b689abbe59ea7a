package memory

import (
	"context"
	"sync"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
)

// CostItemRepository provides in-memory manufacturing cost items in insertion order
type CostItemRepository struct {
	mu    sync.RWMutex
	items []entities.ManufacturingCostItem
	index map[entities.CostItemID]int
}

// NewCostItemRepository creates an empty cost item repository
func NewCostItemRepository() *CostItemRepository {
	return &CostItemRepository{index: make(map[entities.CostItemID]int)}
}

var _ repositories.CostItemRepository = (*CostItemRepository)(nil)

// LoadCostItems loads cost items into the repository
func (r *CostItemRepository) LoadCostItems(items []*entities.ManufacturingCostItem) {
	for _, item := range items {
		r.AddCostItem(*item)
	}
}

// AddCostItem adds a cost item, replacing one with the same id in place
func (r *CostItemRepository) AddCostItem(item entities.ManufacturingCostItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[item.ID]; ok {
		r.items[i] = item
		return
	}
	r.index[item.ID] = len(r.items)
	r.items = append(r.items, item)
}

// ListCostItems returns every cost item
func (r *CostItemRepository) ListCostItems(_ context.Context) ([]entities.ManufacturingCostItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.ManufacturingCostItem(nil), r.items...), nil
}
