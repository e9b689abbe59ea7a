package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
)

// ProductionRepository stores production records in memory. Records are
// copied on the way in and out so callers never share state with the store.
type ProductionRepository struct {
	mu      sync.RWMutex
	records map[entities.ProductionID]*entities.ProductionRecord
}

// NewProductionRepository creates an empty production repository
func NewProductionRepository() *ProductionRepository {
	return &ProductionRepository{records: make(map[entities.ProductionID]*entities.ProductionRecord)}
}

var _ repositories.ProductionRepository = (*ProductionRepository)(nil)

// SaveProduction inserts or replaces a record
func (r *ProductionRepository) SaveProduction(_ context.Context, record *entities.ProductionRecord) error {
	if record == nil {
		return entities.NewValidationError("production record", "cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record.Clone()
	return nil
}

// GetProduction returns a copy of the record
func (r *ProductionRepository) GetProduction(_ context.Context, id entities.ProductionID) (*entities.ProductionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, entities.NewNotFoundError("production", string(id))
	}
	return record.Clone(), nil
}

// ListProductions returns copies of all records, oldest first
func (r *ProductionRepository) ListProductions(_ context.Context) ([]*entities.ProductionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.ProductionRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
