package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
)

// OrderRepository keeps submitted order payloads in memory with sequential IDs
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]entities.OrderPayload
	seq    int
}

// NewOrderRepository creates an empty order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]entities.OrderPayload)}
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// SaveOrder stores a copy of the payload
func (r *OrderRepository) SaveOrder(_ context.Context, payload *entities.OrderPayload) (string, error) {
	if payload == nil {
		return "", entities.NewValidationError("order payload", "cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	id := fmt.Sprintf("ORD-%06d", r.seq)
	stored := *payload
	stored.Lines = append([]entities.OrderLine(nil), payload.Lines...)
	r.orders[id] = stored
	return id, nil
}

// GetOrder returns a copy of a stored payload
func (r *OrderRepository) GetOrder(_ context.Context, id string) (*entities.OrderPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, entities.NewNotFoundError("order", id)
	}
	stored.Lines = append([]entities.OrderLine(nil), stored.Lines...)
	return &stored, nil
}

// Count returns the number of stored orders
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
