package repositories

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// OrderRepository persists final order payloads
type OrderRepository interface {
	// SaveOrder stores the payload and returns its identifier
	SaveOrder(ctx context.Context, payload *entities.OrderPayload) (string, error)
}
