package repositories

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// ProductionRepository persists production records
type ProductionRepository interface {
	SaveProduction(ctx context.Context, record *entities.ProductionRecord) error
	GetProduction(ctx context.Context, id entities.ProductionID) (*entities.ProductionRecord, error)
	ListProductions(ctx context.Context) ([]*entities.ProductionRecord, error)
}
