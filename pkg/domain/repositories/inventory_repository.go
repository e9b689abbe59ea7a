package repositories

import (
	"context"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// InventoryRepository provides read access to raw material stock levels
type InventoryRepository interface {
	GetAvailableQuantity(ctx context.Context, materialID entities.RawMaterialID) (decimal.Decimal, error)
}
