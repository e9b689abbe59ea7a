package services

import (
	"context"
	"fmt"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// CostRollup computes line, product and order totals
type CostRollup struct{}

// NewCostRollup creates a cost rollup engine
func NewCostRollup() *CostRollup {
	return &CostRollup{}
}

// Rollup computes quantity x unit cost per line, grouped subtotals per product
// (all variants of a product share one subtotal) and the order total.
func (c *CostRollup) Rollup(lines []entities.OrderLine) entities.CostSummary {
	summary := entities.CostSummary{
		PerLine:    make([]entities.LineCost, 0, len(lines)),
		PerProduct: make(map[entities.ProductID]decimal.Decimal),
		OrderTotal: decimal.Zero,
		TotalUnits: decimal.Zero,
	}

	for _, line := range lines {
		total := line.Total()
		summary.PerLine = append(summary.PerLine, entities.LineCost{
			ProductID: line.ProductID,
			Variant:   line.Variant,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			Total:     total,
		})
		summary.PerProduct[line.ProductID] = summary.PerProduct[line.ProductID].Add(total)
		summary.OrderTotal = summary.OrderTotal.Add(total)
		summary.TotalUnits = summary.TotalUnits.Add(line.Quantity)
	}

	return summary
}

// RollupWithOverhead adds amountPerUnit x totalUnits for each selected cost item.
// Only the items passed in are part of the cost; a selected zero-amount item
// appears in the breakdown with a zero contribution. Items selected twice count once.
func (c *CostRollup) RollupWithOverhead(orderTotal decimal.Decimal, selected []entities.ManufacturingCostItem, totalUnits decimal.Decimal) entities.OverheadResult {
	result := entities.OverheadResult{
		OrderTotal:    orderTotal,
		Lines:         make([]entities.OverheadLine, 0, len(selected)),
		OverheadTotal: decimal.Zero,
	}

	seen := make(map[entities.CostItemID]bool, len(selected))
	for _, item := range selected {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		contribution := item.AmountPerUnit.Mul(totalUnits)
		result.Lines = append(result.Lines, entities.OverheadLine{
			Item:         item,
			TotalUnits:   totalUnits,
			Contribution: contribution,
		})
		result.OverheadTotal = result.OverheadTotal.Add(contribution)
	}

	result.FinalCost = orderTotal.Add(result.OverheadTotal)
	return result
}

// LinePricer fills each line's unit cost according to the order type
type LinePricer struct {
	catalog  repositories.CatalogRepository
	resolver *RecipeResolver
}

// NewLinePricer creates a pricer backed by the catalog
func NewLinePricer(catalog repositories.CatalogRepository, resolver *RecipeResolver) *LinePricer {
	return &LinePricer{catalog: catalog, resolver: resolver}
}

// Price returns a copy of lines with unit costs set for orderType:
// Sale keeps the cost captured on the line, Invoice uses the product's current
// selling price, Manufacturing uses the recipe's per-unit material cost.
func (p *LinePricer) Price(ctx context.Context, orderType entities.OrderType, lines []entities.OrderLine) ([]entities.OrderLine, error) {
	priced := make([]entities.OrderLine, len(lines))
	copy(priced, lines)

	for i := range priced {
		line := &priced[i]
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("order line %d: %w", i+1, err)
		}

		switch orderType {
		case entities.Sale:
			// captured at BOM-save time; immutable
		case entities.Invoice:
			product, err := p.catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("order line %d: failed to price %s: %w", i+1, line.ProductID, err)
			}
			line.UnitCost = product.SellingPrice
		case entities.Manufacturing:
			cost, err := p.resolver.UnitMaterialCost(ctx, line.ProductID, line.Variant)
			if err != nil {
				return nil, fmt.Errorf("order line %d: %w", i+1, err)
			}
			line.UnitCost = cost
		default:
			return nil, entities.NewValidationError("order type", "unsupported value %d", orderType)
		}
	}

	return priced, nil
}
