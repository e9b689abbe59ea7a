package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductID identifies a finished product in the catalog
type ProductID string

// RawMaterialID identifies a raw material tracked by inventory
type RawMaterialID string

// CostItemID identifies a selectable manufacturing cost item
type CostItemID string

// ProductionID identifies a production record
type ProductionID string

// Variant is a size+color combination of a product
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// String renders the variant as "size/color"
func (v Variant) String() string {
	return v.Size + "/" + v.Color
}

// ParseVariant parses a "size/color" string
func ParseVariant(s string) (Variant, error) {
	size, color, ok := strings.Cut(s, "/")
	if !ok {
		return Variant{}, NewValidationError("variant", "expected size/color, got %q", s)
	}
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	if size == "" || color == "" {
		return Variant{}, NewValidationError("variant", "size and color cannot be empty, got %q", s)
	}
	return Variant{Size: size, Color: color}, nil
}

// Product represents a sellable product with its current selling price
type Product struct {
	ID           ProductID       `json:"id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, name string, sellingPrice decimal.Decimal) (*Product, error) {
	if string(id) == "" {
		return nil, NewValidationError("product id", "cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, NewValidationError("selling price", "cannot be negative, got %s", sellingPrice)
	}
	return &Product{ID: id, Name: name, SellingPrice: sellingPrice}, nil
}

// RawMaterial represents a raw material with its current stock snapshot
type RawMaterial struct {
	ID        RawMaterialID   `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Available decimal.Decimal `json:"available"`
}

// NewRawMaterial creates a validated RawMaterial
func NewRawMaterial(id RawMaterialID, name, unit string, unitCost, available decimal.Decimal) (*RawMaterial, error) {
	if string(id) == "" {
		return nil, NewValidationError("raw material id", "cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, NewValidationError("unit cost", "cannot be negative, got %s", unitCost)
	}
	return &RawMaterial{
		ID:        id,
		Name:      name,
		Unit:      unit,
		UnitCost:  unitCost,
		Available: available,
	}, nil
}

// ManufacturingCostItem is an optional per-unit overhead such as labor
type ManufacturingCostItem struct {
	ID            CostItemID      `json:"id"`
	Name          string          `json:"name"`
	AmountPerUnit decimal.Decimal `json:"amount_per_unit"`
}

// NewManufacturingCostItem creates a validated ManufacturingCostItem
func NewManufacturingCostItem(id CostItemID, name string, amountPerUnit decimal.Decimal) (*ManufacturingCostItem, error) {
	if string(id) == "" {
		return nil, NewValidationError("cost item id", "cannot be empty")
	}
	if amountPerUnit.IsNegative() {
		return nil, NewValidationError("amount per unit", "cannot be negative, got %s", amountPerUnit)
	}
	return &ManufacturingCostItem{ID: id, Name: name, AmountPerUnit: amountPerUnit}, nil
}

// String method for ManufacturingCostItem
func (c ManufacturingCostItem) String() string {
	return fmt.Sprintf("%s (%s/unit)", c.Name, c.AmountPerUnit.StringFixed(2))
}
