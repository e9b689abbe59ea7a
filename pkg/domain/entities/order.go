package entities

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderType selects how order lines are priced
type OrderType int

const (
	// Sale lines carry the unit cost captured when the order's BOM was saved
	Sale OrderType = iota
	// Invoice lines are priced at the product's current selling price
	Invoice
	// Manufacturing lines are costed at recipe material value
	Manufacturing
)

// String method for OrderType enum
func (o OrderType) String() string {
	switch o {
	case Sale:
		return "sale"
	case Invoice:
		return "invoice"
	case Manufacturing:
		return "manufacturing"
	default:
		return "unknown"
	}
}

// ParseOrderType parses the String form of an OrderType
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "sales":
		return Sale, nil
	case "invoice":
		return Invoice, nil
	case "manufacturing", "production":
		return Manufacturing, nil
	default:
		return 0, NewValidationError("order type", "unknown value %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (o OrderType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *OrderType) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderType(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// OrderLine is one product variant and quantity on an order
type OrderLine struct {
	ProductID ProductID       `json:"product_id"`
	Variant   Variant         `json:"variant"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// UnmarshalJSON decodes a line, reporting malformed numbers as validation errors
func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID ProductID       `json:"product_id"`
		Variant   Variant         `json:"variant"`
		Quantity  json.RawMessage `json:"quantity"`
		UnitCost  json.RawMessage `json:"unit_cost"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	line := OrderLine{ProductID: raw.ProductID, Variant: raw.Variant}
	if err := decodeDecimal("quantity", raw.Quantity, &line.Quantity); err != nil {
		return err
	}
	if err := decodeDecimal("unit cost", raw.UnitCost, &line.UnitCost); err != nil {
		return err
	}
	*l = line
	return nil
}

func decodeDecimal(field string, raw json.RawMessage, dst *decimal.Decimal) error {
	if len(raw) == 0 {
		return nil
	}
	if err := dst.UnmarshalJSON(raw); err != nil {
		return NewValidationError(field, "not a number: %s", raw)
	}
	return nil
}

// NewOrderLine creates a validated OrderLine
func NewOrderLine(productID ProductID, variant Variant, quantity, unitCost decimal.Decimal) (*OrderLine, error) {
	line := &OrderLine{
		ProductID: productID,
		Variant:   variant,
		Quantity:  quantity,
		UnitCost:  unitCost,
	}
	if err := line.Validate(); err != nil {
		return nil, err
	}
	return line, nil
}

// Validate checks the line for an empty product and negative values
func (l OrderLine) Validate() error {
	if string(l.ProductID) == "" {
		return NewValidationError("product id", "cannot be empty")
	}
	if l.Quantity.IsNegative() {
		return NewValidationError("quantity", "cannot be negative, got %s", l.Quantity)
	}
	if l.UnitCost.IsNegative() {
		return NewValidationError("unit cost", "cannot be negative, got %s", l.UnitCost)
	}
	return nil
}

// Total returns quantity x unit cost
func (l OrderLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// TotalUnits sums the quantity of all lines
func TotalUnits(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// PipelineFor returns the production pipeline used by orders of type t
func PipelineFor(t OrderType) Pipeline {
	if t == Manufacturing {
		return PipelineManufacturing
	}
	return PipelineProductionOrder
}

// OrderPayload is the final order structure handed to the order service
type OrderPayload struct {
	OrderRef   string          `json:"order_ref,omitempty"`
	OrderType  OrderType       `json:"order_type"`
	Lines      []OrderLine     `json:"lines"`
	OrderTotal decimal.Decimal `json:"order_total"`
	FinalCost  decimal.Decimal `json:"final_cost"`
	Status     Stage           `json:"status"`
}
