package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// Scenario file names inside a scenario directory
const (
	MaterialsFile = "materials.csv"
	ProductsFile  = "products.csv"
	RecipesFile   = "recipes.csv"
	CostItemsFile = "cost_items.csv"
	OrderFile     = "order.csv"
)

var (
	productsHeader  = []string{"product_id", "name", "selling_price"}
	materialsHeader = []string{"raw_material_id", "name", "unit", "unit_cost", "available"}
	recipesHeader   = []string{"product_id", "size", "color", "raw_material_id", "qty_per_unit", "unit_cost"}
	costItemsHeader = []string{"cost_item_id", "name", "amount_per_unit"}
	orderHeader     = []string{"product_id", "size", "color", "quantity", "unit_cost"}
)

// Scenario is everything needed to plan one order from CSV files
type Scenario struct {
	Products  []*entities.Product
	Materials []*entities.RawMaterial
	Recipes   []*entities.Recipe
	CostItems []*entities.ManufacturingCostItem
	Lines     []entities.OrderLine
}

// Loader handles loading catalog and order data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario loads every scenario file from dir. cost_items.csv is optional.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	var (
		s   Scenario
		err error
	)

	if s.Materials, err = l.LoadMaterials(filepath.Join(dir, MaterialsFile)); err != nil {
		return nil, err
	}
	if s.Products, err = l.LoadProducts(filepath.Join(dir, ProductsFile)); err != nil {
		return nil, err
	}
	if s.Recipes, err = l.LoadRecipes(filepath.Join(dir, RecipesFile)); err != nil {
		return nil, err
	}
	if s.Lines, err = l.LoadOrder(filepath.Join(dir, OrderFile)); err != nil {
		return nil, err
	}

	s.CostItems, err = l.LoadCostItems(filepath.Join(dir, CostItemsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &s, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	rows, err := readTable(filename, "products", productsHeader, false)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	for i, record := range rows {
		price, err := parseDecimal("selling_price", record[2])
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		product, err := entities.NewProduct(entities.ProductID(record[0]), record[1], price)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadMaterials loads raw materials and their stock from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]*entities.RawMaterial, error) {
	rows, err := readTable(filename, "materials", materialsHeader, false)
	if err != nil {
		return nil, err
	}

	var materials []*entities.RawMaterial
	for i, record := range rows {
		unitCost, err := parseDecimal("unit_cost", record[3])
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		available, err := parseDecimal("available", record[4])
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		material, err := entities.NewRawMaterial(entities.RawMaterialID(record[0]), record[1], record[2], unitCost, available)
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		materials = append(materials, material)
	}
	return materials, nil
}

// LoadRecipes loads recipe entries and groups them by product variant in
// order of first appearance.
func (l *Loader) LoadRecipes(filename string) ([]*entities.Recipe, error) {
	rows, err := readTable(filename, "recipes", recipesHeader, false)
	if err != nil {
		return nil, err
	}

	var recipes []*entities.Recipe
	byKey := make(map[entities.RecipeKey]*entities.Recipe)

	for i, record := range rows {
		variant, err := parseVariant(record[1], record[2])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		qty, err := parseDecimal("qty_per_unit", record[4])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		unitCost, err := parseDecimal("unit_cost", record[5])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		entry, err := entities.NewRecipeEntry(entities.RawMaterialID(record[3]), "", qty, unitCost, decimal.Zero)
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}

		key := entities.RecipeKey{ProductID: entities.ProductID(record[0]), Variant: variant}
		recipe, ok := byKey[key]
		if !ok {
			recipe = &entities.Recipe{ProductID: key.ProductID, Variant: variant}
			byKey[key] = recipe
			recipes = append(recipes, recipe)
		}
		recipe.Entries = append(recipe.Entries, *entry)
	}
	return recipes, nil
}

// LoadCostItems loads manufacturing cost items from a CSV file
func (l *Loader) LoadCostItems(filename string) ([]*entities.ManufacturingCostItem, error) {
	rows, err := readTable(filename, "cost items", costItemsHeader, true)
	if err != nil {
		return nil, err
	}

	var items []*entities.ManufacturingCostItem
	for i, record := range rows {
		amount, err := parseDecimal("amount_per_unit", record[2])
		if err != nil {
			return nil, fmt.Errorf("cost items CSV row %d: %w", i+2, err)
		}
		item, err := entities.NewManufacturingCostItem(entities.CostItemID(record[0]), record[1], amount)
		if err != nil {
			return nil, fmt.Errorf("cost items CSV row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadOrder loads order lines from a CSV file. An empty unit_cost means zero.
func (l *Loader) LoadOrder(filename string) ([]entities.OrderLine, error) {
	rows, err := readTable(filename, "order", orderHeader, false)
	if err != nil {
		return nil, err
	}

	var lines []entities.OrderLine
	for i, record := range rows {
		variant, err := parseVariant(record[1], record[2])
		if err != nil {
			return nil, fmt.Errorf("order CSV row %d: %w", i+2, err)
		}
		qty, err := parseDecimal("quantity", record[3])
		if err != nil {
			return nil, fmt.Errorf("order CSV row %d: %w", i+2, err)
		}
		unitCost := decimal.Zero
		if strings.TrimSpace(record[4]) != "" {
			if unitCost, err = parseDecimal("unit_cost", record[4]); err != nil {
				return nil, fmt.Errorf("order CSV row %d: %w", i+2, err)
			}
		}
		line, err := entities.NewOrderLine(entities.ProductID(record[0]), variant, qty, unitCost)
		if err != nil {
			return nil, fmt.Errorf("order CSV row %d: %w", i+2, err)
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// readTable opens a CSV file, checks its header and column counts, and
// returns the data rows with every cell trimmed.
func readTable(filename, kind string, expectedHeader []string, allowEmpty bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) == 0 || (!allowEmpty && len(records) < 2) {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, entities.NewValidationError(field, "not a number: %q", value)
	}
	return d, nil
}

func parseVariant(size, color string) (entities.Variant, error) {
	if size == "" || color == "" {
		return entities.Variant{}, entities.NewValidationError("variant", "size and color are required")
	}
	return entities.Variant{Size: size, Color: color}, nil
}
