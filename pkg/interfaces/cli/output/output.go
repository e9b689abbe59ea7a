package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/domain/entities"
)

// Output file names written under Config.OutputDir
const (
	PlanJSONFile         = "plan.json"
	RequirementsCSVFile  = "requirements.csv"
	CostLinesCSVFile     = "cost_lines.csv"
	OverheadCSVFile      = "overhead.csv"
	ProductionJSONFile   = "production.json"
	ProductionCSVFile    = "production_history.csv"
	dateLayout           = "2006-01-02 15:04"
	defaultDirPermission = 0o755
)

// Config holds configuration for output generation
type Config struct {
	Format       string
	OutputDir    string
	Verbose      bool
	PlanningTime time.Duration
	// Writer defaults to os.Stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate renders an order plan in the configured format
func Generate(plan *dto.OrderPlan, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(plan, config)
	case "json":
		return generateJSONOutput(plan, PlanJSONFile, config)
	case "csv":
		return generateCSVOutput(plan, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateProduction renders a production record in the configured format
func GenerateProduction(view *dto.ProductionView, config Config) error {
	switch config.Format {
	case "text", "":
		return generateProductionText(view, config)
	case "json":
		return generateJSONOutput(view, ProductionJSONFile, config)
	case "csv":
		return generateProductionCSV(view, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(plan *dto.OrderPlan, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "Order Plan Summary\n")
	fmt.Fprintf(w, "==================\n\n")

	if plan.OrderRef != "" {
		fmt.Fprintf(w, "Order: %s\n", plan.OrderRef)
	}
	fmt.Fprintf(w, "Order Type: %s\n", plan.OrderType)
	fmt.Fprintf(w, "Lines: %d\n", len(plan.Lines))
	fmt.Fprintf(w, "Materials: %d\n", len(plan.Requirements))
	fmt.Fprintf(w, "Shortages: %d\n", len(plan.Shortages))
	if config.Verbose {
		fmt.Fprintf(w, "Planning Time: %v\n", config.PlanningTime)
	}
	fmt.Fprintln(w)

	if len(plan.Requirements) > 0 {
		fmt.Fprintf(w, "Material Requirements:\n")
		fmt.Fprintf(w, "%-15s %-20s %-8s %12s %12s %12s %-12s\n",
			"Material", "Name", "Unit", "Needed", "Available", "Short/Surp", "Status")
		fmt.Fprintf(w, "%-15s %-20s %-8s %12s %12s %12s %-12s\n",
			"---------------", "--------------------", "--------", "------------", "------------", "------------", "------------")

		for _, r := range plan.Requirements {
			balance := "+" + r.Surplus.String()
			if !r.IsSufficient() {
				balance = "-" + r.Shortfall.String()
			}
			fmt.Fprintf(w, "%-15s %-20s %-8s %12s %12s %12s %-12s\n",
				r.Requirement.RawMaterialID,
				truncate(r.Requirement.RawMaterialName, 20),
				r.Requirement.Unit,
				r.Requirement.QuantityNeeded.String(),
				r.Requirement.QuantityAvailable.String(),
				balance,
				r.Status)
		}
		fmt.Fprintln(w)
	}

	if len(plan.OnHand) > 0 && config.Verbose {
		fmt.Fprintf(w, "Current Stock:\n")
		ids := make([]string, 0, len(plan.OnHand))
		for id := range plan.OnHand {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  %-15s %12s\n", id, plan.OnHand[entities.RawMaterialID(id)].String())
		}
		fmt.Fprintln(w)
	}

	if len(plan.Cost.PerLine) > 0 {
		fmt.Fprintf(w, "Cost Lines:\n")
		fmt.Fprintf(w, "%-15s %-12s %10s %12s %14s\n", "Product", "Variant", "Qty", "Unit Cost", "Total")
		fmt.Fprintf(w, "%-15s %-12s %10s %12s %14s\n",
			"---------------", "------------", "----------", "------------", "--------------")
		for _, line := range plan.Cost.PerLine {
			fmt.Fprintf(w, "%-15s %-12s %10s %12s %14s\n",
				line.ProductID,
				line.Variant,
				line.Quantity.String(),
				line.UnitCost.StringFixed(2),
				line.Total.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	if len(plan.Overhead.Lines) > 0 {
		fmt.Fprintf(w, "Manufacturing Overhead:\n")
		for _, line := range plan.Overhead.Lines {
			fmt.Fprintf(w, "  %-30s x %-8s = %12s\n",
				line.Item.String(), line.TotalUnits.String(), line.Contribution.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Order Total: %s\n", plan.Cost.OrderTotal.StringFixed(2))
	if len(plan.Overhead.Lines) > 0 {
		fmt.Fprintf(w, "Overhead:    %s\n", plan.Overhead.OverheadTotal.StringFixed(2))
	}
	fmt.Fprintf(w, "Final Cost:  %s\n", plan.Overhead.FinalCost.StringFixed(2))

	return nil
}

func generateProductionText(view *dto.ProductionView, config Config) error {
	w := config.writer()
	r := view.Record

	fmt.Fprintf(w, "Production %s\n", r.ID)
	if r.OrderRef != "" {
		fmt.Fprintf(w, "Order: %s\n", r.OrderRef)
	}
	fmt.Fprintf(w, "Date: %s\n", r.Date.Format(dateLayout))
	fmt.Fprintf(w, "Pipeline: %s\n", r.Pipeline)
	fmt.Fprintf(w, "Status: %s\n", r.Status)
	fmt.Fprintf(w, "Base Cost: %s over %s units\n", r.BaseCost.StringFixed(2), r.TotalUnits.String())

	if len(r.AccruedCostItems) > 0 {
		names := make([]string, 0, len(r.AccruedCostItems))
		for _, item := range r.AccruedCostItems {
			names = append(names, item.String())
		}
		fmt.Fprintf(w, "Accrued: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Total Cost: %s\n", r.TotalCost.StringFixed(2))

	if view.Terminal {
		fmt.Fprintf(w, "Next: none (terminal)\n")
	} else {
		next := make([]string, 0, len(view.NextStages))
		for _, s := range view.NextStages {
			next = append(next, s.String())
		}
		fmt.Fprintf(w, "Next: %s\n", strings.Join(next, ", "))
	}

	if len(r.History) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-16s %-12s %-12s %14s\n", "At", "From", "To", "Total After")
		fmt.Fprintf(w, "%-16s %-12s %-12s %14s\n", "----------------", "------------", "------------", "--------------")
		for _, t := range r.History {
			fmt.Fprintf(w, "%-16s %-12s %-12s %14s\n",
				t.At.Format(dateLayout), t.From, t.To, t.TotalAfter.StringFixed(2))
		}
	}
	return nil
}

// generateJSONOutput creates JSON output on the writer or in OutputDir
func generateJSONOutput(v any, filename string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(config.writer(), string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, defaultDirPermission); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(config.OutputDir, filename)
	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "JSON results saved to: %s\n", path)
	}
	return nil
}

// generateCSVOutput writes one CSV file per report section
func generateCSVOutput(plan *dto.OrderPlan, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, defaultDirPermission); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reqFile := filepath.Join(config.OutputDir, RequirementsCSVFile)
	if err := writeCSV(reqFile, requirementRows(plan.Requirements)); err != nil {
		return fmt.Errorf("failed to write requirements CSV: %w", err)
	}

	costFile := filepath.Join(config.OutputDir, CostLinesCSVFile)
	if err := writeCSV(costFile, costLineRows(plan.Cost.PerLine)); err != nil {
		return fmt.Errorf("failed to write cost lines CSV: %w", err)
	}

	overheadFile := filepath.Join(config.OutputDir, OverheadCSVFile)
	if err := writeCSV(overheadFile, overheadRows(plan.Overhead)); err != nil {
		return fmt.Errorf("failed to write overhead CSV: %w", err)
	}

	if config.Verbose {
		w := config.writer()
		fmt.Fprintf(w, "CSV results saved to:\n")
		fmt.Fprintf(w, "  Requirements: %s\n", reqFile)
		fmt.Fprintf(w, "  Cost Lines: %s\n", costFile)
		fmt.Fprintf(w, "  Overhead: %s\n", overheadFile)
	}
	return nil
}

func generateProductionCSV(view *dto.ProductionView, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, defaultDirPermission); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := [][]string{{"production_id", "at", "from", "to", "accrued", "total_after"}}
	for _, t := range view.Record.History {
		ids := make([]string, 0, len(t.Accrued))
		for _, item := range t.Accrued {
			ids = append(ids, string(item.ID))
		}
		rows = append(rows, []string{
			string(view.Record.ID),
			t.At.Format(time.RFC3339),
			t.From.String(),
			t.To.String(),
			strings.Join(ids, ";"),
			t.TotalAfter.String(),
		})
	}

	path := filepath.Join(config.OutputDir, ProductionCSVFile)
	if err := writeCSV(path, rows); err != nil {
		return fmt.Errorf("failed to write production CSV: %w", err)
	}
	return nil
}

func requirementRows(results []entities.SufficiencyResult) [][]string {
	rows := [][]string{{"raw_material_id", "name", "unit", "quantity_needed", "quantity_available", "status", "shortfall", "surplus"}}
	for _, r := range results {
		rows = append(rows, []string{
			string(r.Requirement.RawMaterialID),
			r.Requirement.RawMaterialName,
			r.Requirement.Unit,
			r.Requirement.QuantityNeeded.String(),
			r.Requirement.QuantityAvailable.String(),
			r.Status.String(),
			r.Shortfall.String(),
			r.Surplus.String(),
		})
	}
	return rows
}

func costLineRows(lines []entities.LineCost) [][]string {
	rows := [][]string{{"product_id", "size", "color", "quantity", "unit_cost", "total"}}
	for _, l := range lines {
		rows = append(rows, []string{
			string(l.ProductID),
			l.Variant.Size,
			l.Variant.Color,
			l.Quantity.String(),
			l.UnitCost.String(),
			l.Total.String(),
		})
	}
	return rows
}

func overheadRows(result entities.OverheadResult) [][]string {
	rows := [][]string{{"cost_item_id", "name", "amount_per_unit", "total_units", "contribution"}}
	for _, l := range result.Lines {
		rows = append(rows, []string{
			string(l.Item.ID),
			l.Item.Name,
			l.Item.AmountPerUnit.String(),
			l.TotalUnits.String(),
			l.Contribution.String(),
		})
	}
	return rows
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
