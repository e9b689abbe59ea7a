package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/bomcost/pkg/application/services/orchestration"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/csv"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/rs/zerolog"
)

const (
	exampleOrder = "product_id,size,color,quantity,unit_cost\nOXFORD,42,black,10,10\nOXFORD,40,brown,5,10\n"
	bootOrder    = "product_id,size,color,quantity,unit_cost\nBOOT,42,black,4,\n"
)

func writeScenario(t *testing.T, order string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		csv.ProductsFile:  "product_id,name,selling_price\nOXFORD,Oxford,59.90\nBOOT,Chelsea boot,89.00\n",
		csv.MaterialsFile: "raw_material_id,name,unit,unit_cost,available\nLEATHER,Leather,sqft,5,100\nSOLE,Rubber sole,pair,3.25,12\nTHREAD,Waxed thread,spool,1.10,3\n",
		csv.RecipesFile: "product_id,size,color,raw_material_id,qty_per_unit,unit_cost\n" +
			"OXFORD,42,black,LEATHER,2,5\nOXFORD,42,black,SOLE,1,3.25\nOXFORD,42,black,THREAD,0.5,1.10\n" +
			"OXFORD,40,brown,LEATHER,2,5\nBOOT,42,black,LEATHER,3.5,5\nBOOT,42,black,SOLE,1,3.25\n",
		csv.CostItemsFile: "cost_item_id,name,amount_per_unit\nLABOR,Labor,2\nPACK,Packaging,0.5\n",
		csv.OrderFile:     order,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func newTestStore(t *testing.T) *gormstore.Store {
	t.Helper()
	store, err := gormstore.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPlanCommand(t *testing.T) {
	tests := []struct {
		name      string
		config    PlanConfig
		expected  []string
		expectErr bool
	}{
		{
			name:     "sale",
			config:   PlanConfig{OrderType: "sale"},
			expected: []string{"Order Type: sale", "Shortages: 1", "THREAD", "Final Cost:  150.00"},
		},
		{
			name:     "manufacturing with labor",
			config:   PlanConfig{OrderType: "manufacturing", CostItems: "LABOR", Verbose: true},
			expected: []string{"Order Lines: 2", "Labor (2.00/unit)", "Order Total: 188.00", "Final Cost:  218.00"},
		},
		{
			name:      "overhead on invoice",
			config:    PlanConfig{OrderType: "invoice", CostItems: "LABOR"},
			expectErr: true,
		},
		{
			name:      "unknown order type",
			config:    PlanConfig{OrderType: "barter"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.ScenarioDir = writeScenario(t, exampleOrder)
			err := NewPlanCommand(tt.config, Runtime{Logger: zerolog.Nop(), Out: &buf}).Execute(context.Background())
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error, got output:\n%s", buf.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			for _, want := range tt.expected {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestPlanCommand_SampleScenario(t *testing.T) {
	var buf bytes.Buffer
	config := PlanConfig{
		ScenarioDir: filepath.Join("..", "..", "..", "..", "scenarios", "oxford"),
		OrderType:   "manufacturing",
		CostItems:   "LABOR,QC",
		Verbose:     true,
	}
	if err := NewPlanCommand(config, Runtime{Logger: zerolog.Nop(), Out: &buf}).Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, want := range []string{"Quality check (0.00/unit)", "Order Total: 188.00", "Final Cost:  218.00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}

func TestPlanCommand_InvalidScenario(t *testing.T) {
	dir := writeScenario(t, exampleOrder)
	recipes := "product_id,size,color,raw_material_id,qty_per_unit,unit_cost\nOXFORD,42,black,SILK,1,9\n"
	if err := os.WriteFile(filepath.Join(dir, csv.RecipesFile), []byte(recipes), 0o644); err != nil {
		t.Fatalf("Failed to write recipes: %v", err)
	}

	err := NewPlanCommand(PlanConfig{ScenarioDir: dir, OrderType: "sale"}, Runtime{Logger: zerolog.Nop(), Out: &bytes.Buffer{}}).Execute(context.Background())
	if err == nil || !strings.Contains(err.Error(), "SILK") {
		t.Errorf("Expected validation failure naming SILK, got %v", err)
	}

	err = NewPlanCommand(PlanConfig{OrderType: "sale"}, Runtime{Logger: zerolog.Nop(), Out: &bytes.Buffer{}}).Execute(context.Background())
	if err == nil {
		t.Errorf("Expected error without scenario directory")
	}
}

func TestProduceAndAdvanceCommands(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	var buf bytes.Buffer
	rt := Runtime{Logger: zerolog.Nop(), Out: &buf}

	produce := NewProduceCommand(ProduceConfig{
		ScenarioDir: writeScenario(t, bootOrder),
		OrderRef:    "MO-1",
		OrderType:   "manufacturing",
		CostItems:   "LABOR",
	}, rt, store)
	if err := produce.Execute(ctx); err != nil {
		t.Fatalf("produce failed: %v", err)
	}
	for _, want := range []string{"Order ", "Status: cutting", "Total Cost: 91.00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected produce output to contain %q, got:\n%s", want, buf.String())
		}
	}

	records, err := store.ListProductions(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("Expected 1 stored production, got %d (%v)", len(records), err)
	}
	id := string(records[0].ID)

	buf.Reset()
	if err := NewAdvanceCommand(AdvanceConfig{ProductionID: id, CostItems: "PACK", Preview: true}, rt, store).Execute(ctx); err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Final Cost: 93.00") {
		t.Errorf("Expected preview of 93.00, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := NewAdvanceCommand(AdvanceConfig{ProductionID: id, To: "lasting", CostItems: "PACK"}, rt, store).Execute(ctx); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Status: lasting") || !strings.Contains(buf.String(), "Total Cost: 93.00") {
		t.Errorf("Expected lasting at 93.00, got:\n%s", buf.String())
	}

	err = NewAdvanceCommand(AdvanceConfig{ProductionID: id, To: "sticking"}, rt, store).Execute(ctx)
	if !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition, got %v", err)
	}
	err = NewAdvanceCommand(AdvanceConfig{ProductionID: id, To: "delivered"}, rt, store).Execute(ctx)
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for unknown stage, got %v", err)
	}

	buf.Reset()
	if err := NewAdvanceCommand(AdvanceConfig{}, rt, store).Execute(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(buf.String(), id) || !strings.Contains(buf.String(), "lasting") {
		t.Errorf("Expected listing with %s at lasting, got:\n%s", id, buf.String())
	}
}

func TestProduceCommand_Shortage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	var buf bytes.Buffer
	rt := Runtime{Logger: zerolog.Nop(), Out: &buf}
	dir := writeScenario(t, exampleOrder)

	err := NewProduceCommand(ProduceConfig{ScenarioDir: dir, OrderType: "sale"}, rt, store).Execute(ctx)
	if !errors.Is(err, orchestration.ErrInsufficientStock) {
		t.Fatalf("Expected insufficient stock, got %v", err)
	}
	if !strings.Contains(buf.String(), "Shortages: 1") {
		t.Errorf("Expected the plan to be printed, got:\n%s", buf.String())
	}
	if records, _ := store.ListProductions(ctx); len(records) != 0 {
		t.Errorf("Expected no production stored, got %d", len(records))
	}

	err = NewProduceCommand(ProduceConfig{ScenarioDir: dir, OrderType: "sale", AllowShortages: true, Format: "json"}, rt, store).Execute(ctx)
	if err != nil {
		t.Fatalf("Expected order placed with shortages allowed: %v", err)
	}
	if records, _ := store.ListProductions(ctx); len(records) != 1 || records[0].Status != entities.StageProcessing {
		t.Errorf("Expected one production at processing, got %+v", records)
	}
}

func TestServeCommand(t *testing.T) {
	store := newTestStore(t)
	ready := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewServeCommand(ServeConfig{
		Addr:        "127.0.0.1:0",
		ScenarioDir: writeScenario(t, bootOrder),
		Ready:       ready,
	}, Runtime{Logger: zerolog.Nop(), Out: &bytes.Buffer{}}, store)

	done := make(chan error, 1)
	go func() { done <- cmd.Execute(ctx) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/productions")
	if err != nil {
		t.Fatalf("GET /productions failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestParseCostItems(t *testing.T) {
	tests := []struct {
		input    string
		expected []entities.CostItemID
	}{
		{"", nil},
		{"LABOR", []entities.CostItemID{"LABOR"}},
		{" LABOR , PACK,,", []entities.CostItemID{"LABOR", "PACK"}},
	}
	for _, tt := range tests {
		got := parseCostItems(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("Expected %v for %q, got %v", tt.expected, tt.input, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.input, got)
			}
		}
	}
}

func TestHelp(t *testing.T) {
	var buf bytes.Buffer
	rt := Runtime{Logger: zerolog.Nop(), Out: &buf}
	ctx := context.Background()

	cmds := []interface{ Execute(context.Context) error }{
		NewPlanCommand(PlanConfig{Help: true}, rt),
		NewProduceCommand(ProduceConfig{Help: true}, rt, nil),
		NewAdvanceCommand(AdvanceConfig{Help: true}, rt, nil),
		NewServeCommand(ServeConfig{Help: true}, rt, nil),
	}
	for _, cmd := range cmds {
		buf.Reset()
		if err := cmd.Execute(ctx); err != nil {
			t.Errorf("Expected help to succeed, got %v", err)
		}
		if !strings.Contains(buf.String(), "bomcost") {
			t.Errorf("Expected help text, got %q", buf.String())
		}
	}
}
