package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mfgops/bomcost/pkg/application/services"
	"github.com/mfgops/bomcost/pkg/application/services/orchestration"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	domain "github.com/mfgops/bomcost/pkg/domain/services"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/csv"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/memory"
	"github.com/rs/zerolog"
)

// Runtime carries the process-wide collaborators every command uses
type Runtime struct {
	Logger zerolog.Logger
	// Events is optional
	Events events.EventStore
	// Out defaults to os.Stdout
	Out io.Writer
}

func (rt Runtime) out() io.Writer {
	if rt.Out == nil {
		return os.Stdout
	}
	return rt.Out
}

// storeServices are the application services backed by the gorm store
type storeServices struct {
	planning     *services.PlanningService
	production   *services.ProductionService
	orchestrator *orchestration.OrderOrchestrator
}

func newStoreServices(store *gormstore.Store, rt Runtime) storeServices {
	planning := services.NewPlanningService(services.PlanningDeps{
		Catalog:    store,
		CostItems:  store,
		Inventory:  store,
		EventStore: rt.Events,
		Logger:     rt.Logger,
	})
	production := services.NewProductionService(services.ProductionDeps{
		Productions: store,
		CostItems:   store,
		EventStore:  rt.Events,
		Logger:      rt.Logger,
	})
	return storeServices{
		planning:     planning,
		production:   production,
		orchestrator: orchestration.NewOrderOrchestrator(planning, production, store),
	}
}

// loadScenario reads a scenario directory and checks its recipes against the
// material and product masters
func loadScenario(dir string) (*csv.Scenario, error) {
	if dir == "" {
		return nil, fmt.Errorf("must specify a -scenario directory")
	}
	scenario, err := csv.NewLoader().LoadScenario(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", dir, err)
	}

	recipes := make([]entities.Recipe, len(scenario.Recipes))
	for i, r := range scenario.Recipes {
		recipes[i] = *r
	}
	materials := make([]entities.RawMaterial, len(scenario.Materials))
	for i, m := range scenario.Materials {
		materials[i] = *m
	}
	products := make([]entities.Product, len(scenario.Products))
	for i, p := range scenario.Products {
		products[i] = *p
	}

	validation := domain.NewRecipeValidator().ValidateRecipes(recipes, materials, products)
	if !validation.IsValid() {
		return nil, fmt.Errorf("recipe validation failed: %s", strings.Join(validation.Errors, "; "))
	}
	return scenario, nil
}

// memoryCatalog loads a scenario into the in-memory repositories
func memoryCatalog(s *csv.Scenario) (*memory.CatalogRepository, *memory.CostItemRepository) {
	catalog := memory.NewCatalogRepository()
	catalog.LoadProducts(s.Products)
	catalog.LoadMaterials(s.Materials)
	catalog.LoadRecipes(s.Recipes)

	costItems := memory.NewCostItemRepository()
	costItems.LoadCostItems(s.CostItems)
	return catalog, costItems
}

// seedStore upserts a scenario's master data into the gorm store
func seedStore(ctx context.Context, store *gormstore.Store, s *csv.Scenario) error {
	for _, p := range s.Products {
		if err := store.SaveProduct(ctx, *p); err != nil {
			return fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
	}
	for _, m := range s.Materials {
		if err := store.SaveMaterial(ctx, *m); err != nil {
			return fmt.Errorf("failed to save material %s: %w", m.ID, err)
		}
	}
	for _, r := range s.Recipes {
		if err := store.SaveRecipe(ctx, *r); err != nil {
			return fmt.Errorf("failed to save recipe %s %s: %w", r.ProductID, r.Variant, err)
		}
	}
	for _, item := range s.CostItems {
		if err := store.SaveCostItem(ctx, *item); err != nil {
			return fmt.Errorf("failed to save cost item %s: %w", item.ID, err)
		}
	}
	return nil
}

// parseCostItems splits a comma separated list of cost item IDs
func parseCostItems(value string) []entities.CostItemID {
	var ids []entities.CostItemID
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, entities.CostItemID(part))
		}
	}
	return ids
}
