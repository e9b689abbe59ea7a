package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	domain "github.com/mfgops/bomcost/pkg/domain/services"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlanningService prices an order, aggregates its material requirements,
// judges stock sufficiency and rolls up its cost.
type PlanningService struct {
	costItems  repositories.CostItemRepository
	inventory  repositories.InventoryRepository
	pricer     *domain.LinePricer
	aggregator *domain.RequirementAggregator
	rollup     *domain.CostRollup
	eventStore events.EventStore
	logger     zerolog.Logger
	now        func() time.Time
}

// PlanningDeps are the collaborators of a PlanningService. Inventory and
// EventStore are optional.
type PlanningDeps struct {
	Catalog    repositories.CatalogRepository
	CostItems  repositories.CostItemRepository
	Inventory  repositories.InventoryRepository
	EventStore events.EventStore
	Logger     zerolog.Logger
}

// NewPlanningService creates a planning service
func NewPlanningService(deps PlanningDeps) *PlanningService {
	resolver := domain.NewRecipeResolver(deps.Catalog)
	return &PlanningService{
		costItems:  deps.CostItems,
		inventory:  deps.Inventory,
		pricer:     domain.NewLinePricer(deps.Catalog, resolver),
		aggregator: domain.NewRequirementAggregator(resolver),
		rollup:     domain.NewCostRollup(),
		eventStore: deps.EventStore,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// PlanOrder builds the complete plan of one order. Selected cost items are
// only accepted on manufacturing orders.
func (s *PlanningService) PlanOrder(ctx context.Context, req dto.PlanRequest) (*dto.OrderPlan, error) {
	log := s.logger.With().Str("order_ref", req.OrderRef).Str("order_type", req.OrderType.String()).Logger()

	if len(req.SelectedCostItems) > 0 && req.OrderType != entities.Manufacturing {
		return nil, entities.NewValidationError("cost items", "only manufacturing orders carry overhead, got %s order", req.OrderType)
	}

	lines, err := s.pricer.Price(ctx, req.OrderType, req.Lines)
	if err != nil {
		log.Error().Err(err).Msg("pricing failed")
		return nil, fmt.Errorf("failed to price order: %w", err)
	}

	reqs, err := s.aggregator.Aggregate(ctx, lines)
	if err != nil {
		log.Error().Err(err).Msg("aggregation failed")
		return nil, fmt.Errorf("failed to aggregate requirements: %w", err)
	}

	selected, err := resolveCostItems(ctx, s.costItems, req.SelectedCostItems)
	if err != nil {
		return nil, err
	}

	results := domain.EvaluateAll(reqs)
	summary := s.rollup.Rollup(lines)
	plan := &dto.OrderPlan{
		OrderRef:     req.OrderRef,
		OrderType:    req.OrderType,
		PlannedAt:    s.now().UTC(),
		Lines:        lines,
		Requirements: results,
		Shortages:    domain.Shortages(results),
		Cost:         summary,
		Overhead:     s.rollup.RollupWithOverhead(summary.OrderTotal, selected, summary.TotalUnits),
	}

	if s.inventory != nil {
		if plan.OnHand, err = s.readOnHand(ctx, results); err != nil {
			return nil, err
		}
	}

	s.publish(log, plan)

	log.Info().
		Int("lines", len(lines)).
		Int("materials", len(results)).
		Int("shortages", len(plan.Shortages)).
		Str("final_cost", plan.Overhead.FinalCost.String()).
		Msg("order planned")
	return plan, nil
}

// BuildOrderPayload returns the structure handed to the order service. The
// status is the first stage of the pipeline the order type uses.
func (s *PlanningService) BuildOrderPayload(plan *dto.OrderPlan) *entities.OrderPayload {
	return &entities.OrderPayload{
		OrderRef:   plan.OrderRef,
		OrderType:  plan.OrderType,
		Lines:      append([]entities.OrderLine(nil), plan.Lines...),
		OrderTotal: plan.Cost.OrderTotal,
		FinalCost:  plan.Overhead.FinalCost,
		Status:     entities.PipelineFor(plan.OrderType).Initial(),
	}
}

func (s *PlanningService) readOnHand(ctx context.Context, results []entities.SufficiencyResult) (map[entities.RawMaterialID]decimal.Decimal, error) {
	onHand := make(map[entities.RawMaterialID]decimal.Decimal, len(results))
	for _, r := range results {
		id := r.Requirement.RawMaterialID
		qty, err := s.inventory.GetAvailableQuantity(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock of %s: %w", id, err)
		}
		onHand[id] = qty
	}
	return onHand, nil
}

func (s *PlanningService) publish(log zerolog.Logger, plan *dto.OrderPlan) {
	if s.eventStore == nil {
		return
	}

	for _, shortage := range plan.Shortages {
		event := events.NewShortageIdentifiedEvent(plan.OrderRef, shortage)
		if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
			log.Warn().Err(err).Msg("failed to record shortage event")
		}
	}

	event := events.NewOrderPlannedEvent(events.OrderPlanned{
		OrderRef:   plan.OrderRef,
		OrderType:  plan.OrderType,
		OrderTotal: plan.Cost.OrderTotal,
		FinalCost:  plan.Overhead.FinalCost,
		Shortages:  len(plan.Shortages),
	})
	if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		log.Warn().Err(err).Msg("failed to record plan event")
	}
}
