package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	domain "github.com/mfgops/bomcost/pkg/domain/services"
	"github.com/mfgops/bomcost/pkg/infrastructure/events"
	"github.com/rs/zerolog"
)

// ProductionService commits orders to production and moves production
// records through their pipeline.
type ProductionService struct {
	productions repositories.ProductionRepository
	costItems   repositories.CostItemRepository
	rollup      *domain.CostRollup
	machine     *domain.StatusMachine
	eventStore  events.EventStore
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() entities.ProductionID

	// advances are read-modify-write on the store
	mu sync.Mutex
}

// ProductionDeps are the collaborators of a ProductionService. EventStore is optional.
type ProductionDeps struct {
	Productions repositories.ProductionRepository
	CostItems   repositories.CostItemRepository
	EventStore  events.EventStore
	Logger      zerolog.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// NewProductionService creates a production service
func NewProductionService(deps ProductionDeps) *ProductionService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	rollup := domain.NewCostRollup()
	return &ProductionService{
		productions: deps.Productions,
		costItems:   deps.CostItems,
		rollup:      rollup,
		machine:     domain.NewStatusMachineWithClock(rollup, func() time.Time { return now().UTC() }),
		eventStore:  deps.EventStore,
		logger:      deps.Logger,
		now:         now,
		newID:       func() entities.ProductionID { return entities.ProductionID(uuid.NewString()) },
	}
}

// Start creates a production record at the first stage of the order type's
// pipeline. Its base cost is the order total of the lines; selected cost
// items accrue immediately.
func (s *ProductionService) Start(ctx context.Context, req dto.StartRequest) (*entities.ProductionRecord, error) {
	for i, line := range req.Lines {
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("order line %d: %w", i+1, err)
		}
	}

	selected, err := resolveCostItems(ctx, s.costItems, req.SelectedCostItems)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	summary := s.rollup.Rollup(req.Lines)
	record, err := entities.NewProductionRecord(
		s.newID(),
		req.OrderRef,
		date.UTC(),
		entities.PipelineFor(req.OrderType),
		summary.OrderTotal,
		summary.TotalUnits,
	)
	if err != nil {
		return nil, err
	}

	accrued, err := s.machine.AccrueInitial(record, selected)
	if err != nil {
		return nil, err
	}

	if err := s.productions.SaveProduction(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("production_id", string(record.ID)).Msg("failed to save production record")
		return nil, fmt.Errorf("failed to save production %s: %w", record.ID, err)
	}

	s.append(events.NewProductionStartedEvent(record))
	if len(accrued) > 0 {
		s.append(events.NewCostAccruedEvent(record, accrued))
	}

	s.logger.Info().
		Str("production_id", string(record.ID)).
		Str("order_ref", record.OrderRef).
		Str("pipeline", record.Pipeline.String()).
		Str("total_cost", record.TotalCost.String()).
		Msg("production started")
	return record, nil
}

// Advance moves the record to stage to, accruing the selected cost items.
// A rejected transition leaves the stored record untouched.
func (s *ProductionService) Advance(ctx context.Context, id entities.ProductionID, to entities.Stage, selectedIDs []entities.CostItemID) (*entities.ProductionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With().Str("production_id", string(id)).Str("to", to.String()).Logger()

	record, err := s.productions.GetProduction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load production %s: %w", id, err)
	}

	selected, err := resolveCostItems(ctx, s.costItems, selectedIDs)
	if err != nil {
		return nil, err
	}

	if err := s.machine.Advance(record, to, selected); err != nil {
		log.Warn().Err(err).Str("from", record.Status.String()).Msg("transition rejected")
		return nil, err
	}

	if err := s.productions.SaveProduction(ctx, record); err != nil {
		log.Error().Err(err).Msg("failed to save production record")
		return nil, fmt.Errorf("failed to save production %s: %w", id, err)
	}

	transition := record.History[len(record.History)-1]
	s.append(events.NewProductionAdvancedEvent(record.ID, transition))
	if len(transition.Accrued) > 0 {
		s.append(events.NewCostAccruedEvent(record, transition.Accrued))
	}

	log.Info().
		Str("from", transition.From.String()).
		Int("accrued", len(transition.Accrued)).
		Str("total_cost", record.TotalCost.String()).
		Msg("production advanced")
	return record, nil
}

// PreviewCost returns the cost the record would carry if the selected items
// were accrued now. Nothing is stored.
func (s *ProductionService) PreviewCost(ctx context.Context, id entities.ProductionID, selectedIDs []entities.CostItemID) (entities.OverheadResult, error) {
	record, err := s.productions.GetProduction(ctx, id)
	if err != nil {
		return entities.OverheadResult{}, fmt.Errorf("failed to load production %s: %w", id, err)
	}
	selected, err := resolveCostItems(ctx, s.costItems, selectedIDs)
	if err != nil {
		return entities.OverheadResult{}, err
	}
	if err := s.machine.CheckOverhead(record, selected); err != nil {
		return entities.OverheadResult{}, err
	}
	return s.machine.Preview(record, selected), nil
}

// Get returns the record with the stages it may still move to
func (s *ProductionService) Get(ctx context.Context, id entities.ProductionID) (*dto.ProductionView, error) {
	record, err := s.productions.GetProduction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load production %s: %w", id, err)
	}
	return &dto.ProductionView{
		Record:     record,
		NextStages: s.machine.NextStages(record),
		Terminal:   record.Pipeline.IsTerminal(record.Status),
	}, nil
}

// List returns every production record
func (s *ProductionService) List(ctx context.Context) ([]*entities.ProductionRecord, error) {
	records, err := s.productions.ListProductions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list productions: %w", err)
	}
	return records, nil
}

func (s *ProductionService) append(event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type()).Msg("failed to record event")
	}
}
