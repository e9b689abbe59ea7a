package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"gorm.io/gorm/clause"
)

// SaveProduction inserts or replaces a production record
func (s *Store) SaveProduction(ctx context.Context, record *entities.ProductionRecord) error {
	if record == nil {
		return entities.NewValidationError("production record", "cannot be nil")
	}
	model := productionToModel(record)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
	return translate(err, "production", string(record.ID))
}

// GetProduction returns a production record by id
func (s *Store) GetProduction(ctx context.Context, id entities.ProductionID) (*entities.ProductionRecord, error) {
	var model ProductionModel
	if err := s.db.WithContext(ctx).Take(&model, "id = ?", string(id)).Error; err != nil {
		return nil, translate(err, "production", string(id))
	}
	record, err := model.toEntity()
	if err != nil {
		return nil, fmt.Errorf("corrupt production record %s: %w", id, err)
	}
	return record, nil
}

// ListProductions returns every production record, oldest first
func (s *Store) ListProductions(ctx context.Context) ([]*entities.ProductionRecord, error) {
	var models []ProductionModel
	if err := s.db.WithContext(ctx).Order("date, id").Find(&models).Error; err != nil {
		return nil, translate(err, "production", "")
	}
	records := make([]*entities.ProductionRecord, 0, len(models))
	for _, m := range models {
		record, err := m.toEntity()
		if err != nil {
			return nil, fmt.Errorf("corrupt production record %s: %w", m.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveOrder stores an order payload under a new identifier
func (s *Store) SaveOrder(ctx context.Context, payload *entities.OrderPayload) (string, error) {
	if payload == nil {
		return "", entities.NewValidationError("order payload", "cannot be nil")
	}
	model := OrderModel{
		ID:         uuid.NewString(),
		OrderRef:   payload.OrderRef,
		OrderType:  payload.OrderType.String(),
		Lines:      payload.Lines,
		OrderTotal: payload.OrderTotal,
		FinalCost:  payload.FinalCost,
		Status:     payload.Status.String(),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", translate(err, "order", model.ID)
	}
	return model.ID, nil
}

// GetOrder returns a stored order payload
func (s *Store) GetOrder(ctx context.Context, id string) (*entities.OrderPayload, error) {
	var model OrderModel
	if err := s.db.WithContext(ctx).Take(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order", id)
	}
	orderType, err := entities.ParseOrderType(model.OrderType)
	if err != nil {
		return nil, fmt.Errorf("corrupt order %s: %w", id, err)
	}
	status, err := entities.ParseStage(model.Status)
	if err != nil {
		return nil, fmt.Errorf("corrupt order %s: %w", id, err)
	}
	return &entities.OrderPayload{
		OrderRef:   model.OrderRef,
		OrderType:  orderType,
		Lines:      model.Lines,
		OrderTotal: model.OrderTotal,
		FinalCost:  model.FinalCost,
		Status:     status,
	}, nil
}
