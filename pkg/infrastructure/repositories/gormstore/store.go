package gormstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/mfgops/bomcost/pkg/domain/repositories"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store persists the catalog, inventory, cost items, production records and
// order payloads through gorm.
type Store struct {
	db *gorm.DB
}

var (
	_ repositories.CatalogRepository    = (*Store)(nil)
	_ repositories.InventoryRepository  = (*Store)(nil)
	_ repositories.CostItemRepository   = (*Store)(nil)
	_ repositories.ProductionRepository = (*Store)(nil)
	_ repositories.OrderRepository      = (*Store)(nil)
)

// Open connects to databaseURL. postgres:// and postgresql:// URLs use the
// postgres driver; file: and sqlite: URLs or bare paths use sqlite.
func Open(databaseURL string, log zerolog.Logger) (*Store, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: logger.New(&log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return New(db), nil
}

// New wraps an existing gorm handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates every table the store uses
func (s *Store) AutoMigrate() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("database handle is nil")
	}
	return s.db.AutoMigrate(
		&ProductModel{},
		&MaterialModel{},
		&RecipeModel{},
		&RecipeEntryModel{},
		&CostItemModel{},
		&ProductionModel{},
		&OrderModel{},
	)
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case url == "":
		return nil, fmt.Errorf("database URL must not be empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite:")), nil
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported database URL scheme: %s", url)
	default:
		return sqlite.Open(url), nil
	}
}

// translate maps gorm errors onto the domain error taxonomy
func translate(err error, kind, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.NewNotFoundError(kind, key)
	}
	return entities.NewUpstreamError("database", err)
}
